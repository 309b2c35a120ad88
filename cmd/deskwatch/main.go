package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/deskwatch/internal/app"
	"github.com/ayusman/deskwatch/internal/behavior"
	"github.com/ayusman/deskwatch/internal/capture"
	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/detector"
	"github.com/ayusman/deskwatch/internal/log"
	"github.com/ayusman/deskwatch/internal/server"
	"github.com/ayusman/deskwatch/internal/store"
	"github.com/ayusman/deskwatch/internal/tray"
)

func main() {
	var (
		configPath = flag.String("config", "", "tuning YAML file (defaults apply when empty)")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		dataDir    = flag.String("data", defaultDataDir(), "directory for the database, logs and captures")
		cameraID   = flag.Int("camera", 0, "camera device index")
		video      = flag.String("video", "", "replay a recorded video instead of the camera")
		model      = flag.String("model", detector.DefaultYOLOConfig().ModelPath, "YOLOv8 ONNX model")
		pluginDir  = flag.String("plugins", "", "hook plugin directory (default <data>/plugins)")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
		withTray   = flag.Bool("tray", false, "show the system tray menu")
	)
	flag.Parse()

	log.Init(*logLevel)
	if err := run(options{
		configPath: *configPath,
		addr:       *addr,
		dataDir:    *dataDir,
		cameraID:   *cameraID,
		video:      *video,
		model:      *model,
		pluginDir:  *pluginDir,
		tray:       *withTray,
	}); err != nil {
		log.Error("deskwatch failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	addr       string
	dataDir    string
	cameraID   int
	video      string
	model      string
	pluginDir  string
	tray       bool
}

func run(opts options) error {
	tuning := config.Default()
	if opts.configPath != "" {
		var err error
		if tuning, err = config.Load(opts.configPath); err != nil {
			return err
		}
	} else if err := tuning.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(opts.dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(filepath.Join(opts.dataDir, "deskwatch.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	source := capture.DeviceSource(opts.cameraID)
	if opts.video != "" {
		source = capture.FileSource(opts.video)
	}
	if opts.pluginDir == "" {
		opts.pluginDir = filepath.Join(opts.dataDir, "plugins")
	}
	captureDir := filepath.Join(opts.dataDir, "captures")

	yolo := detector.DefaultYOLOConfig()
	yolo.ModelPath = opts.model

	application, err := app.New(app.Config{
		Tuning:     tuning,
		Store:      st,
		Source:     source,
		PluginDir:  opts.pluginDir,
		CaptureDir: captureDir,
		LogDir:     filepath.Join(opts.dataDir, "logs"),
		YOLO:       yolo,
	})
	if err != nil {
		return err
	}
	if err := application.DiscoverPlugins(); err != nil {
		log.Warn("plugin discovery failed", "dir", opts.pluginDir, "error", err)
	}

	hub := server.NewHub()
	application.SetBroadcaster(hub)

	srv := server.New(server.Config{
		StaticDir:  findWebDir(opts.dataDir),
		CaptureDir: captureDir,
		Store:      st,
		Plugins:    application.PluginManager(),
		State:      application,
		Hub:        hub,
		Frames:     application.Frames(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer application.Stop()

	if opts.video != "" {
		go func() {
			<-application.Done()
			log.Info("video finished, shutting down")
			stop()
		}()
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", opts.addr)
		srvErr <- srv.ListenAndServe(ctx, opts.addr)
	}()

	if opts.tray {
		runTray(ctx, stop, application, opts.addr)
	}

	select {
	case <-ctx.Done():
		err = <-srvErr
	case err = <-srvErr:
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

// runTray blocks in the tray event loop until quit is chosen or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, application *app.App, addr string) {
	t := tray.New()
	t.OnToggle(application.SetEnabled)
	t.OnOpen(func() { openBrowser(dashboardURL(addr)) })
	t.OnQuit(stop)
	application.OnEvent(func(e behavior.Event) { t.SetLastEvent(e) })

	go t.Watch(ctx, application, 500*time.Millisecond)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func dashboardURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("failed to open browser", "url", url, "error", err)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deskwatch"
	}
	return filepath.Join(home, ".deskwatch")
}

// findWebDir returns the first existing dashboard directory among "web",
// "../web", "../../web" and <data>/web, or "" when there is none.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
