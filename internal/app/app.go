// Package app wires the camera, detectors and behavior engine to the event
// sinks (database, CSV logs, snapshots, hooks and live subscribers).
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/deskwatch/internal/behavior"
	"github.com/ayusman/deskwatch/internal/capture"
	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/detector"
	"github.com/ayusman/deskwatch/internal/eventlog"
	"github.com/ayusman/deskwatch/internal/log"
	"github.com/ayusman/deskwatch/internal/plugin"
	"github.com/ayusman/deskwatch/internal/store"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultMotionThresh = 1.0 // percent of changed pixels
	DefaultIdleHold     = 2 * time.Second
	DefaultHookTimeout  = 5 * time.Second
)

// Config holds configuration options for the application.
type Config struct {
	Tuning       config.Tuning
	Store        *store.Store // optional
	Source       capture.Source
	PluginDir    string
	CaptureDir   string // snapshots are skipped when empty
	LogDir       string // CSV logs are skipped when empty
	MotionThresh float64
	IdleHold     time.Duration
	HookTimeout  time.Duration
	YOLO         detector.YOLOConfig
}

// Broadcaster pushes messages to live subscribers.
type Broadcaster interface {
	Broadcast(typ string, data any)
}

// EventFunc is called for every emitted event, from the pipeline goroutine.
type EventFunc func(behavior.Event)

// App runs the detection pipeline for one camera.
type App struct {
	config     Config
	camera     capture.Camera
	pace       bool
	motion     *capture.MotionDetector
	activity   *capture.Activity
	hands      detector.HandDetector
	objects    detector.ObjectDetector
	engine     *behavior.Engine
	snapshots  *capture.SnapshotWriter
	eventLog   *eventlog.Writer
	pluginMgr  *plugin.Manager
	dispatcher *plugin.Dispatcher
	frames     *capture.FrameBuffer
	logger     *slog.Logger
	now        func() time.Time

	mu          sync.RWMutex
	enabled     bool
	broadcaster Broadcaster
	listeners   []EventFunc
	cancel      context.CancelFunc
	done        chan struct{}

	snapMu   sync.RWMutex
	snapshot behavior.Snapshot

	hooks sync.WaitGroup
}

// New creates an App. Detectors that cannot be loaded are replaced by mocks
// that never detect anything, so the rest of the pipeline still runs.
func New(cfg Config) (*App, error) {
	if cfg.MotionThresh <= 0 {
		cfg.MotionThresh = DefaultMotionThresh
	}
	if cfg.IdleHold <= 0 {
		cfg.IdleHold = DefaultIdleHold
	}
	if cfg.HookTimeout <= 0 {
		cfg.HookTimeout = DefaultHookTimeout
	}
	if cfg.YOLO.ModelPath == "" {
		cfg.YOLO = detector.DefaultYOLOConfig()
	}

	logger := log.L().With("component", "app")
	a := &App{
		config:    cfg,
		camera:    capture.NewCamera(cfg.Source),
		pace:      cfg.Source.File == "",
		motion:    capture.NewMotionDetector(cfg.MotionThresh),
		activity:  capture.NewActivity(cfg.IdleHold),
		engine:    behavior.NewEngine(cfg.Tuning),
		pluginMgr: plugin.NewManager(cfg.PluginDir),
		frames:    capture.NewFrameBuffer(),
		logger:    logger,
		now:       time.Now,
		enabled:   true,
	}
	a.snapshot = a.engine.Snapshot()

	if cfg.Store != nil {
		a.dispatcher = plugin.NewDispatcher(cfg.Store.Hooks(), a.pluginMgr, plugin.NewExecutor(cfg.HookTimeout))
	}
	if cfg.CaptureDir != "" {
		w, err := capture.NewSnapshotWriter(cfg.CaptureDir)
		if err != nil {
			return nil, err
		}
		a.snapshots = w
	}
	if cfg.LogDir != "" {
		w, err := eventlog.New(cfg.LogDir)
		if err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		a.eventLog = w
	}

	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.hands = mp
		logger.Info("using MediaPipe hand detection")
	} else {
		logger.Warn("MediaPipe not available, hand detection disabled", "error", err)
		a.hands = detector.NewMockDetector()
	}
	if y, err := detector.NewYOLO(cfg.YOLO); err == nil {
		a.objects = y
		logger.Info("using YOLO object detection", "model", cfg.YOLO.ModelPath)
	} else {
		logger.Warn("YOLO not available, object detection disabled", "error", err)
		a.objects = detector.NewMockObjectDetector()
	}

	return a, nil
}

// SetLogger replaces the logger of the app and its engine.
func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
	a.engine.SetLogger(l)
	if a.dispatcher != nil {
		a.dispatcher.SetLogger(l)
	}
}

// SetEnabled pauses or resumes detection. Frames are still read while paused
// so the live stream stays current; in-progress cycles are abandoned.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetCamera replaces the frame source. Frames from it are processed as fast
// as it serves them. Must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.camera = c
	a.pace = false
}

// SetHandDetector replaces and closes the hand detector. Must be called
// before Start.
func (a *App) SetHandDetector(d detector.HandDetector) {
	if a.hands != nil {
		a.hands.Close()
	}
	a.hands = d
}

// SetObjectDetector replaces and closes the object detector. Must be called
// before Start.
func (a *App) SetObjectDetector(d detector.ObjectDetector) {
	if a.objects != nil {
		a.objects.Close()
	}
	a.objects = d
}

// SetClock replaces the frame timestamp source. Must be called before Start.
func (a *App) SetClock(now func() time.Time) {
	a.now = now
}

// SetIDGenerator replaces the event and capture ID source.
func (a *App) SetIDGenerator(fn func() string) {
	a.engine.SetIDGenerator(fn)
}

// SetBroadcaster sets the live subscriber hub.
func (a *App) SetBroadcaster(b Broadcaster) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.broadcaster = b
}

// OnEvent registers fn to be called for every emitted event.
func (a *App) OnEvent(fn EventFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// DiscoverPlugins scans the plugin directory.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start opens the camera and begins the pipeline. It returns immediately;
// the pipeline stops when ctx is cancelled, Stop is called or a finite
// source runs out of frames.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.activity.FPS())

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(ctx, a.done)

	a.logger.Info("detection pipeline started", "source", a.config.Source.String())
	return nil
}

// Done is closed when the pipeline goroutine exits. It is nil before Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Stop halts the pipeline, waits for running hooks and releases resources.
// The App cannot be started again afterwards.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.hooks.Wait()

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("error closing camera", "error", err)
	}
	a.motion.Close()
	if err := a.hands.Close(); err != nil {
		a.logger.Warn("error closing hand detector", "error", err)
	}
	if err := a.objects.Close(); err != nil {
		a.logger.Warn("error closing object detector", "error", err)
	}

	a.logger.Info("detection pipeline stopped")
}

// Snapshot returns the engine state after the last processed frame.
func (a *App) Snapshot() behavior.Snapshot {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snapshot
}

// Frames returns the buffer holding the latest encoded frame.
func (a *App) Frames() *capture.FrameBuffer {
	return a.frames
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}
