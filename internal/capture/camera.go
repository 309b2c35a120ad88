// Package capture reads frames from a webcam or a recorded video, detects
// scene motion and saves snapshot images.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings. Frame counts in the behavior thresholds assume
// ActiveFPS.
const (
	ActiveFPS     = 30
	IdleFPS       = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEndOfStream is returned once a finite source has no more frames.
	ErrEndOfStream = errors.New("end of stream")
)

// Camera is a source of BGR frames.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Source selects the capture device or video file.
type Source struct {
	Device int    // camera index, used when File is empty
	File   string // recorded video to replay
	Width  int
	Height int
}

// DeviceSource returns a Source for camera index id at the default size.
func DeviceSource(id int) Source {
	return Source{Device: id, Width: DefaultWidth, Height: DefaultHeight}
}

// FileSource returns a Source replaying the video at path.
func FileSource(path string) Source {
	return Source{File: path}
}

func (s Source) String() string {
	if s.File != "" {
		return s.File
	}
	return fmt.Sprintf("camera %d", s.Device)
}

// cameraImpl reads from a gocv.VideoCapture.
type cameraImpl struct {
	src     Source
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a Camera for src. It starts at ActiveFPS.
func NewCamera(src Source) Camera {
	return &cameraImpl{src: src, fps: ActiveFPS}
}

// Open opens the device or file.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		vc  *gocv.VideoCapture
		err error
	)
	if c.src.File != "" {
		vc, err = gocv.VideoCaptureFile(c.src.File)
	} else {
		vc, err = gocv.OpenVideoCapture(c.src.Device)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", c.src, err)
	}

	if c.src.File == "" {
		if c.src.Width > 0 && c.src.Height > 0 {
			vc.Set(gocv.VideoCaptureFrameWidth, float64(c.src.Width))
			vc.Set(gocv.VideoCaptureFrameHeight, float64(c.src.Height))
		}
		vc.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = vc
	c.running = true
	return nil
}

// Close releases the capture.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// ReadFrame reads the next frame. The caller closes the returned Mat. A video
// file that ran out returns ErrEndOfStream.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		if c.src.File != "" {
			return nil, ErrEndOfStream
		}
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		if c.src.File != "" {
			return nil, ErrEndOfStream
		}
		return nil, errors.New("captured frame is empty")
	}
	return &mat, nil
}

// SetFPS changes the requested device frame rate. Values <= 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil && c.src.File == "" {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the requested frame rate.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the source is open.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
