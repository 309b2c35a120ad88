package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/deskwatch/internal/object"
)

// HandDetector defines the interface for hand pose estimation backends.
type HandDetector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// ObjectDetector defines the interface for object detection backends.
type ObjectDetector interface {
	// Detect returns the objects found in the frame, boxes in pixel space.
	Detect(frame *gocv.Mat) ([]object.Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. The behavior engine
	// follows exactly one hand.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// FirstHand returns the first hand of a detection result, or nil when the
// hand is absent.
func FirstHand(hands []HandLandmarks) *HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	h := hands[0]
	return &h
}
