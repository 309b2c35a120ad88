// Package detector provides the hand and object detector interfaces that feed
// the behavior engine, plus the MediaPipe and YOLO backends.
package detector

import (
	"math"

	"github.com/ayusman/deskwatch/internal/geom"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21

	// PalmCenter is the landmark used as the hand's position.
	PalmCenter = MiddleMCP
)

// KeyPoints are the landmarks checked for contact with an object: the wrist,
// the five fingertips and the palm center.
var KeyPoints = [...]int{Wrist, ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip, PalmCenter}

// Point3D represents a landmark in normalized image coordinates (x, y in
// [0,1]) with relative depth z.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance2D returns the image-plane distance between two landmarks in
// normalized coordinates.
func (h *HandLandmarks) Distance2D(a, b int) float64 {
	pa, pb := h.Points[a], h.Points[b]
	return math.Hypot(pa.X-pb.X, pa.Y-pb.Y)
}

// Pixel converts landmark i to pixel coordinates for a frame of the given size.
func (h *HandLandmarks) Pixel(i, width, height int) geom.Point {
	p := h.Points[i]
	return geom.Point{X: p.X * float64(width), Y: p.Y * float64(height)}
}

// Palm returns the palm center in pixel coordinates.
func (h *HandLandmarks) Palm(width, height int) geom.Point {
	return h.Pixel(PalmCenter, width, height)
}

// KeyPixels returns the contact landmarks in pixel coordinates.
func (h *HandLandmarks) KeyPixels(width, height int) []geom.Point {
	pts := make([]geom.Point, 0, len(KeyPoints))
	for _, idx := range KeyPoints {
		pts = append(pts, h.Pixel(idx, width, height))
	}
	return pts
}
