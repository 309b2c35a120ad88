package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/deskwatch/internal/object"
)

// MockDetector is a test implementation of HandDetector.
// It returns either a fixed result or, when a script is set, one scripted
// result per call.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	script [][]HandLandmarks
	err    error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetScript queues per-frame results. Once exhausted, SetHands applies.
func (m *MockDetector) SetScript(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted result, the fixed hands, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// MockObjectDetector is a test implementation of ObjectDetector.
type MockObjectDetector struct {
	mu         sync.Mutex
	detections []object.Detection
	err        error
}

// NewMockObjectDetector creates a new MockObjectDetector instance.
func NewMockObjectDetector() *MockObjectDetector {
	return &MockObjectDetector{}
}

// SetDetections sets the detections returned by Detect.
func (m *MockObjectDetector) SetDetections(dets []object.Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detections = dets
}

// SetError sets the error that will be returned by Detect.
func (m *MockObjectDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the configured detections or error.
func (m *MockObjectDetector) Detect(frame *gocv.Mat) ([]object.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.detections, nil
}

// Close is a no-op.
func (m *MockObjectDetector) Close() error {
	return nil
}

// Translated returns a copy of h with every landmark shifted by (dx, dy) in
// normalized coordinates.
func Translated(h HandLandmarks, dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// baseHand fills the palm and the curled ring and pinky fingers shared by
// the preset grips.
func baseHand() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	h.Points[ThumbCMC] = Point3D{X: 0.45, Y: 0.75}
	h.Points[ThumbMCP] = Point3D{X: 0.43, Y: 0.68}
	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.66}
	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.65}
	h.Points[RingMCP] = Point3D{X: 0.46, Y: 0.66}
	h.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.68}

	h.Points[RingPIP] = Point3D{X: 0.45, Y: 0.62, Z: -0.03}
	h.Points[RingDIP] = Point3D{X: 0.45, Y: 0.64, Z: -0.04}
	h.Points[RingTip] = Point3D{X: 0.46, Y: 0.67, Z: -0.03}
	h.Points[PinkyPIP] = Point3D{X: 0.41, Y: 0.65, Z: -0.03}
	h.Points[PinkyDIP] = Point3D{X: 0.41, Y: 0.67, Z: -0.04}
	h.Points[PinkyTip] = Point3D{X: 0.42, Y: 0.69, Z: -0.03}

	return h
}

// CupGripLandmarks returns a C-shaped grip: thumb and index tips about 0.13
// apart, as when wrapping a hand around a cup.
func CupGripLandmarks() HandLandmarks {
	h := baseHand()

	h.Points[ThumbIP] = Point3D{X: 0.43, Y: 0.60}
	h.Points[ThumbTip] = Point3D{X: 0.45, Y: 0.55}

	h.Points[IndexPIP] = Point3D{X: 0.58, Y: 0.60}
	h.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.54}
	h.Points[IndexTip] = Point3D{X: 0.57, Y: 0.50}

	h.Points[MiddlePIP] = Point3D{X: 0.53, Y: 0.58}
	h.Points[MiddleDIP] = Point3D{X: 0.54, Y: 0.53}
	h.Points[MiddleTip] = Point3D{X: 0.53, Y: 0.49}

	return h
}

// PenGripLandmarks returns a writing grip: thumb, index and middle tips
// pinched together.
func PenGripLandmarks() HandLandmarks {
	h := baseHand()

	h.Points[ThumbIP] = Point3D{X: 0.47, Y: 0.63}
	h.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.60}

	h.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.58}
	h.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.59}
	h.Points[IndexTip] = Point3D{X: 0.54, Y: 0.61}

	h.Points[MiddlePIP] = Point3D{X: 0.53, Y: 0.59}
	h.Points[MiddleDIP] = Point3D{X: 0.54, Y: 0.61}
	h.Points[MiddleTip] = Point3D{X: 0.55, Y: 0.64}

	return h
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}
