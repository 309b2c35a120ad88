package hand

import "github.com/ayusman/deskwatch/internal/geom"

// History is a bounded list of the most recent hand positions, oldest first.
type History struct {
	size   int
	points []geom.Point
}

// NewHistory creates a History holding at most size positions.
func NewHistory(size int) *History {
	if size < 2 {
		size = 2
	}
	return &History{size: size, points: make([]geom.Point, 0, size)}
}

// Push appends p, evicting the oldest position when full.
func (h *History) Push(p geom.Point) {
	if len(h.points) == h.size {
		copy(h.points, h.points[1:])
		h.points = h.points[:h.size-1]
	}
	h.points = append(h.points, p)
}

// Len returns the number of retained positions.
func (h *History) Len() int {
	return len(h.points)
}

// Last returns the most recent position.
func (h *History) Last() (geom.Point, bool) {
	if len(h.points) == 0 {
		return geom.Point{}, false
	}
	return h.points[len(h.points)-1], true
}

// Velocity returns the delta between the two most recent positions, or zero
// with fewer than two.
func (h *History) Velocity() geom.Point {
	n := len(h.points)
	if n < 2 {
		return geom.Point{}
	}
	return h.points[n-1].Sub(h.points[n-2])
}

// Reset empties the history.
func (h *History) Reset() {
	h.points = h.points[:0]
}

// Linear extrapolates one frame ahead from a History.
type Linear struct {
	history *History
}

// NewLinear creates a Linear estimator reading h.
func NewLinear(h *History) *Linear {
	return &Linear{history: h}
}

// Estimate implements Estimator: last position plus last velocity.
func (l *Linear) Estimate() (geom.Point, bool) {
	last, ok := l.history.Last()
	if !ok {
		return geom.Point{}, false
	}
	return last.Add(l.history.Velocity()), true
}
