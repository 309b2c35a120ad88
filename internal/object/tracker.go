package object

import "github.com/ayusman/deskwatch/internal/geom"

// Tracked is the object currently followed for one category.
type Tracked struct {
	Box     geom.Box `json:"box"`
	Class   string   `json:"class"`
	Missing int      `json:"missing"`
}

// Kind returns the recognized kind of the tracked object.
func (t Tracked) Kind() Kind {
	return KindOf(t.Class)
}

// Tracker keeps identity for at most one object via IoU matching.
// Tracking only begins through Begin; Update never starts it.
type Tracker struct {
	threshold  float64
	maxMissing int
	current    *Tracked
}

// NewTracker returns a Tracker that matches above threshold IoU and drops
// the object after more than maxMissing unmatched frames.
func NewTracker(threshold float64, maxMissing int) *Tracker {
	return &Tracker{threshold: threshold, maxMissing: maxMissing}
}

// Begin starts tracking d, replacing anything tracked before.
func (t *Tracker) Begin(d Detection) {
	t.current = &Tracked{Box: d.Box, Class: d.Class}
}

// Drop stops tracking.
func (t *Tracker) Drop() {
	t.current = nil
}

// Current returns the tracked object, if any.
func (t *Tracker) Current() (Tracked, bool) {
	if t.current == nil {
		return Tracked{}, false
	}
	return *t.current, true
}

// Update matches the tracked box against this frame's candidates. It
// reports whether a candidate was matched. Without a tracked object it does
// nothing.
func (t *Tracker) Update(candidates []Detection) bool {
	if t.current == nil {
		return false
	}

	best := -1
	bestIoU := t.threshold
	for i, c := range candidates {
		// strict > keeps the first of equal scores
		if iou := geom.IoU(t.current.Box, c.Box); iou > bestIoU {
			best, bestIoU = i, iou
		}
	}

	if best >= 0 {
		t.current.Box = candidates[best].Box
		t.current.Class = candidates[best].Class
		t.current.Missing = 0
		return true
	}

	t.current.Missing++
	if t.current.Missing > t.maxMissing {
		t.current = nil
	}
	return false
}
