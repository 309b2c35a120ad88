// Package gesture classifies hand grips from fingertip geometry.
package gesture

import (
	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/detector"
)

// Flags are the per-frame grip predicates. Both may be false, and in rare
// poses both may be true.
type Flags struct {
	HoldingPen bool `json:"holding_pen"`
	HoldingCup bool `json:"holding_cup"`
}

// Classifier evaluates grip predicates on real hand landmarks.
type Classifier struct {
	cfg config.Gesture
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(cfg config.Gesture) *Classifier {
	return &Classifier{cfg: cfg}
}

// HoldingPen reports a writing grip: thumb, index and middle fingertips
// pinched together.
func (c *Classifier) HoldingPen(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	return h.Distance2D(detector.ThumbTip, detector.IndexTip) < c.cfg.PenPinchMax &&
		h.Distance2D(detector.ThumbTip, detector.MiddleTip) < c.cfg.PenSupportMax
}

// HoldingCup reports a C-shaped grip, with the thumb-index gap inside the
// configured band, edges included.
func (c *Classifier) HoldingCup(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	d := h.Distance2D(detector.ThumbTip, detector.IndexTip)
	return d >= c.cfg.CupGripMin && d <= c.cfg.CupGripMax
}

// Classify evaluates both predicates. A nil hand yields no flags.
func (c *Classifier) Classify(h *detector.HandLandmarks) Flags {
	return Flags{
		HoldingPen: c.HoldingPen(h),
		HoldingCup: c.HoldingCup(h),
	}
}
