// Package hand keeps a stable estimate of the tracked hand's position,
// bridging short occlusions with predicted positions.
package hand

import (
	"log/slog"

	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/geom"
	"github.com/ayusman/deskwatch/internal/log"
)

// Estimator produces a position for a frame without a measurement.
type Estimator interface {
	Estimate() (geom.Point, bool)
}

// Sample is the stabilizer's output for one frame.
type Sample struct {
	Pos      geom.Point `json:"pos"`
	Velocity geom.Point `json:"velocity"`
	Present  bool       `json:"present"`
	Restored bool       `json:"restored"`
	Missing  int        `json:"missing"`
}

// Stabilizer filters measured palm positions and, when asked, recovers
// missing ones for up to maxMissing consecutive frames.
type Stabilizer struct {
	kalman     *Kalman
	history    *History
	recovery   []Estimator
	maxMissing int
	missing    int
	logger     *slog.Logger
}

// NewStabilizer creates a Stabilizer. Recovery tries the filter first and
// linear extrapolation second.
func NewStabilizer(cfg config.Stabilizer, maxMissing int) *Stabilizer {
	k := NewKalman(cfg.ProcessNoise, cfg.MeasurementNoise)
	h := NewHistory(cfg.HistorySize)
	return &Stabilizer{
		kalman:     k,
		history:    h,
		recovery:   []Estimator{k, NewLinear(h)},
		maxMissing: maxMissing,
		logger:     log.L(),
	}
}

// SetLogger replaces the logger.
func (s *Stabilizer) SetLogger(l *slog.Logger) {
	s.logger = l
}

// Update consumes one frame. measured is the palm position in pixels, nil
// when the hand was not detected. recover enables occlusion recovery for
// this frame.
func (s *Stabilizer) Update(measured *geom.Point, recover bool, width, height int) Sample {
	if measured != nil {
		s.missing = 0
		pos := s.filter(*measured)
		s.history.Push(pos)
		return Sample{Pos: pos, Velocity: s.history.Velocity(), Present: true}
	}

	s.missing++
	if !recover || s.missing > s.maxMissing {
		return Sample{Missing: s.missing}
	}

	for _, e := range s.recovery {
		p, ok := e.Estimate()
		if !ok {
			continue
		}
		pos := geom.Clamp(p, width, height)
		s.history.Push(pos)
		return Sample{
			Pos:      pos,
			Velocity: s.history.Velocity(),
			Present:  true,
			Restored: true,
			Missing:  s.missing,
		}
	}
	return Sample{Missing: s.missing}
}

func (s *Stabilizer) filter(z geom.Point) geom.Point {
	if !s.kalman.Initialized() {
		s.kalman.Init(z)
		return z
	}
	if err := s.kalman.Correct(z); err != nil {
		s.logger.Warn("kalman correct failed, reinitializing", "error", err)
		s.kalman.Init(z)
		return z
	}
	return s.kalman.Predict()
}

// Missing returns the consecutive frames without a measurement.
func (s *Stabilizer) Missing() int {
	return s.missing
}

// Reset clears the filter, the history and the missing counter.
func (s *Stabilizer) Reset() {
	s.kalman.Reset()
	s.history.Reset()
	s.missing = 0
}
