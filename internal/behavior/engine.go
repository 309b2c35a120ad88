// Package behavior turns per-frame detections and hand landmarks into
// drinking and study events.
//
// The Engine owns one drinking machine and one study machine that share an
// interaction lock, so at most one behavior is being confirmed at a time.
// Frames must be fed in capture order from a single goroutine.
package behavior

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/detector"
	"github.com/ayusman/deskwatch/internal/geom"
	"github.com/ayusman/deskwatch/internal/gesture"
	"github.com/ayusman/deskwatch/internal/hand"
	"github.com/ayusman/deskwatch/internal/interaction"
	"github.com/ayusman/deskwatch/internal/log"
	"github.com/ayusman/deskwatch/internal/object"
)

// Frame is one frame of detector output.
type Frame struct {
	Time       time.Time
	Width      int
	Height     int
	Detections []object.Detection
	Hand       *detector.HandLandmarks // nil when no hand was detected
}

// Snapshot is the read-only display state after a frame.
type Snapshot struct {
	Frame    int64             `json:"frame"`
	Owner    interaction.Owner `json:"owner"`
	Drinking DrinkingSnapshot  `json:"drinking"`
	Study    StudySnapshot     `json:"study"`
	Gestures gesture.Flags     `json:"gestures"`
	Hand     hand.Sample       `json:"hand"`
}

// Engine runs the behavior pipeline for one camera.
type Engine struct {
	cfg        config.Tuning
	filter     object.Filter
	classifier *gesture.Classifier
	stabilizer *hand.Stabilizer
	lock       *interaction.Lock
	drinking   *Drinking
	study      *Study
	now        func() time.Time
	logger     *slog.Logger

	frame    int64
	gestures gesture.Flags
	sample   hand.Sample
}

// NewEngine creates an Engine. cfg is expected to be validated.
func NewEngine(cfg config.Tuning) *Engine {
	lock := &interaction.Lock{}
	return &Engine{
		cfg:        cfg,
		filter:     object.NewFilter(cfg),
		classifier: gesture.NewClassifier(cfg.Gesture),
		stabilizer: hand.NewStabilizer(cfg.Stabilizer, cfg.Drinking.HandMissingFrames),
		lock:       lock,
		drinking:   NewDrinking(cfg, lock),
		study:      NewStudy(cfg, lock),
		now:        time.Now,
		logger:     log.L(),
	}
}

// SetLogger replaces the logger of the engine and its components.
func (e *Engine) SetLogger(l *slog.Logger) {
	e.logger = l
	e.stabilizer.SetLogger(l)
	e.drinking.logger = l.With("machine", "drinking")
	e.study.logger = l.With("machine", "study")
}

// SetIDGenerator replaces the event and capture ID source.
func (e *Engine) SetIDGenerator(fn func() string) {
	if fn == nil {
		fn = uuid.NewString
	}
	e.drinking.newID = fn
	e.study.newID = fn
}

// SetClock replaces the time source used for frames without a timestamp.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Process advances every component by one frame.
func (e *Engine) Process(f Frame) Output {
	e.frame++
	if f.Time.IsZero() {
		f.Time = e.now()
	}

	drinks, studies := e.filter.Split(f.Detections, f.Width, f.Height)
	e.gestures = e.classifier.Classify(f.Hand)

	var measured *geom.Point
	if f.Hand != nil {
		p := f.Hand.Palm(f.Width, f.Height)
		measured = &p
	}
	wasTracking := e.drinking.State() == DrinkingTracking
	e.sample = e.stabilizer.Update(measured, wasTracking, f.Width, f.Height)

	probe := interaction.Probe{Position: e.sample.Pos, Restored: e.sample.Restored}
	if f.Hand != nil {
		probe.Points = f.Hand.KeyPixels(f.Width, f.Height)
	}

	in := Input{
		Time:     f.Time,
		Hand:     e.sample,
		Probe:    probe,
		Gestures: e.gestures,
	}

	var out Output

	in.Candidates = drinks
	ev, req := e.drinking.Step(in)
	if ev != nil {
		out.Events = append(out.Events, ev)
	}
	if req != nil {
		out.Captures = append(out.Captures, *req)
	}
	if wasTracking && e.drinking.State() != DrinkingTracking {
		e.stabilizer.Reset()
	}

	in.Candidates = studies
	sev, sreq := e.study.Step(in)
	if sev != nil {
		out.Events = append(out.Events, sev)
	}
	if sreq != nil {
		out.Captures = append(out.Captures, *sreq)
	}

	return out
}

// Snapshot returns the display state after the last processed frame.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Frame:    e.frame,
		Owner:    e.lock.Owner(),
		Drinking: e.drinking.Snapshot(),
		Study:    e.study.Snapshot(),
		Gestures: e.gestures,
		Hand:     e.sample,
	}
}

// Reset abandons any in-progress cycle and returns every component to its
// initial state.
func (e *Engine) Reset() {
	e.drinking.reset()
	e.drinking.cooldown = 0
	e.study.reset()
	e.stabilizer.Reset()
	e.gestures = gesture.Flags{}
	e.sample = hand.Sample{}
}
