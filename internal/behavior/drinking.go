package behavior

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/interaction"
	"github.com/ayusman/deskwatch/internal/log"
	"github.com/ayusman/deskwatch/internal/object"
)

// DrinkingState is the phase of the drinking machine.
type DrinkingState string

const (
	DrinkingIdle       DrinkingState = "idle"
	DrinkingContacting DrinkingState = "contacting"
	DrinkingTracking   DrinkingState = "tracking"
)

// DrinkMetrics are the values judged at the end of the tracking window.
type DrinkMetrics struct {
	Rise        float64 `json:"rise_px"`
	Consistency float64 `json:"consistency"`
	GestureConf float64 `json:"gesture_conf"`
}

// Drinking detects a hand lifting a cup or bottle.
//
// After ContactFrames consecutive frames of hand-object contact it takes the
// lock and watches the hand for TrackingFrames frames. The cycle is confirmed
// when the hand rose far enough, mostly upward, with a cup grip for a large
// enough share of the window.
type Drinking struct {
	cfg     config.Drinking
	gate    interaction.Gate
	lock    *interaction.Lock
	tracker *object.Tracker
	seconds func(int) float64
	newID   func() string
	logger  *slog.Logger

	state    DrinkingState
	contact  int
	cooldown int
	kind     object.Kind

	initialY float64
	ys       []float64
	duration int
	upward   int
	cupValid int
}

// NewDrinking creates an idle drinking machine sharing lock.
func NewDrinking(t config.Tuning, lock *interaction.Lock) *Drinking {
	return &Drinking{
		cfg:     t.Drinking,
		gate:    interaction.Gate{Proximity: t.Drinking.Proximity},
		lock:    lock,
		tracker: object.NewTracker(t.IoUThreshold, t.Drinking.ObjectMissingFrames),
		seconds: t.Seconds,
		newID:   uuid.NewString,
		logger:  log.L(),
		state:   DrinkingIdle,
	}
}

// State returns the current phase.
func (d *Drinking) State() DrinkingState {
	return d.state
}

// Step advances the machine by one frame. A confirmed cycle returns its
// event and the capture it references.
func (d *Drinking) Step(in Input) (*DrinkingEvent, *CaptureRequest) {
	if d.state == DrinkingTracking {
		return d.track(in)
	}
	d.debounce(in)
	return nil, nil
}

func (d *Drinking) debounce(in Input) {
	if d.cooldown > 0 {
		d.cooldown--
		return
	}

	tracked := trackedPtr(d.tracker, in.Candidates)
	if !in.Hand.Present {
		d.resetContact()
		return
	}

	c, ok := d.gate.Check(in.Probe, tracked, in.Candidates)
	if ok && !d.lock.Available(interaction.OwnerDrinking) {
		d.logger.Debug("drink contact ignored", "lock", d.lock.Owner())
		ok = false
	}
	if !ok {
		d.resetContact()
		return
	}
	if !c.Tracked {
		d.tracker.Begin(c.Object)
	}
	d.kind = c.Object.Kind()
	d.contact++
	d.state = DrinkingContacting

	if d.contact < d.cfg.ContactFrames {
		return
	}
	if !d.lock.Acquire(interaction.OwnerDrinking) {
		d.resetContact()
		return
	}
	d.startTracking(in.Hand.Pos.Y)
}

func (d *Drinking) startTracking(y float64) {
	d.state = DrinkingTracking
	d.initialY = y
	d.ys = append(d.ys[:0], y)
	d.duration = 0
	d.upward = 0
	d.cupValid = 0
	d.logger.Debug("drinking tracking started", "object", d.kind.Label(), "y", y)
}

func (d *Drinking) track(in Input) (*DrinkingEvent, *CaptureRequest) {
	if cur := trackedPtr(d.tracker, in.Candidates); cur != nil {
		d.kind = cur.Kind()
	}

	if !in.Hand.Present {
		if in.Hand.Missing > d.cfg.HandMissingFrames {
			d.logger.Info("drinking aborted, hand lost",
				"missing", in.Hand.Missing, "tracked_frames", d.duration)
			d.reset()
		}
		return nil, nil
	}

	y := in.Hand.Pos.Y
	if d.lastY()-y > d.cfg.UpwardEpsilon {
		d.upward++
	}
	d.pushY(y)
	d.duration++
	// gestures only count on real landmarks
	if !in.Hand.Restored && in.Gestures.HoldingCup {
		d.cupValid++
	}

	if d.duration < d.cfg.TrackingFrames {
		return nil, nil
	}
	return d.evaluate(in)
}

func (d *Drinking) evaluate(in Input) (*DrinkingEvent, *CaptureRequest) {
	m := d.Metrics()
	kind, duration := d.kind, d.duration
	d.reset()

	if m.Rise < d.cfg.MinRise || m.Consistency < d.cfg.MinConsistency || m.GestureConf < d.cfg.MinGestureConfidence {
		d.logger.Info("drinking rejected",
			"rise", m.Rise, "consistency", m.Consistency, "gesture_conf", m.GestureConf)
		return nil, nil
	}

	d.cooldown = d.cfg.CooldownFrames
	capture := &CaptureRequest{ID: d.newID(), Label: CaptureDrinking, Time: in.Time}
	ev := &DrinkingEvent{
		ID:             d.newID(),
		Kind:           KindDrinking,
		Timestamp:      in.Time,
		Object:         kind.Label(),
		DurationFrames: duration,
		DurationSec:    d.seconds(duration),
		RisePx:         m.Rise,
		Consistency:    m.Consistency,
		GestureConf:    m.GestureConf,
		CaptureIDs:     []string{capture.ID},
	}
	d.logger.Info("drinking confirmed",
		"object", ev.Object, "rise", m.Rise, "consistency", m.Consistency, "gesture_conf", m.GestureConf)
	return ev, capture
}

// Metrics returns the tracking-window metrics accumulated so far.
func (d *Drinking) Metrics() DrinkMetrics {
	if d.duration == 0 {
		return DrinkMetrics{}
	}
	return DrinkMetrics{
		Rise:        d.initialY - d.lastY(),
		Consistency: float64(d.upward) / float64(d.duration),
		GestureConf: float64(d.cupValid) / float64(d.duration),
	}
}

func (d *Drinking) lastY() float64 {
	if len(d.ys) == 0 {
		return d.initialY
	}
	return d.ys[len(d.ys)-1]
}

func (d *Drinking) pushY(y float64) {
	if len(d.ys) == d.cfg.HistorySize {
		copy(d.ys, d.ys[1:])
		d.ys = d.ys[:len(d.ys)-1]
	}
	d.ys = append(d.ys, y)
}

func (d *Drinking) resetContact() {
	d.contact = 0
	d.state = DrinkingIdle
	d.tracker.Drop()
}

// reset returns to idle, releasing the lock and clearing all accumulators.
func (d *Drinking) reset() {
	d.lock.Release(interaction.OwnerDrinking)
	d.resetContact()
	d.ys = d.ys[:0]
	d.initialY = 0
	d.duration = 0
	d.upward = 0
	d.cupValid = 0
	d.kind = object.KindUnknown
}

// DrinkingSnapshot is the display state of the drinking machine.
type DrinkingSnapshot struct {
	State    DrinkingState   `json:"state"`
	Contact  int             `json:"contact"`
	Tracked  int             `json:"tracked"`
	Cooldown int             `json:"cooldown"`
	Metrics  DrinkMetrics    `json:"metrics"`
	Object   *object.Tracked `json:"object,omitempty"`
}

// Snapshot returns the display state.
func (d *Drinking) Snapshot() DrinkingSnapshot {
	s := DrinkingSnapshot{
		State:    d.state,
		Contact:  d.contact,
		Tracked:  d.duration,
		Cooldown: d.cooldown,
		Metrics:  d.Metrics(),
	}
	if cur, ok := d.tracker.Current(); ok {
		s.Object = &cur
	}
	return s
}
