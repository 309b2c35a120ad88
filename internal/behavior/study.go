package behavior

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/interaction"
	"github.com/ayusman/deskwatch/internal/log"
	"github.com/ayusman/deskwatch/internal/object"
)

// StudyState is the phase of the study machine.
type StudyState string

const (
	StudyIdle     StudyState = "idle"
	StudyStarting StudyState = "starting"
	StudyStudying StudyState = "studying"
)

// Study detects sustained work with a book, laptop or keyboard.
//
// A session starts after StartFrames consecutive frames of contact and ends
// once contact has been absent for AwayFrames frames. Sessions shorter than
// MinSessionFrames are dropped.
type Study struct {
	cfg     config.Study
	gate    interaction.Gate
	lock    *interaction.Lock
	tracker *object.Tracker
	seconds func(int) float64
	newID   func() string
	logger  *slog.Logger

	state   StudyState
	start   int
	total   int
	away    int
	writing bool

	started   time.Time
	kind      object.Kind
	class     string
	captureID string
}

// NewStudy creates an idle study machine sharing lock.
func NewStudy(t config.Tuning, lock *interaction.Lock) *Study {
	return &Study{
		cfg:     t.Study,
		gate:    interaction.Gate{Proximity: t.Study.Proximity},
		lock:    lock,
		tracker: object.NewTracker(t.IoUThreshold, t.Study.ObjectMissingFrames),
		seconds: t.Seconds,
		newID:   uuid.NewString,
		logger:  log.L(),
		state:   StudyIdle,
	}
}

// State returns the current phase.
func (s *Study) State() StudyState {
	return s.state
}

// Step advances the machine by one frame. Entering a session returns a
// capture request; a finished session long enough to count returns its
// event.
func (s *Study) Step(in Input) (*StudyEvent, *CaptureRequest) {
	if s.state == StudyStudying {
		return s.study(in), nil
	}
	return nil, s.debounce(in)
}

func (s *Study) debounce(in Input) *CaptureRequest {
	tracked := trackedPtr(s.tracker, in.Candidates)
	if !in.Hand.Present || !s.lock.Available(interaction.OwnerStudying) {
		s.resetStart()
		return nil
	}

	c, ok := s.gate.Check(in.Probe, tracked, in.Candidates)
	if !ok {
		s.resetStart()
		return nil
	}
	if !c.Tracked {
		s.tracker.Begin(c.Object)
	}
	s.start++
	s.state = StudyStarting

	if s.start < s.cfg.StartFrames {
		return nil
	}
	if !s.lock.Acquire(interaction.OwnerStudying) {
		s.resetStart()
		return nil
	}

	s.state = StudyStudying
	s.started = in.Time
	s.kind = c.Object.Kind()
	s.class = c.Object.Class
	s.total = 0
	s.away = 0
	s.writing = in.Gestures.HoldingPen
	s.captureID = s.newID()
	s.logger.Info("study session started", "object", s.kind.Label())
	return &CaptureRequest{ID: s.captureID, Label: CaptureStudyStart, Time: in.Time}
}

func (s *Study) study(in Input) *StudyEvent {
	s.total++
	tracked := trackedPtr(s.tracker, in.Candidates)

	var (
		c  interaction.Contact
		ok bool
	)
	if in.Hand.Present {
		c, ok = s.gate.Check(in.Probe, tracked, in.Candidates)
	}
	if ok {
		if !c.Tracked {
			s.tracker.Begin(c.Object)
		}
		s.away = 0
		s.writing = in.Gestures.HoldingPen
		return nil
	}

	s.writing = false
	s.away++
	if s.away < s.cfg.AwayFrames {
		return nil
	}
	return s.finish(in.Time)
}

func (s *Study) finish(end time.Time) *StudyEvent {
	defer s.reset()

	if s.total < s.cfg.MinSessionFrames {
		s.logger.Info("study session discarded, too short", "frames", s.total)
		return nil
	}

	ev := &StudyEvent{
		ID:             s.newID(),
		Kind:           KindStudy,
		Start:          s.started,
		End:            end,
		Object:         s.kind.Label(),
		Detail:         s.class,
		DurationFrames: s.total,
		DurationSec:    s.seconds(s.total),
		CaptureIDs:     []string{s.captureID},
	}
	s.logger.Info("study session ended", "object", ev.Object, "frames", s.total, "seconds", ev.DurationSec)
	return ev
}

func (s *Study) resetStart() {
	s.start = 0
	s.state = StudyIdle
	s.tracker.Drop()
}

func (s *Study) reset() {
	s.lock.Release(interaction.OwnerStudying)
	s.resetStart()
	s.total = 0
	s.away = 0
	s.writing = false
	s.started = time.Time{}
	s.kind = object.KindUnknown
	s.class = ""
	s.captureID = ""
}

// StudySnapshot is the display state of the study machine.
type StudySnapshot struct {
	State   StudyState      `json:"state"`
	Start   int             `json:"start"`
	Total   int             `json:"total"`
	Away    int             `json:"away"`
	Writing bool            `json:"writing"`
	Since   *time.Time      `json:"since,omitempty"` // nil unless studying
	Object  *object.Tracked `json:"object,omitempty"`
}

// Snapshot returns the display state.
func (s *Study) Snapshot() StudySnapshot {
	snap := StudySnapshot{
		State:   s.state,
		Start:   s.start,
		Total:   s.total,
		Away:    s.away,
		Writing: s.writing,
	}
	if !s.started.IsZero() {
		since := s.started
		snap.Since = &since
	}
	if cur, ok := s.tracker.Current(); ok {
		snap.Object = &cur
	}
	return snap
}
