package behavior

import "time"

// Kind names the behavior an event records.
type Kind string

const (
	KindDrinking Kind = "drinking"
	KindStudy    Kind = "study"
)

// Capture labels, used as the snapshot file name prefix.
const (
	CaptureDrinking   = "water_drinking"
	CaptureStudyStart = "study_start"
)

// Event is a confirmed behavior record. Events are immutable once emitted.
type Event interface {
	EventKind() Kind
	EventID() string
	OccurredAt() time.Time
}

// DrinkingEvent records one confirmed drink.
type DrinkingEvent struct {
	ID             string    `json:"id"`
	Kind           Kind      `json:"kind"`
	Timestamp      time.Time `json:"timestamp"`
	Object         string    `json:"object"`
	DurationFrames int       `json:"duration_frames"`
	DurationSec    float64   `json:"duration_sec"`
	RisePx         float64   `json:"rise_px"`
	Consistency    float64   `json:"consistency"`
	GestureConf    float64   `json:"gesture_conf"`
	CaptureIDs     []string  `json:"capture_ids"`
}

func (e *DrinkingEvent) EventKind() Kind       { return KindDrinking }
func (e *DrinkingEvent) EventID() string       { return e.ID }
func (e *DrinkingEvent) OccurredAt() time.Time { return e.Timestamp }

// StudyEvent records one finished study session.
type StudyEvent struct {
	ID             string    `json:"id"`
	Kind           Kind      `json:"kind"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Object         string    `json:"object"`
	Detail         string    `json:"detail"`
	DurationFrames int       `json:"duration_frames"`
	DurationSec    float64   `json:"duration_sec"`
	CaptureIDs     []string  `json:"capture_ids"`
}

func (e *StudyEvent) EventKind() Kind       { return KindStudy }
func (e *StudyEvent) EventID() string       { return e.ID }
func (e *StudyEvent) OccurredAt() time.Time { return e.End }

// CaptureRequest asks the caller to save the current frame.
type CaptureRequest struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Time  time.Time `json:"time"`
}

// Output is everything one frame produced.
type Output struct {
	Events   []Event
	Captures []CaptureRequest
}

// Empty reports whether the frame produced nothing.
func (o Output) Empty() bool {
	return len(o.Events) == 0 && len(o.Captures) == 0
}
