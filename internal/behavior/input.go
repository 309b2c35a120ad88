package behavior

import (
	"time"

	"github.com/ayusman/deskwatch/internal/gesture"
	"github.com/ayusman/deskwatch/internal/hand"
	"github.com/ayusman/deskwatch/internal/interaction"
	"github.com/ayusman/deskwatch/internal/object"
)

// Input is the per-frame signal a state machine consumes.
type Input struct {
	Time       time.Time
	Hand       hand.Sample
	Probe      interaction.Probe
	Gestures   gesture.Flags
	Candidates []object.Detection // accepted detections of the machine's category
}

// trackedPtr updates t against candidates and returns the tracked object, if
// any.
func trackedPtr(t *object.Tracker, candidates []object.Detection) *object.Tracked {
	t.Update(candidates)
	cur, ok := t.Current()
	if !ok {
		return nil
	}
	return &cur
}
