package behavior

import (
	"fmt"
	"time"

	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/geom"
	"github.com/ayusman/deskwatch/internal/gesture"
	"github.com/ayusman/deskwatch/internal/hand"
	"github.com/ayusman/deskwatch/internal/interaction"
	"github.com/ayusman/deskwatch/internal/log"
	"github.com/ayusman/deskwatch/internal/object"
)

var t0 = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func at(frame int) time.Time {
	return t0.Add(time.Duration(frame) * time.Second / 30)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var (
	cupDet  = object.Detection{Box: geom.Box{X1: 350, Y1: 220, X2: 430, Y2: 340}, Class: "cup", Confidence: 0.9}
	bookDet = object.Detection{Box: geom.Box{X1: 250, Y1: 200, X2: 450, Y2: 450}, Class: "book", Confidence: 0.8}
)

func newTestDrinking(t config.Tuning) (*Drinking, *interaction.Lock) {
	lock := &interaction.Lock{}
	d := NewDrinking(t, lock)
	d.logger = log.Discard()
	d.newID = sequentialIDs()
	return d, lock
}

func newTestStudy(t config.Tuning) (*Study, *interaction.Lock) {
	lock := &interaction.Lock{}
	s := NewStudy(t, lock)
	s.logger = log.Discard()
	s.newID = sequentialIDs()
	return s, lock
}

// touching is a real hand at height y whose landmarks sit on det.
func touching(frame int, y float64, det object.Detection, flags gesture.Flags) Input {
	c := det.Box.Center()
	return Input{
		Time:       at(frame),
		Hand:       hand.Sample{Pos: geom.Point{X: c.X, Y: y}, Present: true},
		Probe:      interaction.Probe{Points: []geom.Point{c}, Position: geom.Point{X: c.X, Y: y}},
		Gestures:   flags,
		Candidates: []object.Detection{det},
	}
}

// away is a real hand far from every object.
func away(frame int, det object.Detection) Input {
	p := geom.Point{X: 5, Y: 5}
	return Input{
		Time:       at(frame),
		Hand:       hand.Sample{Pos: p, Present: true},
		Probe:      interaction.Probe{Points: []geom.Point{p}, Position: p},
		Candidates: []object.Detection{det},
	}
}

// restored is a predicted hand position during occlusion.
func restored(frame int, y float64, missing int, flags gesture.Flags) Input {
	p := geom.Point{X: 390, Y: y}
	return Input{
		Time:     at(frame),
		Hand:     hand.Sample{Pos: p, Present: true, Restored: true, Missing: missing},
		Probe:    interaction.Probe{Position: p, Restored: true},
		Gestures: flags,
	}
}

// absent is a frame without any hand.
func absent(frame, missing int) Input {
	return Input{Time: at(frame), Hand: hand.Sample{Missing: missing}}
}

var cupGrip = gesture.Flags{HoldingCup: true}
