// Package interaction decides hand-object contact and arbitrates which
// behavior may progress.
package interaction

import (
	"math"

	"github.com/ayusman/deskwatch/internal/geom"
	"github.com/ayusman/deskwatch/internal/object"
)

// Probe is the hand as seen by the gate for one frame.
type Probe struct {
	// Points are the key landmarks in pixels. Empty for a restored hand.
	Points []geom.Point
	// Position is the stabilized hand position.
	Position geom.Point
	// Restored marks a predicted position with no landmark geometry.
	Restored bool
}

// Distance returns the probe's distance to b. Real landmarks use the nearest
// key point to the closest point of the box; a restored position is measured
// to the box center.
func (p Probe) Distance(b geom.Box) float64 {
	if p.Restored || len(p.Points) == 0 {
		return p.Position.Distance(b.Center())
	}
	best := math.Inf(1)
	for _, pt := range p.Points {
		if d := b.DistanceTo(pt); d < best {
			best = d
		}
	}
	return best
}

// Contact describes a hand-object contact.
type Contact struct {
	Object   object.Detection
	Distance float64
	// Tracked is set when the contact is with the tracked object.
	Tracked bool
}

// Gate tests contact within a proximity distance in pixels.
type Gate struct {
	Proximity float64
}

// Check returns the contact for this frame, if any. The tracked object is
// checked first; otherwise the nearest candidate within proximity wins, the
// first one on equal distance.
func (g Gate) Check(p Probe, tracked *object.Tracked, candidates []object.Detection) (Contact, bool) {
	if tracked != nil {
		if d := p.Distance(tracked.Box); d <= g.Proximity {
			return Contact{
				Object:   object.Detection{Box: tracked.Box, Class: tracked.Class},
				Distance: d,
				Tracked:  true,
			}, true
		}
	}

	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		d := p.Distance(c.Box)
		if d <= g.Proximity && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Contact{}, false
	}
	return Contact{Object: candidates[best], Distance: bestDist}, true
}
