package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/deskwatch/internal/geom"
	"github.com/ayusman/deskwatch/internal/object"
)

func cup(x1, y1, x2, y2 float64) object.Detection {
	return object.Detection{Box: geom.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, Class: "cup", Confidence: 0.9}
}

func TestProbe_Distance(t *testing.T) {
	box := geom.Box{X1: 100, Y1: 100, X2: 200, Y2: 200}

	t.Run("landmark inside box", func(t *testing.T) {
		p := Probe{Points: []geom.Point{{X: 0, Y: 0}, {X: 150, Y: 150}}}
		assert.Equal(t, 0.0, p.Distance(box))
	})

	t.Run("nearest landmark wins", func(t *testing.T) {
		p := Probe{Points: []geom.Point{{X: 0, Y: 150}, {X: 230, Y: 150}, {X: 150, Y: 240}}}
		assert.Equal(t, 30.0, p.Distance(box))
	})

	t.Run("restored measures to center", func(t *testing.T) {
		p := Probe{
			Points:   []geom.Point{{X: 150, Y: 150}},
			Position: geom.Point{X: 150, Y: 250},
			Restored: true,
		}
		assert.Equal(t, 100.0, p.Distance(box))
	})
}

func TestGate_Check(t *testing.T) {
	g := Gate{Proximity: 50}
	hand := Probe{Points: []geom.Point{{X: 300, Y: 300}}}

	t.Run("no candidates", func(t *testing.T) {
		_, ok := g.Check(hand, nil, nil)
		assert.False(t, ok)
	})

	t.Run("at threshold is contact", func(t *testing.T) {
		c, ok := g.Check(hand, nil, []object.Detection{cup(350, 250, 400, 350)})
		require.True(t, ok)
		assert.Equal(t, 50.0, c.Distance)
		assert.False(t, c.Tracked)
	})

	t.Run("beyond threshold", func(t *testing.T) {
		_, ok := g.Check(hand, nil, []object.Detection{cup(351, 250, 400, 350)})
		assert.False(t, ok)
	})

	t.Run("nearest candidate", func(t *testing.T) {
		far := cup(340, 250, 400, 350)
		near := cup(310, 250, 400, 350)
		c, ok := g.Check(hand, nil, []object.Detection{far, near})
		require.True(t, ok)
		assert.Equal(t, near.Box, c.Object.Box)
		assert.Equal(t, 10.0, c.Distance)
	})

	t.Run("tracked object has priority", func(t *testing.T) {
		tracked := &object.Tracked{Box: geom.Box{X1: 330, Y1: 250, X2: 400, Y2: 350}, Class: "bottle"}
		c, ok := g.Check(hand, tracked, []object.Detection{cup(280, 280, 320, 320)})
		require.True(t, ok)
		assert.True(t, c.Tracked)
		assert.Equal(t, "bottle", c.Object.Class)
	})

	t.Run("falls back when tracked is out of reach", func(t *testing.T) {
		tracked := &object.Tracked{Box: geom.Box{X1: 500, Y1: 0, X2: 600, Y2: 100}, Class: "bottle"}
		c, ok := g.Check(hand, tracked, []object.Detection{cup(280, 280, 320, 320)})
		require.True(t, ok)
		assert.False(t, c.Tracked)
		assert.Equal(t, "cup", c.Object.Class)
	})
}
