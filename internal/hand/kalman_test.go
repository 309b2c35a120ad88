package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/deskwatch/internal/geom"
)

func TestKalman_Uninitialized(t *testing.T) {
	k := NewKalman(1, 4)
	assert.False(t, k.Initialized())

	_, ok := k.Estimate()
	assert.False(t, ok, "an uninitialized filter must not estimate")
}

func TestKalman_StationaryStaysPut(t *testing.T) {
	k := NewKalman(1, 4)
	k.Init(geom.Point{X: 100, Y: 100})

	for i := 0; i < 10; i++ {
		require.NoError(t, k.Correct(geom.Point{X: 100, Y: 100}))
		assert.Equal(t, geom.Point{X: 100, Y: 100}, k.Predict())
	}
	assert.Equal(t, geom.Point{}, k.Velocity())
}

func TestKalman_ConvergesOnConstantVelocity(t *testing.T) {
	k := NewKalman(1, 4)
	k.Init(geom.Point{X: 0, Y: 200})

	var pred geom.Point
	for i := 1; i <= 60; i++ {
		require.NoError(t, k.Correct(geom.Point{X: float64(10 * i), Y: 200 - float64(5*i)}))
		pred = k.Predict()
	}

	// Correct then predict yields the next frame's position.
	assert.InDelta(t, 610, pred.X, 1.0)
	assert.InDelta(t, 200-305, pred.Y, 1.0)
	assert.InDelta(t, 10, k.Velocity().X, 0.5)
	assert.InDelta(t, -5, k.Velocity().Y, 0.5)
}

func TestKalman_EstimateFollowsVelocity(t *testing.T) {
	k := NewKalman(1, 4)
	k.Init(geom.Point{X: 0, Y: 0})
	for i := 1; i <= 30; i++ {
		require.NoError(t, k.Correct(geom.Point{X: float64(4 * i), Y: 0}))
		k.Predict()
	}

	before := k.Position()
	p, ok := k.Estimate()
	require.True(t, ok)
	assert.Greater(t, p.X, before.X, "pure prediction continues the motion")
}

func TestKalman_Reset(t *testing.T) {
	k := NewKalman(1, 4)
	k.Init(geom.Point{X: 5, Y: 5})
	k.Reset()

	assert.False(t, k.Initialized())
	assert.Equal(t, geom.Point{}, k.Position())
}
