package hand

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/deskwatch/internal/geom"
)

// Kalman is a constant-velocity filter over the state (x, y, vx, vy) with a
// position-only measurement. One step is one frame.
type Kalman struct {
	f *mat.Dense // transition
	h *mat.Dense // measurement
	q *mat.Dense // process noise
	r *mat.Dense // measurement noise

	x           *mat.VecDense
	p           *mat.Dense
	initialized bool
}

// NewKalman creates an uninitialized filter with diagonal noise covariances.
func NewKalman(processNoise, measurementNoise float64) *Kalman {
	k := &Kalman{
		f: mat.NewDense(4, 4, []float64{
			1, 0, 1, 0,
			0, 1, 0, 1,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}),
		h: mat.NewDense(2, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
		}),
		q: diag(4, processNoise),
		r: diag(2, measurementNoise),
	}
	k.Reset()
	return k
}

func diag(n int, v float64) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, v)
	}
	return d
}

// Reset discards the state. The next measurement initializes the filter.
func (k *Kalman) Reset() {
	k.x = mat.NewVecDense(4, nil)
	k.p = diag(4, 1)
	k.initialized = false
}

// Initialized reports whether the filter has seen a measurement since the
// last reset.
func (k *Kalman) Initialized() bool {
	return k.initialized
}

// Init sets the state to (p, zero velocity).
func (k *Kalman) Init(p geom.Point) {
	k.x = mat.NewVecDense(4, []float64{p.X, p.Y, 0, 0})
	k.p = diag(4, 1)
	k.initialized = true
}

// Correct folds the measurement z into the state.
func (k *Kalman) Correct(z geom.Point) error {
	var hx, innovation mat.VecDense
	hx.MulVec(k.h, k.x)
	innovation.SubVec(mat.NewVecDense(2, []float64{z.X, z.Y}), &hx)

	var pht, s, sInv, gain mat.Dense
	pht.Mul(k.p, k.h.T())
	s.Mul(k.h, &pht)
	s.Add(&s, k.r)
	if err := sInv.Inverse(&s); err != nil {
		return fmt.Errorf("invert innovation covariance: %w", err)
	}
	gain.Mul(&pht, &sInv)

	var dx mat.VecDense
	dx.MulVec(&gain, &innovation)
	k.x.AddVec(k.x, &dx)

	var kh, ikh, p mat.Dense
	kh.Mul(&gain, k.h)
	ikh.Sub(diag(4, 1), &kh)
	p.Mul(&ikh, k.p)
	k.p = &p
	return nil
}

// Predict advances the state one frame and returns the predicted position.
func (k *Kalman) Predict() geom.Point {
	var x mat.VecDense
	x.MulVec(k.f, k.x)
	k.x = &x

	var fp, p mat.Dense
	fp.Mul(k.f, k.p)
	p.Mul(&fp, k.f.T())
	p.Add(&p, k.q)
	k.p = &p

	return k.Position()
}

// Position returns the current position estimate.
func (k *Kalman) Position() geom.Point {
	return geom.Point{X: k.x.AtVec(0), Y: k.x.AtVec(1)}
}

// Velocity returns the current per-frame velocity estimate.
func (k *Kalman) Velocity() geom.Point {
	return geom.Point{X: k.x.AtVec(2), Y: k.x.AtVec(3)}
}

// Estimate implements Estimator with a pure predict step.
func (k *Kalman) Estimate() (geom.Point, bool) {
	if !k.initialized {
		return geom.Point{}, false
	}
	return k.Predict(), true
}
