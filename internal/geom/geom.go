// Package geom provides the pixel-space geometry shared by the tracker,
// the hand stabilizer and the interaction gate.
package geom

import "math"

// Point is a 2D position in pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Box is an axis-aligned bounding box with corners (X1,Y1) top-left and
// (X2,Y2) bottom-right.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the box width, which may be negative for degenerate boxes.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the box height, which may be negative for degenerate boxes.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the box area, or 0 when width or height is not positive.
func (b Box) Area() float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Center returns the geometric center of the box.
func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// AspectRatio returns height / width, or 0 for a box with no width.
func (b Box) AspectRatio() float64 {
	w := b.Width()
	if w <= 0 {
		return 0
	}
	return b.Height() / w
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X1 && p.X <= b.X2 && p.Y >= b.Y1 && p.Y <= b.Y2
}

// DistanceTo returns the distance from p to the closest point of the box.
// Points inside the box are at distance 0.
func (b Box) DistanceTo(p Point) float64 {
	if b.Contains(p) {
		return 0
	}
	closest := Point{
		X: math.Max(b.X1, math.Min(p.X, b.X2)),
		Y: math.Max(b.Y1, math.Min(p.Y, b.Y2)),
	}
	return p.Distance(closest)
}

// IoU returns the intersection-over-union of a and b. Degenerate boxes have
// zero area, and the result is 0 whenever the union area is 0.
func IoU(a, b Box) float64 {
	inter := Box{
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
		X2: math.Min(a.X2, b.X2),
		Y2: math.Min(a.Y2, b.Y2),
	}.Area()

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Clamp limits p to the frame [0,width-1] x [0,height-1].
func Clamp(p Point, width, height int) Point {
	maxX := math.Max(float64(width-1), 0)
	maxY := math.Max(float64(height-1), 0)
	return Point{
		X: math.Max(0, math.Min(p.X, maxX)),
		Y: math.Max(0, math.Min(p.Y, maxY)),
	}
}
