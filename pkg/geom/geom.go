// Package geom provides the 2D primitives shared by all edge-geometry
// components: points, sizes, and axis-aligned rectangles.
//
// All coordinates are in diagram units (the same space the layout engine
// positions nodes in). The y axis grows downward, matching SVG conventions.
package geom

import "math"

// Epsilon guards divisions by near-zero vector lengths.
// Degenerate geometry (zero-length edges, coincident points) is clamped
// to this floor instead of producing NaN or Inf.
const Epsilon = 0.001

// Point is a 2D coordinate. It is the atom of every path representation:
// anchors, waypoints, and bundle control points are all Points.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p with both components multiplied by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	dx := q.X - p.X
	dy := q.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// Lerp returns the point a fraction t of the way from p to q.
// t is not clamped; t=0 yields p and t=1 yields q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + t*(q.X-p.X), p.Y + t*(q.Y-p.Y)}
}

// Length returns the magnitude of p treated as a vector.
func (p Point) Length() float64 { return math.Sqrt(p.X*p.X + p.Y*p.Y) }

// Normalize returns p scaled to unit length. Vectors shorter than
// Epsilon are returned unchanged to avoid dividing by zero.
func (p Point) Normalize() Point {
	l := p.Length()
	if l < Epsilon {
		return p
	}
	return Point{p.X / l, p.Y / l}
}

// Dot returns the dot product of p and q as vectors.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Perp returns p rotated 90 degrees counter-clockwise.
// Offsetting along Perp of an edge direction shifts parallel edges apart.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Min  Point // top-left corner
	Size Size
}

// RectAt constructs a Rect from a top-left corner and dimensions.
func RectAt(x, y, w, h float64) Rect {
	return Rect{Min: Point{x, y}, Size: Size{w, h}}
}

// Max returns the bottom-right corner.
func (r Rect) Max() Point {
	return Point{r.Min.X + r.Size.Width, r.Min.Y + r.Size.Height}
}

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{r.Min.X + r.Size.Width/2, r.Min.Y + r.Size.Height/2}
}

// Contains reports whether p lies inside or on the boundary of r.
func (r Rect) Contains(p Point) bool {
	max := r.Max()
	return p.X >= r.Min.X && p.X <= max.X && p.Y >= r.Min.Y && p.Y <= max.Y
}

// Intersects reports whether r and q overlap, including edge contact.
func (r Rect) Intersects(q Rect) bool {
	rMax, qMax := r.Max(), q.Max()
	return r.Min.X <= qMax.X && q.Min.X <= rMax.X &&
		r.Min.Y <= qMax.Y && q.Min.Y <= rMax.Y
}

// Expand returns r grown by pad on every side.
// A negative pad shrinks the rectangle; the caller must keep it valid.
func (r Rect) Expand(pad float64) Rect {
	return Rect{
		Min:  Point{r.Min.X - pad, r.Min.Y - pad},
		Size: Size{r.Size.Width + 2*pad, r.Size.Height + 2*pad},
	}
}

// Union returns the smallest rectangle covering both r and q.
func (r Rect) Union(q Rect) Rect {
	minX := math.Min(r.Min.X, q.Min.X)
	minY := math.Min(r.Min.Y, q.Min.Y)
	maxX := math.Max(r.Max().X, q.Max().X)
	maxY := math.Max(r.Max().Y, q.Max().Y)
	return RectAt(minX, minY, maxX-minX, maxY-minY)
}

// VerticalOverlap reports whether the vertical extents of r and q overlap.
// Orthogonal routing uses this to decide horizontal-first vs vertical-first.
func (r Rect) VerticalOverlap(q Rect) bool {
	return !(r.Max().Y < q.Min.Y || q.Max().Y < r.Min.Y)
}
