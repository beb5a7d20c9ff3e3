package model

import "math"

// Point represents a 2D point in PDF user space.
type Point struct {
	X, Y float64
}

// BBox represents an axis-aligned rectangle in PDF user space.
// Coordinates are in points (1/72 inch) with the origin at the bottom-left.
type BBox struct {
	X      float64 // Left
	Y      float64 // Bottom
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from its origin and size.
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxFromRect creates a bounding box from two opposite corners given in
// any order.
func NewBBoxFromRect(x0, y0, x1, y1 float64) BBox {
	return BBox{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}

// BBoxOfPoints returns the smallest box enclosing all points.
func BBoxOfPoints(pts ...Point) BBox {
	if len(pts) == 0 {
		return BBox{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return NewBBoxFromRect(minX, minY, maxX, maxY)
}

func (b BBox) Left() float64   { return b.X }
func (b BBox) Right() float64  { return b.X + b.Width }
func (b BBox) Bottom() float64 { return b.Y }
func (b BBox) Top() float64    { return b.Y + b.Height }

// Center returns the center point.
func (b BBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Contains reports whether p lies inside or on the edge of b.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Bottom() && p.Y <= b.Top()
}

// Intersects reports whether two boxes overlap or touch.
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.Left() ||
		b.Left() > other.Right() ||
		b.Top() < other.Bottom() ||
		b.Bottom() > other.Top())
}

// Union returns the smallest box containing both boxes. The zero BBox is
// treated as empty so that Union can be used as an accumulator.
func (b BBox) Union(other BBox) BBox {
	if b == (BBox{}) {
		return other
	}
	if other == (BBox{}) {
		return b
	}
	x := math.Min(b.Left(), other.Left())
	y := math.Min(b.Bottom(), other.Bottom())
	right := math.Max(b.Right(), other.Right())
	top := math.Max(b.Top(), other.Top())
	return BBox{X: x, Y: y, Width: right - x, Height: top - y}
}

// Expand grows the box by margin on every side.
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X:      b.X - margin,
		Y:      b.Y - margin,
		Width:  b.Width + 2*margin,
		Height: b.Height + 2*margin,
	}
}

// Area returns Width*Height.
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// IsEmpty returns true if the box has no area.
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Inches converts the box dimensions from points to inches.
func (b BBox) Inches() (width, height float64) {
	return b.Width / PointsPerInch, b.Height / PointsPerInch
}

// PointsPerInch is the number of PDF user space units in one inch.
const PointsPerInch = 72.0

// Matrix represents a 2D affine transformation [a b c d e f].
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate creates a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Transform applies the matrix to a point.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m × other (m applied first).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// TransformRect maps the unit square through m and returns the bounding box
// of the result. Image XObjects are painted into exactly this area.
func (m Matrix) TransformRect(r BBox) BBox {
	return BBoxOfPoints(
		m.Transform(Point{X: r.Left(), Y: r.Bottom()}),
		m.Transform(Point{X: r.Right(), Y: r.Bottom()}),
		m.Transform(Point{X: r.Left(), Y: r.Top()}),
		m.Transform(Point{X: r.Right(), Y: r.Top()}),
	)
}

// ScaleY returns the vertical scale factor of the matrix.
func (m Matrix) ScaleY() float64 {
	return math.Hypot(m[2], m[3])
}

// Segment is a straight line between two points. Table rulings are stored as
// segments.
type Segment struct {
	From, To Point
}

// IsHorizontal reports whether the segment is horizontal within tol.
func (s Segment) IsHorizontal(tol float64) bool {
	return math.Abs(s.From.Y-s.To.Y) <= tol
}

// IsVertical reports whether the segment is vertical within tol.
func (s Segment) IsVertical(tol float64) bool {
	return math.Abs(s.From.X-s.To.X) <= tol
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return math.Hypot(s.To.X-s.From.X, s.To.Y-s.From.Y)
}
