package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedBBox is returned when a bounding box violates the corner
// invariant X1 >= X0, Y1 >= Y0.
var ErrMalformedBBox = errors.New("malformed bbox: max corner precedes min corner")

// Point represents a 2D point in page coordinates.
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents an axis-aligned rectangle by its corners. (X0, Y0) is the
// minimum corner and (X1, Y1) the maximum corner. In page space y grows
// downward, so Y0 is the top edge and Y1 the bottom edge.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewBBox creates a bounding box and validates the corner invariant.
// Malformed geometry is rejected here, never silently coerced.
func NewBBox(x0, y0, x1, y1 float64) (BBox, error) {
	if x1 < x0 || y1 < y0 {
		return BBox{}, fmt.Errorf("%w: (%g,%g,%g,%g)", ErrMalformedBBox, x0, y0, x1, y1)
	}
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, nil
}

// NewBBoxFromPoints creates the bounding box spanned by two points.
func NewBBoxFromPoints(p1, p2 Point) BBox {
	return BBox{
		X0: math.Min(p1.X, p2.X),
		Y0: math.Min(p1.Y, p2.Y),
		X1: math.Max(p1.X, p2.X),
		Y1: math.Max(p1.Y, p2.Y),
	}
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent.
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Left returns the left edge X coordinate.
func (b BBox) Left() float64 {
	return b.X0
}

// Right returns the right edge X coordinate.
func (b BBox) Right() float64 {
	return b.X1
}

// Top returns the top edge Y coordinate (smaller y is higher on the page).
func (b BBox) Top() float64 {
	return b.Y0
}

// Bottom returns the bottom edge Y coordinate.
func (b BBox) Bottom() float64 {
	return b.Y1
}

// Center returns the center point.
func (b BBox) Center() Point {
	return Point{X: b.CenterX(), Y: b.CenterY()}
}

// CenterX returns the center X coordinate.
func (b BBox) CenterX() float64 {
	return (b.X0 + b.X1) / 2
}

// CenterY returns the center Y coordinate.
func (b BBox) CenterY() float64 {
	return (b.Y0 + b.Y1) / 2
}

// Area returns the area of the bounding box.
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// Contains checks if a point is inside the bounding box.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 &&
		p.Y >= b.Y0 && p.Y <= b.Y1
}

// Intersects checks if two bounding boxes intersect.
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 ||
		b.X0 > other.X1 ||
		b.Y1 < other.Y0 ||
		b.Y0 > other.Y1)
}

// Intersection returns the intersection of two bounding boxes, or the zero
// box when they do not intersect.
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}
	return BBox{
		X0: math.Max(b.X0, other.X0),
		Y0: math.Max(b.Y0, other.Y0),
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
	}
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Expand expands the bounding box by a margin on all sides.
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X0: b.X0 - margin,
		Y0: b.Y0 - margin,
		X1: b.X1 + margin,
		Y1: b.Y1 + margin,
	}
}

// HorizontalOverlap returns the width of the horizontal overlap with
// another box, zero when the x ranges are disjoint.
func (b BBox) HorizontalOverlap(other BBox) float64 {
	overlap := math.Min(b.X1, other.X1) - math.Max(b.X0, other.X0)
	if overlap < 0 {
		return 0
	}
	return overlap
}

// OverlapRatio calculates the area overlap ratio with another box,
// relative to the smaller of the two. Returns a value between 0 and 1.
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}
	minArea := math.Min(b.Area(), other.Area())
	if minArea == 0 {
		return 0
	}
	return b.Intersection(other).Area() / minArea
}

// IsEmpty returns true if the bounding box has zero area.
func (b BBox) IsEmpty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// IsValid returns true if the bounding box has positive dimensions.
func (b BBox) IsValid() bool {
	return b.Width() > 0 && b.Height() > 0
}

// NormalizedBBox expresses a box's position and size as fractions of its
// containing column. Each field lies in [0, 1]; conversions tolerate a small
// slack before clamping (see the layout package).
type NormalizedBBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Clamped returns a copy with every field clamped to [0, 1].
func (n NormalizedBBox) Clamped() NormalizedBBox {
	return NormalizedBBox{
		X: clamp01(n.X),
		Y: clamp01(n.Y),
		W: clamp01(n.W),
		H: clamp01(n.H),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
