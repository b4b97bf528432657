package layout

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f64"

	"github.com/tsawler/norma/model"
)

// normalizedSlack is how far outside the unit interval a normalized
// value may fall before it is rejected instead of clamped. It absorbs
// assets that bleed a hair past their column's bounds.
const normalizedSlack = 0.01

// floatSlop pads the slack comparison so that values sitting exactly
// on the boundary survive floating-point noise.
const floatSlop = 1e-9

var (
	// ErrBadColumnBounds is returned when a column has no positive
	// width or height to normalize against.
	ErrBadColumnBounds = errors.New("layout: column has no usable extent")

	// ErrOutsideColumn is returned by Normalize when a box lies
	// beyond the column's bounds by more than the tolerated slack.
	ErrOutsideColumn = errors.New("layout: box lies outside its column")
)

// unitTransform returns the affine transform taking page coordinates
// to column-relative coordinates, where the column's top-left corner
// maps to (0, 0) and its bottom-right corner to (1, 1).
func (c *Column) unitTransform() f64.Aff3 {
	w, h := c.BBox.Width(), c.BBox.Height()
	return f64.Aff3{
		1 / w, 0, -c.BBox.X0 / w,
		0, 1 / h, -c.BBox.Y0 / h,
	}
}

// pageTransform returns the inverse of unitTransform, taking
// column-relative coordinates back to page coordinates.
func (c *Column) pageTransform() f64.Aff3 {
	w, h := c.BBox.Width(), c.BBox.Height()
	return f64.Aff3{
		w, 0, c.BBox.X0,
		0, h, c.BBox.Y0,
	}
}

func applyAff3(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Normalize expresses bb as fractions of the column's extent: X and Y
// are the offsets of bb's top-left corner from the column's top-left
// corner divided by the column's width and height, and W and H are
// bb's dimensions divided by the same. A box flush with the column's
// bounds maps to X=0, Y=0, W=1, H=1.
//
// Values may exceed the unit interval by up to 1% in either direction,
// which covers assets that bleed slightly past the column; such values
// are clamped. Anything further out returns ErrOutsideColumn, and a
// column without positive extent returns ErrBadColumnBounds.
func (c *Column) Normalize(bb model.BBox) (model.NormalizedBBox, error) {
	if c.BBox.Width() <= 0 || c.BBox.Height() <= 0 {
		return model.NormalizedBBox{}, ErrBadColumnBounds
	}
	t := c.unitTransform()
	x0, y0 := applyAff3(t, bb.X0, bb.Y0)
	x1, y1 := applyAff3(t, bb.X1, bb.Y1)
	n := model.NormalizedBBox{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	for _, v := range [...]float64{n.X, n.Y, n.W, n.H} {
		if v < -(normalizedSlack+floatSlop) || v > 1+normalizedSlack+floatSlop {
			return model.NormalizedBBox{}, fmt.Errorf("%w: normalized value %.4f beyond slack", ErrOutsideColumn, v)
		}
	}
	return n.Clamped(), nil
}

// Denormalize maps the column-relative box n back to page coordinates.
// It is the inverse of Normalize for boxes that needed no clamping.
// A column without positive extent returns ErrBadColumnBounds.
func (c *Column) Denormalize(n model.NormalizedBBox) (model.BBox, error) {
	if c.BBox.Width() <= 0 || c.BBox.Height() <= 0 {
		return model.BBox{}, ErrBadColumnBounds
	}
	t := c.pageTransform()
	x0, y0 := applyAff3(t, n.X, n.Y)
	x1, y1 := applyAff3(t, n.X+n.W, n.Y+n.H)
	return model.NewBBox(x0, y0, x1, y1)
}
