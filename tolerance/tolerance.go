// Package tolerance defines the accept thresholds used by placement
// checks. A policy pairs an absolute bound in points with a relative
// bound expressed as a fraction of a governing dimension, and composes
// the two strictly (the tighter wins) or leniently (the looser wins).
//
// Checks call through a [Spec] instead of hard-coding numbers, so a
// pipeline that needs a looser or tighter bar changes one value in one
// place.
package tolerance

import "math"

// Spec is one tolerance policy. It is a stateless value; copy it
// freely.
type Spec struct {
	// AbsolutePt is the absolute bound in points. Default: 2 points.
	AbsolutePt float64

	// RelativePct is the relative bound as a fraction of the
	// governing dimension (0.01 means 1%). Default: 0.01.
	RelativePct float64

	// Strict selects the composition. Strict policies take the
	// tighter of the two bounds, so large features stay under the
	// absolute bound and small features under the relative one.
	// Lenient policies take the looser bound instead.
	Strict bool
}

// DefaultPosition returns the policy for position checks: 2pt or 1%,
// whichever is tighter.
func DefaultPosition() Spec {
	return Spec{AbsolutePt: 2.0, RelativePct: 0.01, Strict: true}
}

// DefaultSize returns the policy for scale and size checks: 2pt or 2%,
// whichever is looser. Sizes wobble more than positions when a layout
// tool reflows content, so the size bar is the forgiving one.
func DefaultSize() Spec {
	return Spec{AbsolutePt: 2.0, RelativePct: 0.02, Strict: false}
}

// Threshold returns the effective tolerance in points for a feature of
// the given size. Raising AbsolutePt or RelativePct never shrinks the
// result.
func (s Spec) Threshold(size float64) float64 {
	rel := s.RelativePct * math.Abs(size)
	if s.Strict {
		return math.Min(s.AbsolutePt, rel)
	}
	return math.Max(s.AbsolutePt, rel)
}

// Within reports whether a deviation of delta points is acceptable for
// a feature of the given size. The sign of delta is ignored.
func (s Spec) Within(delta, size float64) bool {
	return math.Abs(delta) <= s.Threshold(size)
}
