package layout

import "github.com/tsawler/norma/model"

// DefaultOverlapThreshold is the fraction of a box's width that must
// fall inside a column horizontally before the column is considered to
// contain the box.
const DefaultOverlapThreshold = 0.5

// overlapFraction reports how much of bb's width lies inside the
// column, as a fraction of bb's width. A box without positive width
// overlaps nothing.
func (c *Column) overlapFraction(bb model.BBox) float64 {
	w := bb.Width()
	if w <= 0 {
		return 0
	}
	return c.BBox.HorizontalOverlap(bb) / w
}

// ContainsBBox reports whether the column contains bb horizontally:
// at least threshold of bb's width must overlap the column's bounds.
// Pass DefaultOverlapThreshold unless tuning for unusual layouts.
// Vertical position is ignored; a figure far below a column's text
// still belongs to it.
func (c *Column) ContainsBBox(bb model.BBox, threshold float64) bool {
	return c.overlapFraction(bb) >= threshold
}

// FindAssetColumn picks the column that owns bb: the one with the
// greatest horizontal overlap, provided that overlap reaches threshold.
// When two columns tie, the leftmost wins. The returned pointer indexes
// into columns; ok is false when no column reaches the threshold.
func FindAssetColumn(bb model.BBox, columns []Column, threshold float64) (col *Column, ok bool) {
	if len(columns) == 0 {
		return nil, false
	}
	best := -1
	bestFraction := 0.0
	for i := range columns {
		if f := columns[i].overlapFraction(bb); f > bestFraction {
			bestFraction = f
			best = i
		}
	}
	if best < 0 || bestFraction < threshold {
		return nil, false
	}
	return &columns[best], true
}
