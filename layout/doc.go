// Package layout detects column structure on a page and expresses
// geometry relative to the detected columns.
//
// The package answers two questions about a page of content blocks:
// where the columns are, and where a given box sits inside a column.
//
// # Column Detection
//
// [ColumnDetector] clusters blocks by the horizontal centers of their
// bounding boxes using density-based clustering. Blocks whose centers
// fall within a small radius of each other form a column; blocks that
// fit no dense cluster are folded into the nearest column afterwards,
// so every block with usable geometry belongs to exactly one column.
// When no dense cluster exists at all (a short page, a title page, a
// page of scattered figures) the detector degrades to a single
// synthetic column spanning everything rather than failing.
//
// Basic usage:
//
//	detector := layout.NewColumnDetector()
//	columns, err := detector.Detect(blocks)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, col := range columns {
//	    fmt.Printf("column %d: %d blocks\n", col.Index, len(col.Members))
//	}
//
// # Column-Relative Geometry
//
// A [Column] converts between page coordinates and column-relative
// fractions. [Column.Normalize] maps a page-space box to fractions of
// the column's width and height, and [Column.Denormalize] maps the
// fractions back. The pair is the contract that lets placement survive
// a change of page size: a figure recorded at 5% from the column's
// left edge lands at 5% from the left edge of whatever column it is
// rendered into.
//
// [FindAssetColumn] picks the column that owns an arbitrary box (a
// figure, a table) by horizontal overlap, which tolerates assets that
// bleed slightly across column gutters.
//
// All coordinates are in points with the origin at the top-left of the
// page; see the model package for the full convention.
package layout
