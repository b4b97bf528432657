// Package model provides the shared data model for the anchoring and
// layout-QA engine.
//
// This package defines the geometry primitives and pipeline entities that the
// detection and verification packages operate on. All inputs arrive as
// in-memory values produced by earlier pipeline stages; nothing in this
// package performs I/O.
//
// # Coordinates
//
// Page coordinates follow the extraction stage's page space: the origin is
// the top-left corner of the page and y grows downward, so a larger y means
// later in reading order. A [BBox] stores its minimum corner in (X0, Y0) and
// its maximum corner in (X1, Y1); the invariant X1 >= X0 and Y1 >= Y0 is
// enforced by [NewBBox].
//
// # Entities
//
//   - [ContentBlock] - a text block reported by the extraction stage.
//     Blocks without geometry are excluded from spatial operations.
//   - [Asset] - a visual asset (image, vector drawing, or table) with fixed
//     geometry. AnchorTo is empty until the anchoring engine assigns it,
//     and is assigned exactly once.
//   - [PlacedLabel] - the placement record returned by the external layout
//     stage; the only channel through which "actual" geometry enters QA.
//
// # Normalized geometry
//
// A [NormalizedBBox] expresses a box as fractions (0-1) of its containing
// column. Conversion lives with the column type in the layout package, which
// owns the column's unit transform.
//
// All types serialize to JSON with the field names downstream stages depend
// on (asset_id, anchor_to, bbox_placed, and so on).
package model
