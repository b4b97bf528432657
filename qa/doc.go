// Package qa verifies that an external layout tool preserved the asset
// ledger: that every asset arrived (completeness), how much of the
// important material arrived (coverage), and whether what arrived sits
// where it should (geometry).
//
// The three checks share a shape: a checker is built from a config,
// consumes in-memory values, and returns an immutable, serializable
// report. Failures are data inside the report (ids, percentages,
// booleans), never errors, so the caller chooses whether to halt,
// continue, or escalate. Reports carry human-readable warnings and
// recommendations next to the numbers they summarize.
//
// # Completeness
//
// [CompletenessChecker] diffs the source ledger against the placed
// labels: matched, missing, and extra ids, always listed in full. The
// pass bar defaults to perfection.
//
// # Coverage
//
// [CoverageAnalyzer] turns the same diff into percentages: overall,
// weighted by asset importance, and broken down by type, page, and
// section. Importance weighting is why one missing full-page diagram
// reads as a bigger hole than ten missing icons.
//
// # Geometry
//
// [GeometryValidator] compares each placed box against where the
// ledger expects it, passing an asset when either the absolute or the
// relative error is acceptable. Beyond per-asset verdicts it looks for
// the pattern behind the failures: a consistent per-axis shift across
// many assets is reported as a systematic offset, which points at a
// calibration bug rather than individual placement mistakes.
package qa
