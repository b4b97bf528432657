package anchor

import "github.com/tsawler/norma/model"

// Advisory thresholds for judging a finished anchoring run. The engine
// reports and the caller decides; nothing aborts on their account.
const (
	// PerfectSuccessRate is the success rate a clean run reaches:
	// every asset anchored.
	PerfectSuccessRate = 1.0

	// MinRoundTripPassRate is the fraction of round-trip checks that
	// must pass before downstream layout can trust the normalized
	// geometry.
	MinRoundTripPassRate = 0.98
)

// AmbiguousMatch records an anchoring decision where other blocks came
// within the ambiguity margin of the winner. It flags places a human
// should review; the decision itself stands.
type AmbiguousMatch struct {
	// AssetID is the asset being anchored.
	AssetID string `json:"asset_id"`

	// BlockID is the block that won.
	BlockID string `json:"block_id"`

	// Contenders lists the blocks within the margin of the winner,
	// nearest first.
	Contenders []string `json:"contenders"`

	// Distance is the winning distance in points.
	Distance float64 `json:"distance"`
}

// GeometryViolation records an anchored asset whose bounding box
// failed the column round-trip check.
type GeometryViolation struct {
	// AssetID is the asset whose geometry misbehaved.
	AssetID string `json:"asset_id"`

	// Drift is the worst per-coordinate drift in points, when the
	// round trip completed at all.
	Drift float64 `json:"drift,omitempty"`

	// Detail says what went wrong.
	Detail string `json:"detail"`
}

// Report summarizes one anchoring run. It is built once by the engine
// and not modified afterwards.
type Report struct {
	// Total is the number of assets the run saw.
	Total int `json:"total"`

	// Anchored is the number of assets that received an anchor.
	Anchored int `json:"anchored"`

	// UnanchoredAssets lists the assets no block could be found for,
	// in processing order.
	UnanchoredAssets []string `json:"unanchored_assets,omitempty"`

	// AmbiguousMatches lists decisions with near-tie contenders.
	AmbiguousMatches []AmbiguousMatch `json:"ambiguous_matches,omitempty"`

	// GeometryViolations lists assets whose boxes failed the
	// normalized round-trip check.
	GeometryViolations []GeometryViolation `json:"geometry_violations,omitempty"`

	// RoundTripChecked is the number of assets the round-trip check
	// ran for. Assets anchored without an owning column are not
	// checked.
	RoundTripChecked int `json:"round_trip_checked"`

	// Warnings carries the non-fatal degradations of the run.
	Warnings []model.Warning `json:"warnings,omitempty"`
}

// SuccessRate is the fraction of assets that received an anchor.
// A run with no assets counts as fully successful.
func (r *Report) SuccessRate() float64 {
	if r.Total == 0 {
		return 1
	}
	return float64(r.Anchored) / float64(r.Total)
}

// GeometryPassRate is the fraction of round-trip checks that passed.
// A run with no checks counts as fully passing.
func (r *Report) GeometryPassRate() float64 {
	if r.RoundTripChecked == 0 {
		return 1
	}
	return float64(r.RoundTripChecked-len(r.GeometryViolations)) / float64(r.RoundTripChecked)
}

// Passed applies the advisory thresholds: every asset anchored and at
// least MinRoundTripPassRate of the round-trip checks clean. Callers
// with different risk appetites can judge the fields directly.
func (r *Report) Passed() bool {
	return r.SuccessRate() >= PerfectSuccessRate &&
		r.GeometryPassRate() >= MinRoundTripPassRate
}

// merge folds a per-page report into r. Pages are merged in page order
// so the combined report is deterministic.
func (r *Report) merge(other *Report) {
	r.Total += other.Total
	r.Anchored += other.Anchored
	r.RoundTripChecked += other.RoundTripChecked
	r.UnanchoredAssets = append(r.UnanchoredAssets, other.UnanchoredAssets...)
	r.AmbiguousMatches = append(r.AmbiguousMatches, other.AmbiguousMatches...)
	r.GeometryViolations = append(r.GeometryViolations, other.GeometryViolations...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
