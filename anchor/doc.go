// Package anchor matches visual assets to the text blocks they belong
// to, using only geometry.
//
// Print layouts caption figures below the figure, so the matcher is
// biased the same way: blocks below an asset are preferred as a group
// over blocks above it, even when a block above is nearer. Within the
// chosen direction the nearest block wins, and near-ties are recorded
// as ambiguous matches for a human to review rather than silently
// resolved.
//
// # Anchoring a Ledger
//
// [Engine.AnchorAll] is the usual entry point. It groups assets and
// blocks by page, detects the column structure of each page once, and
// anchors every asset against the blocks of its column (or the whole
// page when no column owns it):
//
//	engine := anchor.NewEngine()
//	report := engine.AnchorAll(assets, blocks)
//	if !report.Passed() {
//	    for _, id := range report.UnanchoredAssets {
//	        fmt.Println("unanchored:", id)
//	    }
//	}
//
// AnchorAll writes each Asset's AnchorTo field in place, exactly once.
// The returned [Report] carries everything the run decided: counts,
// unanchored assets, ambiguous matches, and round-trip geometry
// violations. Rates are derived from the counts on demand, and the
// thresholds [PerfectSuccessRate] and [MinRoundTripPassRate] are
// advisory; the engine never aborts a run on their account.
//
// Failures degrade instead of propagating: a page whose column
// detection fails is anchored with a page-wide search and a warning,
// and a page with no blocks leaves its assets in the unanchored list.
//
// Pages are independent, so [Config.Workers] > 1 fans pages out across
// goroutines; reports are merged in page order and the output is
// identical whatever the worker count.
package anchor
