package qa

import (
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/norma/model"
)

// CompletenessConfig holds the pass rule for the completeness check.
type CompletenessConfig struct {
	// RequirePerfect demands 100% coverage, rounded to four decimals
	// to absorb float jitter. Default: true.
	RequirePerfect bool

	// MinCoverage is the pass threshold in percent when
	// RequirePerfect is off. Default: 100.
	MinCoverage float64
}

// DefaultCompletenessConfig returns a CompletenessConfig demanding
// perfection, which is what a print pipeline wants: a missing asset is
// a hole on a page.
func DefaultCompletenessConfig() CompletenessConfig {
	return CompletenessConfig{
		RequirePerfect: true,
		MinCoverage:    100,
	}
}

// CompletenessReport is the outcome of diffing the source ledger
// against the placed labels. It is built once and not modified
// afterwards.
type CompletenessReport struct {
	// Total is the size of the source ledger.
	Total int `json:"total"`

	// Matched is how many ledger assets have a placed label.
	Matched int `json:"matched"`

	// MissingAssets lists ledger assets without a label, sorted by
	// id. Never trimmed: a failing run names every hole.
	MissingAssets []string `json:"missing,omitempty"`

	// ExtraLabels lists label ids that match no ledger asset, sorted
	// by id.
	ExtraLabels []string `json:"extra,omitempty"`

	// Coverage is the overall placement percentage, rounded to four
	// decimals.
	Coverage float64 `json:"coverage"`

	// Passed is the verdict under the configured pass rule.
	Passed bool `json:"passed"`

	// Recommendations suggest where to look first, most impactful
	// first.
	Recommendations []string `json:"recommendations,omitempty"`

	// Warnings carries non-fatal oddities of the check.
	Warnings []model.Warning `json:"warnings,omitempty"`
}

// CompletenessChecker diffs a source asset ledger against placed
// labels and judges whether everything arrived.
type CompletenessChecker struct {
	config   CompletenessConfig
	analyzer *CoverageAnalyzer
}

// NewCompletenessChecker creates a CompletenessChecker with default
// configuration.
func NewCompletenessChecker() *CompletenessChecker {
	return NewCompletenessCheckerWithConfig(DefaultCompletenessConfig())
}

// NewCompletenessCheckerWithConfig creates a CompletenessChecker with
// a custom pass rule. Percentages come from a default CoverageAnalyzer.
func NewCompletenessCheckerWithConfig(config CompletenessConfig) *CompletenessChecker {
	if config.MinCoverage <= 0 {
		config.MinCoverage = DefaultCompletenessConfig().MinCoverage
	}
	return &CompletenessChecker{
		config:   config,
		analyzer: NewCoverageAnalyzer(),
	}
}

// WithAnalyzer returns a copy of the checker that delegates percentage
// and criticality computation to the given analyzer. A nil analyzer
// keeps the current one.
func (c *CompletenessChecker) WithAnalyzer(a *CoverageAnalyzer) *CompletenessChecker {
	clone := *c
	if a != nil {
		clone.analyzer = a
	}
	return &clone
}

// Check diffs assets against placed and reports matched, missing, and
// extra ids. Missing and extra ids are always listed in full; nothing
// is silently dropped. An empty ledger passes vacuously with a
// warning, since a document without assets has nothing to lose.
func (c *CompletenessChecker) Check(assets []model.Asset, placed []model.PlacedLabel) *CompletenessReport {
	report := &CompletenessReport{Total: len(assets)}

	assetSet := make(map[string]struct{}, len(assets))
	for i := range assets {
		assetSet[assets[i].ID] = struct{}{}
	}
	placedSet := make(map[string]struct{}, len(placed))
	for i := range placed {
		placedSet[placed[i].AssetID] = struct{}{}
	}

	var missingUnanchored, missingAnchored int
	for i := range assets {
		asset := &assets[i]
		if _, ok := placedSet[asset.ID]; ok {
			report.Matched++
			continue
		}
		report.MissingAssets = append(report.MissingAssets, asset.ID)
		if asset.Anchored() {
			missingAnchored++
		} else {
			missingUnanchored++
		}
	}
	sort.Strings(report.MissingAssets)

	for id := range placedSet {
		if _, ok := assetSet[id]; !ok {
			report.ExtraLabels = append(report.ExtraLabels, id)
		}
	}
	sort.Strings(report.ExtraLabels)

	metrics := c.analyzer.Analyze(assets, placed)
	report.Coverage = round4(metrics.Overall.Percent)

	if c.config.RequirePerfect {
		report.Passed = report.Coverage == 100
	} else {
		report.Passed = report.Coverage >= c.config.MinCoverage
	}

	if len(assets) == 0 {
		report.Warnings = append(report.Warnings, model.Warningf(model.WarnEmptyLedger,
			"completeness checked against an empty asset ledger"))
	}

	report.Recommendations = buildRecommendations(
		missingAnchored, missingUnanchored, len(metrics.CriticalMissing), len(report.ExtraLabels))
	return report
}

// buildRecommendations emits one suggestion per observed failure
// pattern, ranked by how many assets each pattern touches.
func buildRecommendations(missingAnchored, missingUnanchored, criticalMissing, extra int) []string {
	type pattern struct {
		count int
		text  string
	}
	patterns := []pattern{
		{criticalMissing, fmt.Sprintf(
			"escalate before re-running: %d missing asset(s) are critical (large, prominent, a table, or a vector)", criticalMissing)},
		{missingAnchored, fmt.Sprintf(
			"inspect the layout tool: %d anchored asset(s) never received a placed label", missingAnchored)},
		{missingUnanchored, fmt.Sprintf(
			"re-run anchoring: %d missing asset(s) were never anchored, so the layout tool never saw them", missingUnanchored)},
		{extra, fmt.Sprintf(
			"reconcile stale placement data: %d label(s) reference assets not in the ledger", extra)},
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].count > patterns[j].count
	})
	var recs []string
	for _, p := range patterns {
		if p.count > 0 {
			recs = append(recs, p.text)
		}
	}
	return recs
}

// round4 rounds to four decimal places, enough to absorb float jitter
// while keeping 99.9999% distinct from 100%.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
