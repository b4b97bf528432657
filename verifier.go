package norma

import (
	"errors"
	"fmt"

	"github.com/tsawler/norma/anchor"
	"github.com/tsawler/norma/model"
	"github.com/tsawler/norma/qa"
	"github.com/tsawler/norma/tolerance"
	"go.uber.org/zap"
)

// ErrBadThreshold reports a fluent configuration value outside its legal
// range.
var ErrBadThreshold = errors.New("norma: threshold out of range")

// Verifier provides a fluent interface for verifying placed labels against
// an asset ledger. Each configuration method returns a new Verifier
// instance, making it safe for concurrent use and allowing method chaining.
type Verifier struct {
	// Inputs, shared across chained instances and never mutated by
	// configuration. Run writes anchor ids into assets when the
	// anchoring stage is enabled.
	assets []model.Asset
	placed []model.PlacedLabel
	blocks []model.ContentBlock

	// True once WithBlocks has been called. An empty block list still
	// runs the anchoring stage, which then fails honestly instead of
	// being skipped.
	anchorStage bool

	// Configuration
	options verifyOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Verifier with its own options. Inputs are
// shared; configuration is not.
func (v *Verifier) clone() *Verifier {
	return &Verifier{
		assets:      v.assets,
		placed:      v.placed,
		blocks:      v.blocks,
		anchorStage: v.anchorStage,
		options:     v.options.clone(),
		err:         v.err,
	}
}

// ============================================================================
// Configuration Methods (return new Verifier instance)
// ============================================================================

// WithBlocks supplies the per-page text blocks and enables the anchoring
// stage: Run will anchor the ledger against these blocks before any check,
// writing anchor ids into the assets slice.
//
// Example:
//
//	record, err := norma.Verify(assets, placed).WithBlocks(blocks).Run()
func (v *Verifier) WithBlocks(blocks []model.ContentBlock) *Verifier {
	newVer := v.clone()
	newVer.blocks = blocks
	newVer.anchorStage = true
	return newVer
}

// WithProfile applies a tolerance profile to every stage at once. The
// profile is validated; an invalid profile surfaces as an error from Run.
//
// Example:
//
//	profile, err := norma.LoadProfile(data)
//	record, err := norma.Verify(assets, placed).WithProfile(profile).Run()
func (v *Verifier) WithProfile(p *Profile) *Verifier {
	newVer := v.clone()
	if p == nil {
		newVer.err = errors.New("norma: nil profile")
		return newVer
	}
	if err := p.Validate(); err != nil {
		newVer.err = err
		return newVer
	}
	newVer.options.anchoring = p.anchorConfig()
	newVer.options.completeness = p.completenessConfig()
	newVer.options.weights = p.weightConfig()
	newVer.options.geometry = p.geometryConfig()
	return newVer
}

// WithLogger routes progress and degradation logging to the given logger.
// A nil logger silences it again.
func (v *Verifier) WithLogger(logger *zap.Logger) *Verifier {
	newVer := v.clone()
	if logger == nil {
		logger = zap.NewNop()
	}
	newVer.options.logger = logger
	return newVer
}

// MinCoverage relaxes the completeness check to pass at the given
// percentage instead of demanding perfection.
//
// Example:
//
//	record, err := norma.Verify(assets, placed).MinCoverage(99.5).Run()
func (v *Verifier) MinCoverage(pct float64) *Verifier {
	newVer := v.clone()
	if pct <= 0 || pct > 100 {
		newVer.err = fmt.Errorf("%w: min coverage %.4f not in (0, 100]", ErrBadThreshold, pct)
		return newVer
	}
	newVer.options.completeness.RequirePerfect = false
	newVer.options.completeness.MinCoverage = pct
	return newVer
}

// RequirePerfect restores the default completeness rule: every asset in
// the ledger must have a placed label.
func (v *Verifier) RequirePerfect() *Verifier {
	newVer := v.clone()
	newVer.options.completeness.RequirePerfect = true
	return newVer
}

// Tolerances replaces the position and size tolerance policies used by the
// geometry check.
func (v *Verifier) Tolerances(position, size tolerance.Spec) *Verifier {
	newVer := v.clone()
	newVer.options.geometry.Position = position
	newVer.options.geometry.Size = size
	return newVer
}

// MinPassRate sets the fraction of geometry checks that must pass for the
// geometry batch to pass.
func (v *Verifier) MinPassRate(rate float64) *Verifier {
	newVer := v.clone()
	if rate <= 0 || rate > 1 {
		newVer.err = fmt.Errorf("%w: pass rate %.4f not in (0, 1]", ErrBadThreshold, rate)
		return newVer
	}
	newVer.options.geometry.MinPassRate = rate
	return newVer
}

// Weights replaces the asset-importance model used by the coverage check.
func (v *Verifier) Weights(config qa.WeightConfig) *Verifier {
	newVer := v.clone()
	newVer.options.weights = config
	return newVer
}

// WithAnchoring replaces the anchoring engine configuration used when
// WithBlocks enables the anchoring stage.
func (v *Verifier) WithAnchoring(config anchor.Config) *Verifier {
	newVer := v.clone()
	newVer.options.anchoring = config
	return newVer
}
