// profile.go loads named verification presets from YAML, so print shops can
// keep per-product tolerance profiles next to their pipeline configuration.
package norma

import (
	"errors"
	"fmt"

	"github.com/tsawler/norma/anchor"
	"github.com/tsawler/norma/qa"
	"github.com/tsawler/norma/tolerance"
	"gopkg.in/yaml.v3"
)

// ErrBadProfile reports a profile value outside its legal range.
var ErrBadProfile = errors.New("norma: invalid profile")

// Profile holds every tunable of a verification run. Keys omitted from the
// YAML keep their defaults.
type Profile struct {
	// Anchoring configures the asset-to-block anchoring stage.
	Anchoring AnchoringProfile `yaml:"anchoring"`

	// Completeness configures the completeness pass rule.
	Completeness CompletenessProfile `yaml:"completeness"`

	// Weights configures the coverage importance model.
	Weights WeightsProfile `yaml:"weights"`

	// Geometry configures the placement tolerances and batch rules.
	Geometry GeometryProfile `yaml:"geometry"`
}

// AnchoringProfile configures the anchoring engine.
type AnchoringProfile struct {
	PreferBelow          bool    `yaml:"prefer_below"`
	AmbiguityMarginPt    float64 `yaml:"ambiguity_margin_pt"`
	OverlapThreshold     float64 `yaml:"overlap_threshold"`
	RoundTripTolerancePt float64 `yaml:"round_trip_tolerance_pt"`
	Workers              int     `yaml:"workers"`
}

// CompletenessProfile configures the completeness pass rule.
type CompletenessProfile struct {
	RequirePerfect bool    `yaml:"require_perfect"`
	MinCoverage    float64 `yaml:"min_coverage"`
}

// WeightsProfile configures the coverage importance model.
type WeightsProfile struct {
	Image               float64 `yaml:"image"`
	Vector              float64 `yaml:"vector"`
	Table               float64 `yaml:"table"`
	LargeDimensionPx    int     `yaml:"large_dimension_px"`
	LargeMultiplier     float64 `yaml:"large_multiplier"`
	ProminentAreaPx     int     `yaml:"prominent_area_px"`
	ProminentMultiplier float64 `yaml:"prominent_multiplier"`
}

// GeometryProfile configures placement validation. Relative tolerances are
// fractions: 0.01 means one percent.
type GeometryProfile struct {
	PositionTolerancePt  float64 `yaml:"position_tolerance_pt"`
	PositionTolerancePct float64 `yaml:"position_tolerance_pct"`
	SizeTolerancePt      float64 `yaml:"size_tolerance_pt"`
	SizeTolerancePct     float64 `yaml:"size_tolerance_pct"`
	MinPassRate          float64 `yaml:"min_pass_rate"`
	GrossMultiplier      float64 `yaml:"gross_multiplier"`
	BiasMinSamples       int     `yaml:"bias_min_samples"`
	BiasMeanPt           float64 `yaml:"bias_mean_pt"`
}

// DefaultProfile returns a Profile mirroring the package defaults, so a
// loaded profile only diverges where the YAML says so.
func DefaultProfile() *Profile {
	ac := anchor.DefaultConfig()
	cc := qa.DefaultCompletenessConfig()
	wc := qa.DefaultWeightConfig()
	gc := qa.DefaultGeometryConfig()
	return &Profile{
		Anchoring: AnchoringProfile{
			PreferBelow:          ac.PreferBelow,
			AmbiguityMarginPt:    ac.AmbiguityMarginPt,
			OverlapThreshold:     ac.OverlapThreshold,
			RoundTripTolerancePt: ac.RoundTripTolerancePt,
			Workers:              ac.Workers,
		},
		Completeness: CompletenessProfile{
			RequirePerfect: cc.RequirePerfect,
			MinCoverage:    cc.MinCoverage,
		},
		Weights: WeightsProfile{
			Image:               wc.ImageWeight,
			Vector:              wc.VectorWeight,
			Table:               wc.TableWeight,
			LargeDimensionPx:    wc.LargeDimensionPx,
			LargeMultiplier:     wc.LargeMultiplier,
			ProminentAreaPx:     wc.ProminentAreaPx,
			ProminentMultiplier: wc.ProminentMultiplier,
		},
		Geometry: GeometryProfile{
			PositionTolerancePt:  gc.Position.AbsolutePt,
			PositionTolerancePct: gc.Position.RelativePct,
			SizeTolerancePt:      gc.Size.AbsolutePt,
			SizeTolerancePct:     gc.Size.RelativePct,
			MinPassRate:          gc.MinPassRate,
			GrossMultiplier:      gc.GrossMultiplier,
			BiasMinSamples:       gc.BiasMinSamples,
			BiasMeanPt:           gc.BiasMeanPt,
		},
	}
}

// LoadProfile parses a YAML profile. Missing keys keep their defaults; the
// result is validated before being returned. LoadProfile never touches the
// filesystem, the caller owns all I/O.
func LoadProfile(data []byte) (*Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("norma: parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks every profile value against its legal range.
func (p *Profile) Validate() error {
	if p.Anchoring.AmbiguityMarginPt < 0 {
		return fmt.Errorf("%w: anchoring.ambiguity_margin_pt %.4f is negative", ErrBadProfile, p.Anchoring.AmbiguityMarginPt)
	}
	if p.Anchoring.OverlapThreshold <= 0 || p.Anchoring.OverlapThreshold > 1 {
		return fmt.Errorf("%w: anchoring.overlap_threshold %.4f not in (0, 1]", ErrBadProfile, p.Anchoring.OverlapThreshold)
	}
	if p.Anchoring.RoundTripTolerancePt <= 0 {
		return fmt.Errorf("%w: anchoring.round_trip_tolerance_pt %.4f must be positive", ErrBadProfile, p.Anchoring.RoundTripTolerancePt)
	}
	if p.Anchoring.Workers < 1 {
		return fmt.Errorf("%w: anchoring.workers %d must be at least 1", ErrBadProfile, p.Anchoring.Workers)
	}

	if p.Completeness.MinCoverage <= 0 || p.Completeness.MinCoverage > 100 {
		return fmt.Errorf("%w: completeness.min_coverage %.4f not in (0, 100]", ErrBadProfile, p.Completeness.MinCoverage)
	}

	for _, w := range []struct {
		key   string
		value float64
	}{
		{"weights.image", p.Weights.Image},
		{"weights.vector", p.Weights.Vector},
		{"weights.table", p.Weights.Table},
		{"weights.large_multiplier", p.Weights.LargeMultiplier},
		{"weights.prominent_multiplier", p.Weights.ProminentMultiplier},
	} {
		if w.value <= 0 {
			return fmt.Errorf("%w: %s %.4f must be positive", ErrBadProfile, w.key, w.value)
		}
	}
	if p.Weights.LargeDimensionPx <= 0 {
		return fmt.Errorf("%w: weights.large_dimension_px %d must be positive", ErrBadProfile, p.Weights.LargeDimensionPx)
	}
	if p.Weights.ProminentAreaPx <= 0 {
		return fmt.Errorf("%w: weights.prominent_area_px %d must be positive", ErrBadProfile, p.Weights.ProminentAreaPx)
	}

	if p.Geometry.PositionTolerancePt <= 0 {
		return fmt.Errorf("%w: geometry.position_tolerance_pt %.4f must be positive", ErrBadProfile, p.Geometry.PositionTolerancePt)
	}
	if p.Geometry.PositionTolerancePct <= 0 || p.Geometry.PositionTolerancePct >= 1 {
		return fmt.Errorf("%w: geometry.position_tolerance_pct %.4f not a fraction in (0, 1)", ErrBadProfile, p.Geometry.PositionTolerancePct)
	}
	if p.Geometry.SizeTolerancePt <= 0 {
		return fmt.Errorf("%w: geometry.size_tolerance_pt %.4f must be positive", ErrBadProfile, p.Geometry.SizeTolerancePt)
	}
	if p.Geometry.SizeTolerancePct <= 0 || p.Geometry.SizeTolerancePct >= 1 {
		return fmt.Errorf("%w: geometry.size_tolerance_pct %.4f not a fraction in (0, 1)", ErrBadProfile, p.Geometry.SizeTolerancePct)
	}
	if p.Geometry.MinPassRate <= 0 || p.Geometry.MinPassRate > 1 {
		return fmt.Errorf("%w: geometry.min_pass_rate %.4f not in (0, 1]", ErrBadProfile, p.Geometry.MinPassRate)
	}
	if p.Geometry.GrossMultiplier < 1 {
		return fmt.Errorf("%w: geometry.gross_multiplier %.4f must be at least 1", ErrBadProfile, p.Geometry.GrossMultiplier)
	}
	if p.Geometry.BiasMinSamples < 1 {
		return fmt.Errorf("%w: geometry.bias_min_samples %d must be at least 1", ErrBadProfile, p.Geometry.BiasMinSamples)
	}
	if p.Geometry.BiasMeanPt <= 0 {
		return fmt.Errorf("%w: geometry.bias_mean_pt %.4f must be positive", ErrBadProfile, p.Geometry.BiasMeanPt)
	}
	return nil
}

func (p *Profile) anchorConfig() anchor.Config {
	return anchor.Config{
		PreferBelow:          p.Anchoring.PreferBelow,
		AmbiguityMarginPt:    p.Anchoring.AmbiguityMarginPt,
		OverlapThreshold:     p.Anchoring.OverlapThreshold,
		RoundTripTolerancePt: p.Anchoring.RoundTripTolerancePt,
		Workers:              p.Anchoring.Workers,
	}
}

func (p *Profile) completenessConfig() qa.CompletenessConfig {
	return qa.CompletenessConfig{
		RequirePerfect: p.Completeness.RequirePerfect,
		MinCoverage:    p.Completeness.MinCoverage,
	}
}

func (p *Profile) weightConfig() qa.WeightConfig {
	return qa.WeightConfig{
		ImageWeight:         p.Weights.Image,
		VectorWeight:        p.Weights.Vector,
		TableWeight:         p.Weights.Table,
		LargeDimensionPx:    p.Weights.LargeDimensionPx,
		LargeMultiplier:     p.Weights.LargeMultiplier,
		ProminentAreaPx:     p.Weights.ProminentAreaPx,
		ProminentMultiplier: p.Weights.ProminentMultiplier,
	}
}

// The position policy composes strictly and the size policy leniently;
// profiles tune the bounds, never the composition rule.
func (p *Profile) geometryConfig() qa.GeometryConfig {
	return qa.GeometryConfig{
		Position: tolerance.Spec{
			AbsolutePt:  p.Geometry.PositionTolerancePt,
			RelativePct: p.Geometry.PositionTolerancePct,
			Strict:      true,
		},
		Size: tolerance.Spec{
			AbsolutePt:  p.Geometry.SizeTolerancePt,
			RelativePct: p.Geometry.SizeTolerancePct,
			Strict:      false,
		},
		MinPassRate:     p.Geometry.MinPassRate,
		GrossMultiplier: p.Geometry.GrossMultiplier,
		BiasMinSamples:  p.Geometry.BiasMinSamples,
		BiasMeanPt:      p.Geometry.BiasMeanPt,
	}
}
