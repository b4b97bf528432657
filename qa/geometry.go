package qa

import (
	"math"

	"github.com/tsawler/norma/model"
	"github.com/tsawler/norma/tolerance"
)

// GeometryConfig holds the tolerances and batch rules for placement
// validation.
type GeometryConfig struct {
	// Position is the tolerance policy whose bounds feed the
	// per-asset pass rule: an asset passes when its absolute error is
	// within Position.AbsolutePt or its relative error is within
	// Position.RelativePct. The bounds compose as an OR here, not with
	// the stricter-of rule the policy itself applies.
	// Default: tolerance.DefaultPosition().
	Position tolerance.Spec

	// Size is the lenient policy for width/height drift. Size drift
	// beyond it is reported as a warning but does not fail the asset
	// on its own. Default: tolerance.DefaultSize().
	Size tolerance.Spec

	// MinPassRate is the fraction of checked assets that must pass
	// for the batch to pass. Default: 0.98.
	MinPassRate float64

	// GrossMultiplier marks a failure as gross when its absolute
	// error exceeds this multiple of Position.AbsolutePt. A gross
	// failure always fails the batch, whatever the pass rate.
	// Default: 3.
	GrossMultiplier float64

	// BiasMinSamples is the minimum number of failing assets on an
	// axis before a systematic offset can be reported. Default: 4.
	BiasMinSamples int

	// BiasMeanPt is the mean offset magnitude in points above which
	// an axis counts as systematically shifted. Default: 2 points.
	BiasMeanPt float64
}

// DefaultGeometryConfig returns a GeometryConfig with the default
// tolerances and batch rules.
func DefaultGeometryConfig() GeometryConfig {
	return GeometryConfig{
		Position:        tolerance.DefaultPosition(),
		Size:            tolerance.DefaultSize(),
		MinPassRate:     0.98,
		GrossMultiplier: 3,
		BiasMinSamples:  4,
		BiasMeanPt:      2,
	}
}

// PlacementError is the comparison of one placed box against where the
// ledger expects it.
type PlacementError struct {
	// AssetID is the asset being compared.
	AssetID string `json:"asset_id"`

	// Expected is the ledger geometry.
	Expected model.BBox `json:"expected"`

	// Actual is the geometry the layout tool reported.
	Actual model.BBox `json:"actual"`

	// AbsoluteError is the worst corner-wise |delta| in points.
	AbsoluteError float64 `json:"absolute_error"`

	// RelativeError is the worst corner-wise |delta| as a fraction of
	// the governing expected dimension.
	RelativeError float64 `json:"relative_error"`

	// Passed is the per-asset verdict under the OR rule.
	Passed bool `json:"passed"`
}

// SystematicOffset is a consistent per-axis shift across failing
// assets: the signature of a calibration bug rather than scattered
// placement mistakes.
type SystematicOffset struct {
	// Axis is "x" or "y".
	Axis string `json:"axis"`

	// MeanPt is the mean signed offset in points.
	MeanPt float64 `json:"mean_pt"`

	// Samples is how many failing assets contributed.
	Samples int `json:"samples"`

	// SpreadPt is the standard deviation of the offsets; small
	// spread means the shift is uniform.
	SpreadPt float64 `json:"spread_pt"`
}

// GeometryReport is the outcome of validating placed geometry against
// the ledger. It is built once and not modified afterwards.
type GeometryReport struct {
	// Checked is how many asset/label pairs were compared.
	Checked int `json:"checked"`

	// PassCount is how many of them passed.
	PassCount int `json:"pass_count"`

	// Failures lists the failing comparisons, in ledger order.
	Failures []PlacementError `json:"failures,omitempty"`

	// GrossViolations lists failing assets whose error exceeded the
	// gross multiple of the tolerance.
	GrossViolations []string `json:"gross_violations,omitempty"`

	// SystematicOffsets lists per-axis shifts detected across the
	// failures.
	SystematicOffsets []SystematicOffset `json:"systematic_offsets,omitempty"`

	// SkippedLabels lists labels ignored for want of usable geometry.
	SkippedLabels []string `json:"skipped_labels,omitempty"`

	// Warnings carries the human-readable side of everything above.
	Warnings []model.Warning `json:"warnings,omitempty"`

	// Passed is the batch verdict: pass rate at or above the minimum
	// and no gross violations.
	Passed bool `json:"passed"`
}

// PassRate is the fraction of checked assets that passed. A batch with
// nothing to check passes vacuously.
func (r *GeometryReport) PassRate() float64 {
	if r.Checked == 0 {
		return 1
	}
	return float64(r.PassCount) / float64(r.Checked)
}

// GeometryValidator compares placed geometry against the ledger's
// expected geometry.
type GeometryValidator struct {
	config GeometryConfig
}

// NewGeometryValidator creates a GeometryValidator with default
// configuration.
func NewGeometryValidator() *GeometryValidator {
	return NewGeometryValidatorWithConfig(DefaultGeometryConfig())
}

// NewGeometryValidatorWithConfig creates a GeometryValidator with
// custom tolerances. Non-positive batch rules fall back to the
// defaults.
func NewGeometryValidatorWithConfig(config GeometryConfig) *GeometryValidator {
	defaults := DefaultGeometryConfig()
	if config.Position == (tolerance.Spec{}) {
		config.Position = defaults.Position
	}
	if config.Size == (tolerance.Spec{}) {
		config.Size = defaults.Size
	}
	if config.MinPassRate <= 0 {
		config.MinPassRate = defaults.MinPassRate
	}
	if config.GrossMultiplier <= 0 {
		config.GrossMultiplier = defaults.GrossMultiplier
	}
	if config.BiasMinSamples <= 0 {
		config.BiasMinSamples = defaults.BiasMinSamples
	}
	if config.BiasMeanPt <= 0 {
		config.BiasMeanPt = defaults.BiasMeanPt
	}
	return &GeometryValidator{config: config}
}

// Validate compares each placed label against its ledger asset.
// Assets without a label are the completeness checker's business and
// are not counted here; labels without usable geometry are skipped
// with a warning, and when an asset has several labels the first wins.
func (v *GeometryValidator) Validate(assets []model.Asset, placed []model.PlacedLabel) *GeometryReport {
	report := &GeometryReport{}

	labels := make(map[string]*model.PlacedLabel, len(placed))
	for i := range placed {
		label := &placed[i]
		if _, dup := labels[label.AssetID]; dup {
			report.Warnings = append(report.Warnings, model.Warningf(model.WarnDuplicateLabel,
				"asset %s has more than one placed label; keeping the first", label.AssetID))
			continue
		}
		labels[label.AssetID] = label
	}

	var offsetsX, offsetsY []float64
	for i := range assets {
		asset := &assets[i]
		label, ok := labels[asset.ID]
		if !ok {
			continue
		}
		if !label.HasGeometry() {
			report.SkippedLabels = append(report.SkippedLabels, asset.ID)
			report.Warnings = append(report.Warnings, model.Warningf(model.WarnLabelIgnored,
				"label for asset %s has no usable geometry; skipping its placement check", asset.ID))
			continue
		}

		pe := v.compare(asset.ID, asset.BBox, *label.BBox)
		report.Checked++
		if pe.Passed {
			report.PassCount++
		} else {
			report.Failures = append(report.Failures, pe)
			offsetsX = append(offsetsX, pe.Actual.X0-pe.Expected.X0)
			offsetsY = append(offsetsY, pe.Actual.Y0-pe.Expected.Y0)
			if pe.AbsoluteError > v.config.GrossMultiplier*v.config.Position.AbsolutePt {
				report.GrossViolations = append(report.GrossViolations, asset.ID)
				report.Warnings = append(report.Warnings, model.Warningf(model.WarnGrossViolation,
					"asset %s is off by %.1fpt, beyond %.0fx the %.1fpt tolerance",
					asset.ID, pe.AbsoluteError, v.config.GrossMultiplier, v.config.Position.AbsolutePt))
			}
		}

		v.checkSizeDrift(report, asset.ID, asset.BBox, *label.BBox)
	}

	report.SystematicOffsets = v.detectBias(offsetsX, offsetsY)
	for _, so := range report.SystematicOffsets {
		report.Warnings = append(report.Warnings, model.Warningf(model.WarnSystematicOffset,
			"systematic %s offset of %+.1fpt across %d failing assets (spread %.1fpt); check pipeline calibration",
			so.Axis, so.MeanPt, so.Samples, so.SpreadPt))
	}

	report.Passed = report.PassRate() >= v.config.MinPassRate && len(report.GrossViolations) == 0
	return report
}

// compare scores one placed box against the expected one. The asset
// passes when either error is acceptable: within the absolute bound or
// within the relative bound.
func (v *GeometryValidator) compare(id string, expected, actual model.BBox) PlacementError {
	dx0 := actual.X0 - expected.X0
	dy0 := actual.Y0 - expected.Y0
	dx1 := actual.X1 - expected.X1
	dy1 := actual.Y1 - expected.Y1

	absErr := 0.0
	for _, d := range [...]float64{dx0, dy0, dx1, dy1} {
		absErr = math.Max(absErr, math.Abs(d))
	}

	w, h := expected.Width(), expected.Height()
	relErr := 0.0
	for _, rc := range [...]struct{ delta, dim float64 }{
		{dx0, w}, {dx1, w}, {dy0, h}, {dy1, h},
	} {
		relErr = math.Max(relErr, relativeTo(rc.delta, rc.dim))
	}

	return PlacementError{
		AssetID:       id,
		Expected:      expected,
		Actual:        actual,
		AbsoluteError: absErr,
		RelativeError: relErr,
		Passed: absErr <= v.config.Position.AbsolutePt ||
			relErr <= v.config.Position.RelativePct,
	}
}

// checkSizeDrift applies the lenient size policy to width and height.
// Drift is advisory: reflow wobbles sizes, and the corner comparison
// already caught anything positionally wrong.
func (v *GeometryValidator) checkSizeDrift(report *GeometryReport, id string, expected, actual model.BBox) {
	dw := actual.Width() - expected.Width()
	dh := actual.Height() - expected.Height()
	if v.config.Size.Within(dw, expected.Width()) && v.config.Size.Within(dh, expected.Height()) {
		return
	}
	report.Warnings = append(report.Warnings, model.Warningf(model.WarnSizeDrift,
		"asset %s placed at %.1fx%.1fpt, expected %.1fx%.1fpt",
		id, actual.Width(), actual.Height(), expected.Width(), expected.Height()))
}

// detectBias looks for a consistent signed shift on each axis across
// the failing assets.
func (v *GeometryValidator) detectBias(offsetsX, offsetsY []float64) []SystematicOffset {
	var found []SystematicOffset
	for _, axis := range [...]struct {
		name    string
		offsets []float64
	}{
		{"x", offsetsX},
		{"y", offsetsY},
	} {
		if len(axis.offsets) < v.config.BiasMinSamples {
			continue
		}
		m := mean(axis.offsets)
		if math.Abs(m) <= v.config.BiasMeanPt {
			continue
		}
		found = append(found, SystematicOffset{
			Axis:     axis.name,
			MeanPt:   m,
			Samples:  len(axis.offsets),
			SpreadPt: math.Sqrt(variance(axis.offsets)),
		})
	}
	return found
}

// relativeTo is |delta| as a fraction of dim. A degenerate dimension
// yields an infinite fraction unless the delta is zero too.
func relativeTo(delta, dim float64) float64 {
	if dim > 0 {
		return math.Abs(delta) / dim
	}
	if delta == 0 {
		return 0
	}
	return math.Inf(1)
}

// Utility functions

// mean is the arithmetic mean of values, zero for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance of values, zero for an empty
// slice.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}
