package norma

import (
	"time"

	"github.com/google/uuid"
	"github.com/tsawler/norma/anchor"
	"github.com/tsawler/norma/model"
	"github.com/tsawler/norma/qa"
	"go.uber.org/zap"
)

// Check names as they appear in AuditRecord.ChecksRun and FirstFailure.
const (
	CheckAnchoring    = "anchoring"
	CheckCompleteness = "completeness"
	CheckCoverage     = "coverage"
	CheckGeometry     = "geometry"
)

// AuditRecord is the audit-trail entry for one verification run: which
// checks ran, in order, and where the run stopped. Checks run in a fixed
// order (anchoring when blocks were supplied, then completeness, coverage,
// geometry) and the run does not advance past the first failing check.
// Every report gathered up to that point is kept.
type AuditRecord struct {
	// RunID uniquely identifies the run in the audit trail.
	RunID uuid.UUID `json:"run_id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration_ns"`

	// ChecksRun lists the checks that executed, in execution order.
	ChecksRun []string `json:"checks_run"`

	// FirstFailure names the check the run stopped at, empty when every
	// check passed.
	FirstFailure string `json:"first_failure,omitempty"`

	// Passed is true when every executed check passed.
	Passed bool `json:"passed"`

	// Anchoring is present when the anchoring stage ran.
	Anchoring *anchor.Report `json:"anchoring,omitempty"`

	// Completeness is present when the completeness check ran.
	Completeness *qa.CompletenessReport `json:"completeness,omitempty"`

	// Coverage is present when the coverage check ran.
	Coverage *qa.CoverageMetrics `json:"coverage,omitempty"`

	// Geometry is present when the geometry check ran.
	Geometry *qa.GeometryReport `json:"geometry,omitempty"`
}

// Warnings gathers every warning from the reports in check order.
func (r *AuditRecord) Warnings() []model.Warning {
	var warnings []model.Warning
	if r.Anchoring != nil {
		warnings = append(warnings, r.Anchoring.Warnings...)
	}
	if r.Completeness != nil {
		warnings = append(warnings, r.Completeness.Warnings...)
	}
	if r.Geometry != nil {
		warnings = append(warnings, r.Geometry.Warnings...)
	}
	return warnings
}

// Run executes the configured checks and returns the audit record. The
// only errors are configuration errors accumulated while chaining; check
// failures are data in the record, never errors, so the caller decides
// whether to halt the wider pipeline.
//
// When the anchoring stage is enabled it writes anchor ids into the
// ledger passed to Verify, the same way AnchorAssets does.
func (v *Verifier) Run() (*AuditRecord, error) {
	if v.err != nil {
		return nil, v.err
	}

	start := time.Now()
	record := &AuditRecord{
		RunID:     uuid.New(),
		StartedAt: start,
	}

	if v.anchorStage {
		record.ChecksRun = append(record.ChecksRun, CheckAnchoring)
		engine := anchor.NewEngineWithConfig(v.options.anchoring).WithLogger(v.options.logger)
		record.Anchoring = engine.AnchorAll(v.assets, v.blocks)
		if !record.Anchoring.Passed() {
			record.FirstFailure = CheckAnchoring
		}
	}

	analyzer := qa.NewCoverageAnalyzerWithConfig(v.options.weights)

	if record.FirstFailure == "" {
		record.ChecksRun = append(record.ChecksRun, CheckCompleteness)
		checker := qa.NewCompletenessCheckerWithConfig(v.options.completeness).WithAnalyzer(analyzer)
		record.Completeness = checker.Check(v.assets, v.placed)
		if !record.Completeness.Passed {
			record.FirstFailure = CheckCompleteness
		}
	}

	if record.FirstFailure == "" {
		record.ChecksRun = append(record.ChecksRun, CheckCoverage)
		record.Coverage = analyzer.Analyze(v.assets, v.placed)
		// The coverage gate: a run may tolerate a few missing icons
		// under MinCoverage, but never a missing critical asset.
		if len(record.Coverage.CriticalMissing) > 0 {
			record.FirstFailure = CheckCoverage
		}
	}

	if record.FirstFailure == "" {
		record.ChecksRun = append(record.ChecksRun, CheckGeometry)
		validator := qa.NewGeometryValidatorWithConfig(v.options.geometry)
		record.Geometry = validator.Validate(v.assets, v.placed)
		if !record.Geometry.Passed {
			record.FirstFailure = CheckGeometry
		}
	}

	record.Passed = record.FirstFailure == ""
	record.Duration = time.Since(start)

	v.options.logger.Info("verification run finished",
		zap.String("run_id", record.RunID.String()),
		zap.Bool("passed", record.Passed),
		zap.Strings("checks_run", record.ChecksRun),
		zap.String("first_failure", record.FirstFailure),
		zap.Duration("duration", record.Duration),
	)
	return record, nil
}
