package norma

import (
	"github.com/tsawler/norma/anchor"
	"github.com/tsawler/norma/qa"
	"go.uber.org/zap"
)

// verifyOptions holds configuration for a verification run.
type verifyOptions struct {
	// Anchoring stage (only runs when blocks are supplied)
	anchoring anchor.Config

	// Pass rules per check
	completeness qa.CompletenessConfig
	weights      qa.WeightConfig
	geometry     qa.GeometryConfig

	// Observability
	logger *zap.Logger
}

// defaultOptions returns the default verification options.
func defaultOptions() verifyOptions {
	return verifyOptions{
		anchoring:    anchor.DefaultConfig(),
		completeness: qa.DefaultCompletenessConfig(),
		weights:      qa.DefaultWeightConfig(),
		geometry:     qa.DefaultGeometryConfig(),
		logger:       zap.NewNop(),
	}
}

// clone creates a copy of verifyOptions. Every field is a value except the
// logger, which chained Verifiers share.
func (o verifyOptions) clone() verifyOptions {
	return verifyOptions{
		anchoring:    o.anchoring,
		completeness: o.completeness,
		weights:      o.weights,
		geometry:     o.geometry,
		logger:       o.logger,
	}
}
