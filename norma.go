// Package norma verifies that the visual assets extracted from a PDF survive
// the trip through layout automation: every asset anchored to a sensible text
// block, every asset placed, and every placement within tolerance of where
// the ledger says it belongs.
//
// Basic usage:
//
//	record, err := norma.Verify(assets, placed).Run()
//	if err != nil {
//	    // handle error
//	}
//	if !record.Passed {
//	    log.Println("halting pipeline:", record.FirstFailure)
//	    log.Println(norma.FormatWarnings(record.Warnings()))
//	}
//
// With options:
//
//	record, err := norma.Verify(assets, placed).
//	    WithBlocks(blocks).
//	    MinCoverage(99.5).
//	    Run()
//
// For finer control, the lower-level anchor, layout, and qa packages are also
// available.
package norma

import (
	"github.com/tsawler/norma/anchor"
	"github.com/tsawler/norma/model"
)

// Verify starts a verification run over an asset ledger and the placement
// labels reported by the layout tool. Configure the returned Verifier with
// chained calls, then execute it with Run.
//
// Example:
//
//	record, err := norma.Verify(assets, placed).Run()
func Verify(assets []model.Asset, placed []model.PlacedLabel) *Verifier {
	return &Verifier{
		assets:  assets,
		placed:  placed,
		options: defaultOptions(),
	}
}

// AnchorAssets anchors every asset in the ledger to its nearest text block
// using the default engine configuration. Anchor ids are written into the
// ledger's AnchorTo fields; the report lists what could not be anchored.
//
// Example:
//
//	report := norma.AnchorAssets(assets, blocks)
//	if !report.Passed() {
//	    log.Println(norma.FormatWarnings(report.Warnings))
//	}
func AnchorAssets(assets []model.Asset, blocks []model.ContentBlock) *anchor.Report {
	return anchor.NewEngine().AnchorAll(assets, blocks)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	record := norma.Must(norma.Verify(assets, placed).Run())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
