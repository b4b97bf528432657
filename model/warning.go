package model

import "fmt"

// Warning describes a non-fatal issue encountered during anchoring or QA.
// Warnings accumulate in reports; they never abort a run.
type Warning struct {
	// Code identifies the warning category (stable, machine-matchable).
	Code string `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

// Warningf builds a warning with a formatted message.
func Warningf(code, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	if w.Code == "" {
		return w.Message
	}
	return w.Code + ": " + w.Message
}

// Warning codes used across the engine.
const (
	WarnColumnFallback   = "column-fallback"   // column detection degraded to a page-wide search
	WarnSyntheticColumn  = "synthetic-column"  // no clusters survived; one synthetic column used
	WarnNoBlocksOnPage   = "no-blocks-on-page" // a page had assets but no usable blocks
	WarnLabelIgnored     = "label-ignored"     // placed label without usable geometry
	WarnDuplicateLabel   = "duplicate-label"   // more than one placed label for one asset
	WarnGrossViolation   = "gross-violation"   // placement error beyond 3x nominal tolerance
	WarnSystematicOffset = "systematic-offset" // consistent per-axis placement bias
	WarnSizeDrift        = "size-drift"        // placed size off beyond the lenient bound
	WarnEmptyLedger      = "empty-ledger"      // a check ran against zero source assets
)
