// Package report renders audit records for humans. The verification
// engine itself only produces structured reports; everything here is
// presentation and can be skipped by callers that ship JSON elsewhere.
package report

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tsawler/norma"
)

// maxListedIDs caps how many asset ids a summary line spells out before
// collapsing the tail into a count.
const maxListedIDs = 8

// WriteText writes a plain-text summary of the record to w. Counts and
// percentages are formatted for English readers (1,234 not 1234), which
// matters once runs reach catalog scale.
func WriteText(w io.Writer, record *norma.AuditRecord) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "verification run %s\n", record.RunID)
	if !record.StartedAt.IsZero() {
		p.Fprintf(&b, "started %s, finished in %v\n",
			record.StartedAt.UTC().Format(time.RFC3339), record.Duration)
	}
	if record.Passed {
		b.WriteString("result: PASSED\n")
	} else if record.FirstFailure != "" {
		p.Fprintf(&b, "result: FAILED at %s\n", record.FirstFailure)
	} else {
		b.WriteString("result: FAILED\n")
	}

	if r := record.Anchoring; r != nil {
		b.WriteByte('\n')
		p.Fprintf(&b, "anchoring: %d of %d assets anchored (%.1f%%)\n",
			r.Anchored, r.Total, r.SuccessRate()*100)
		if len(r.UnanchoredAssets) > 0 {
			p.Fprintf(&b, "  unanchored: %s\n", joinCapped(p, r.UnanchoredAssets))
		}
		if len(r.AmbiguousMatches) > 0 {
			p.Fprintf(&b, "  ambiguous decisions: %d\n", len(r.AmbiguousMatches))
		}
		if r.RoundTripChecked > 0 {
			p.Fprintf(&b, "  round trip: %d of %d clean\n",
				r.RoundTripChecked-len(r.GeometryViolations), r.RoundTripChecked)
		}
	}

	if r := record.Completeness; r != nil {
		b.WriteByte('\n')
		p.Fprintf(&b, "completeness: %d of %d assets placed (%.1f%% coverage)\n",
			r.Matched, r.Total, r.Coverage)
		if len(r.MissingAssets) > 0 {
			p.Fprintf(&b, "  missing: %s\n", joinCapped(p, r.MissingAssets))
		}
		if len(r.ExtraLabels) > 0 {
			p.Fprintf(&b, "  stale labels: %s\n", joinCapped(p, r.ExtraLabels))
		}
		for _, rec := range r.Recommendations {
			p.Fprintf(&b, "  recommendation: %s\n", rec)
		}
	}

	if r := record.Coverage; r != nil {
		b.WriteByte('\n')
		p.Fprintf(&b, "coverage: %.1f%% by count, %.1f%% weighted\n",
			r.Overall.Percent, r.WeightedPercent)
		if len(r.CriticalMissing) > 0 {
			p.Fprintf(&b, "  critical missing: %s\n", joinCapped(p, r.CriticalMissing))
		}
	}

	if r := record.Geometry; r != nil {
		b.WriteByte('\n')
		p.Fprintf(&b, "geometry: %d of %d placements within tolerance (%.1f%%)\n",
			r.PassCount, r.Checked, r.PassRate()*100)
		if len(r.GrossViolations) > 0 {
			p.Fprintf(&b, "  gross violations: %s\n", joinCapped(p, r.GrossViolations))
		}
		for _, off := range r.SystematicOffsets {
			p.Fprintf(&b, "  systematic %s offset: %+.1fpt across %d assets\n",
				off.Axis, off.MeanPt, off.Samples)
		}
		if len(r.SkippedLabels) > 0 {
			p.Fprintf(&b, "  skipped labels: %s\n", joinCapped(p, r.SkippedLabels))
		}
	}

	if warnings := record.Warnings(); len(warnings) > 0 {
		b.WriteByte('\n')
		p.Fprintf(&b, "warnings (%d):\n", len(warnings))
		for _, warning := range warnings {
			p.Fprintf(&b, "  %s\n", warning)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// joinCapped joins ids with commas, collapsing anything past the cap
// into a trailing count so one bad run cannot flood a terminal.
func joinCapped(p *message.Printer, ids []string) string {
	if len(ids) <= maxListedIDs {
		return strings.Join(ids, ", ")
	}
	return p.Sprintf("%s, +%d more",
		strings.Join(ids[:maxListedIDs], ", "), len(ids)-maxListedIDs)
}
