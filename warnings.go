package norma

import (
	"strings"

	"github.com/tsawler/norma/model"
)

// Warning is the model package's warning type, re-exported so callers of
// the top-level API rarely need a second import.
type Warning = model.Warning

// FormatWarnings renders warnings for logs, one "code: message" line per
// warning. An empty slice renders as an empty string.
//
// Example:
//
//	log.Println(norma.FormatWarnings(record.Warnings()))
func FormatWarnings(warnings []model.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, w.String())
	}
	return strings.Join(lines, "\n")
}
