package report

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tsawler/norma"
)

const pageStyle = `body{font-family:sans-serif;margin:2rem;max-width:60rem}
table{border-collapse:collapse;margin:1rem 0}
td,th{border:1px solid #ccc;padding:.3rem .6rem;text-align:left}
.pass{color:#2a7d2a;font-weight:bold}
.fail{color:#b00020;font-weight:bold}
ul{margin:.3rem 0}`

// WriteHTML writes a self-contained HTML audit page for the record to
// w. The page is built as a node tree and rendered, so asset ids and
// warning text are always escaped no matter what the pipeline put in
// them.
func WriteHTML(w io.Writer, record *norma.AuditRecord) error {
	p := message.NewPrinter(language.English)

	charset := elem("meta")
	charset.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head := elem("head",
		charset,
		elem("title", text(p.Sprintf("verification run %s", record.RunID))),
		elem("style", text(pageStyle)),
	)

	body := elem("body",
		elem("h1", text("Verification run")),
		elem("p", text(p.Sprintf("run %s", record.RunID))),
		verdict(p, record),
		checkTable(p, record),
	)
	for _, section := range detailSections(p, record) {
		body.AppendChild(section)
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(elem("html", head, body))
	return html.Render(w, doc)
}

func verdict(p *message.Printer, record *norma.AuditRecord) *html.Node {
	if record.Passed {
		return classed("p", "pass", text("PASSED"))
	}
	label := "FAILED"
	if record.FirstFailure != "" {
		label = p.Sprintf("FAILED at %s", record.FirstFailure)
	}
	return classed("p", "fail", text(label))
}

// checkTable lists every check the run executed with its outcome. A
// failed run stops at the first failure, so every earlier row is a
// pass and later checks never appear.
func checkTable(p *message.Printer, record *norma.AuditRecord) *html.Node {
	table := elem("table",
		elem("thead", elem("tr",
			elem("th", text("Check")),
			elem("th", text("Status")),
			elem("th", text("Detail")),
		)),
	)
	tbody := elem("tbody")
	for _, name := range record.ChecksRun {
		status := classed("span", "pass", text("PASS"))
		if name == record.FirstFailure {
			status = classed("span", "fail", text("FAIL"))
		}
		tbody.AppendChild(elem("tr",
			elem("td", text(name)),
			elem("td", status),
			elem("td", text(checkDetail(p, record, name))),
		))
	}
	table.AppendChild(tbody)
	return table
}

func checkDetail(p *message.Printer, record *norma.AuditRecord, name string) string {
	switch name {
	case norma.CheckAnchoring:
		if r := record.Anchoring; r != nil {
			return p.Sprintf("%d of %d assets anchored, %d round-trip checks",
				r.Anchored, r.Total, r.RoundTripChecked)
		}
	case norma.CheckCompleteness:
		if r := record.Completeness; r != nil {
			return p.Sprintf("%d of %d assets placed, %.1f%% coverage",
				r.Matched, r.Total, r.Coverage)
		}
	case norma.CheckCoverage:
		if r := record.Coverage; r != nil {
			return p.Sprintf("%.1f%% by count, %.1f%% weighted, %d critical missing",
				r.Overall.Percent, r.WeightedPercent, len(r.CriticalMissing))
		}
	case norma.CheckGeometry:
		if r := record.Geometry; r != nil {
			return p.Sprintf("%d of %d placements within tolerance",
				r.PassCount, r.Checked)
		}
	}
	return ""
}

// detailSections builds one heading-plus-list block per noteworthy
// finding. Clean runs produce none of them.
func detailSections(p *message.Printer, record *norma.AuditRecord) []*html.Node {
	var sections []*html.Node
	add := func(heading string, items []string) {
		if len(items) == 0 {
			return
		}
		list := elem("ul")
		for _, item := range items {
			list.AppendChild(elem("li", text(item)))
		}
		sections = append(sections, elem("h2", text(heading)), list)
	}

	if r := record.Anchoring; r != nil {
		add("Unanchored assets", r.UnanchoredAssets)
	}
	if r := record.Completeness; r != nil {
		add("Missing assets", r.MissingAssets)
		add("Stale labels", r.ExtraLabels)
		add("Recommendations", r.Recommendations)
	}
	if r := record.Coverage; r != nil {
		add("Critical missing assets", r.CriticalMissing)
	}
	if r := record.Geometry; r != nil {
		var failures []string
		for _, f := range r.Failures {
			failures = append(failures, p.Sprintf("%s: off by %.1fpt (%.1f%% relative)",
				f.AssetID, f.AbsoluteError, f.RelativeError*100))
		}
		add("Placement failures", failures)
		var offsets []string
		for _, off := range r.SystematicOffsets {
			offsets = append(offsets, p.Sprintf("systematic %s offset of %+.1fpt across %d assets",
				off.Axis, off.MeanPt, off.Samples))
		}
		add("Systematic offsets", offsets)
	}
	if warnings := record.Warnings(); len(warnings) > 0 {
		var lines []string
		for _, warning := range warnings {
			lines = append(lines, warning.String())
		}
		add("Warnings", lines)
	}
	return sections
}

// elem builds an element node with the given children in document
// order.
func elem(tag string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// classed builds an element node carrying a class attribute.
func classed(tag, class string, children ...*html.Node) *html.Node {
	n := elem(tag, children...)
	n.Attr = []html.Attribute{{Key: "class", Val: class}}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
