package norma

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/tsawler/norma/anchor"
	"github.com/tsawler/norma/model"
	"github.com/tsawler/norma/tolerance"
	"go.uber.org/zap/zaptest"
)

// pageBlock builds a paragraph block with geometry.
func pageBlock(id string, page int, x0, y0, x1, y1 float64) model.ContentBlock {
	bb, err := model.NewBBox(x0, y0, x1, y1)
	if err != nil {
		panic(err)
	}
	return model.ContentBlock{ID: id, Type: model.BlockTypeParagraph, Page: page, BBox: &bb}
}

// pageAsset builds an asset with geometry and a small raster size.
func pageAsset(id string, typ model.AssetType, page int, x0, y0, x1, y1 float64) model.Asset {
	bb, err := model.NewBBox(x0, y0, x1, y1)
	if err != nil {
		panic(err)
	}
	return model.Asset{ID: id, Type: typ, Page: page, BBox: bb, PixelWidth: 120, PixelHeight: 80}
}

// exactLabel places an asset exactly where its ledger geometry says.
func exactLabel(a model.Asset) model.PlacedLabel {
	bb := a.BBox
	return model.PlacedLabel{AssetID: a.ID, BBox: &bb}
}

// singlePageFixture is one column of text with one figure between the
// intro paragraphs and the body paragraph below it.
func singlePageFixture() (assets []model.Asset, blocks []model.ContentBlock, placed []model.PlacedLabel) {
	blocks = []model.ContentBlock{
		pageBlock("p1.intro.b1", 1, 50, 100, 150, 130),
		pageBlock("p1.intro.b2", 1, 50, 140, 150, 170),
		pageBlock("p1.intro.b3", 1, 50, 180, 150, 196),
		pageBlock("p1.body.b4", 1, 50, 300, 150, 330),
	}
	assets = []model.Asset{
		pageAsset("fig.1", model.AssetTypeImage, 1, 60, 200, 140, 260),
	}
	placed = []model.PlacedLabel{exactLabel(assets[0])}
	return assets, blocks, placed
}

func TestVerifyRunAllChecksPass(t *testing.T) {
	assets, blocks, placed := singlePageFixture()

	record, err := Verify(assets, placed).
		WithBlocks(blocks).
		WithLogger(zaptest.NewLogger(t)).
		Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !record.Passed {
		t.Fatalf("Passed = false, FirstFailure = %q", record.FirstFailure)
	}
	want := []string{CheckAnchoring, CheckCompleteness, CheckCoverage, CheckGeometry}
	if diff := cmp.Diff(want, record.ChecksRun); diff != "" {
		t.Errorf("ChecksRun mismatch (-want +got):\n%s", diff)
	}
	if record.Anchoring == nil || record.Completeness == nil || record.Coverage == nil || record.Geometry == nil {
		t.Fatal("every report should be present on a full run")
	}
	if record.Anchoring.Anchored != 1 {
		t.Errorf("Anchoring.Anchored = %d, want 1", record.Anchoring.Anchored)
	}
	if got := assets[0].AnchorTo; got != "p1.body.b4" {
		t.Errorf("AnchorTo = %q, want p1.body.b4 written into the ledger", got)
	}
	if record.RunID == uuid.Nil {
		t.Error("RunID should be set")
	}
	if record.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}
	if record.Duration < 0 {
		t.Errorf("Duration = %v, want non-negative", record.Duration)
	}
}

func TestVerifyStopsAtAnchoring(t *testing.T) {
	assets, blocks, placed := singlePageFixture()
	assets = append(assets, pageAsset("fig.2", model.AssetTypeImage, 2, 60, 200, 140, 260))
	placed = append(placed, exactLabel(assets[1]))

	record, err := Verify(assets, placed).WithBlocks(blocks).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if record.Passed {
		t.Fatal("a page without blocks should fail the anchoring stage")
	}
	if record.FirstFailure != CheckAnchoring {
		t.Errorf("FirstFailure = %q, want %q", record.FirstFailure, CheckAnchoring)
	}
	if diff := cmp.Diff([]string{CheckAnchoring}, record.ChecksRun); diff != "" {
		t.Errorf("ChecksRun mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"fig.2"}, record.Anchoring.UnanchoredAssets); diff != "" {
		t.Errorf("UnanchoredAssets mismatch (-want +got):\n%s", diff)
	}
	if record.Completeness != nil || record.Coverage != nil || record.Geometry != nil {
		t.Error("no check should run past the first failure")
	}
}

func TestVerifyStopsAtCompleteness(t *testing.T) {
	assets, _, _ := singlePageFixture()

	record, err := Verify(assets, nil).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if record.FirstFailure != CheckCompleteness {
		t.Errorf("FirstFailure = %q, want %q", record.FirstFailure, CheckCompleteness)
	}
	if diff := cmp.Diff([]string{CheckCompleteness}, record.ChecksRun); diff != "" {
		t.Errorf("ChecksRun mismatch (-want +got):\n%s", diff)
	}
	if record.Anchoring != nil {
		t.Error("anchoring should not run without blocks")
	}
	if record.Coverage != nil || record.Geometry != nil {
		t.Error("no check should run past the first failure")
	}
}

// A relaxed coverage threshold tolerates missing icons, but the coverage
// gate still refuses to let a missing table through.
func TestVerifyStopsAtCoverageGate(t *testing.T) {
	assets, _, placed := singlePageFixture()
	assets = append(assets, pageAsset("tbl.2", model.AssetTypeTable, 1, 60, 400, 140, 460))

	record, err := Verify(assets, placed).MinCoverage(50).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if record.FirstFailure != CheckCoverage {
		t.Errorf("FirstFailure = %q, want %q", record.FirstFailure, CheckCoverage)
	}
	if diff := cmp.Diff([]string{CheckCompleteness, CheckCoverage}, record.ChecksRun); diff != "" {
		t.Errorf("ChecksRun mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tbl.2"}, record.Coverage.CriticalMissing); diff != "" {
		t.Errorf("CriticalMissing mismatch (-want +got):\n%s", diff)
	}
	if record.Geometry != nil {
		t.Error("geometry should not run past the coverage gate")
	}
}

func TestVerifyMinCoverageToleratesMissingIcon(t *testing.T) {
	assets, _, placed := singlePageFixture()
	assets = append(assets, pageAsset("img.x", model.AssetTypeImage, 1, 60, 400, 140, 440))

	record, err := Verify(assets, placed).MinCoverage(50).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !record.Passed {
		t.Fatalf("Passed = false, FirstFailure = %q; a small missing image should squeeze under 50%%", record.FirstFailure)
	}

	strict, err := Verify(assets, placed).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strict.FirstFailure != CheckCompleteness {
		t.Errorf("FirstFailure = %q, want %q under the default perfect rule", strict.FirstFailure, CheckCompleteness)
	}
}

func TestVerifyStopsAtGeometry(t *testing.T) {
	assets, _, placed := singlePageFixture()
	assets = append(assets, pageAsset("fig.2", model.AssetTypeImage, 1, 200, 200, 300, 250))
	shifted, err := model.NewBBox(210, 200, 310, 250)
	if err != nil {
		t.Fatal(err)
	}
	placed = append(placed, model.PlacedLabel{AssetID: "fig.2", BBox: &shifted})

	record, err := Verify(assets, placed).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if record.FirstFailure != CheckGeometry {
		t.Errorf("FirstFailure = %q, want %q", record.FirstFailure, CheckGeometry)
	}
	want := []string{CheckCompleteness, CheckCoverage, CheckGeometry}
	if diff := cmp.Diff(want, record.ChecksRun); diff != "" {
		t.Errorf("ChecksRun mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"fig.2"}, record.Geometry.GrossViolations); diff != "" {
		t.Errorf("GrossViolations mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyConfigurationErrors(t *testing.T) {
	assets, _, placed := singlePageFixture()
	tests := []struct {
		name string
		v    *Verifier
	}{
		{"zero min coverage", Verify(assets, placed).MinCoverage(0)},
		{"min coverage above 100", Verify(assets, placed).MinCoverage(120)},
		{"zero pass rate", Verify(assets, placed).MinPassRate(0)},
		{"pass rate above 1", Verify(assets, placed).MinPassRate(1.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := tt.v.Run()
			if !errors.Is(err, ErrBadThreshold) {
				t.Fatalf("Run() error = %v, want ErrBadThreshold", err)
			}
			if record != nil {
				t.Error("no record should be produced on a configuration error")
			}
		})
	}

	t.Run("nil profile", func(t *testing.T) {
		if _, err := Verify(assets, placed).WithProfile(nil).Run(); err == nil {
			t.Fatal("Run() should reject a nil profile")
		}
	})

	t.Run("error survives further chaining", func(t *testing.T) {
		_, err := Verify(assets, placed).MinCoverage(-5).RequirePerfect().Run()
		if !errors.Is(err, ErrBadThreshold) {
			t.Fatalf("Run() error = %v, want ErrBadThreshold", err)
		}
	})
}

func TestVerifyCloneOnConfigure(t *testing.T) {
	base := Verify(nil, nil)
	modified := base.MinPassRate(0.5).Tolerances(
		tolerance.Spec{AbsolutePt: 5, RelativePct: 0.05, Strict: true},
		tolerance.DefaultSize(),
	)

	if base.options.geometry.MinPassRate != 0.98 {
		t.Errorf("base MinPassRate = %v, want 0.98 untouched", base.options.geometry.MinPassRate)
	}
	if modified.options.geometry.MinPassRate != 0.5 {
		t.Errorf("modified MinPassRate = %v, want 0.5", modified.options.geometry.MinPassRate)
	}
	if modified.options.geometry.Position.AbsolutePt != 5 {
		t.Errorf("modified Position.AbsolutePt = %v, want 5", modified.options.geometry.Position.AbsolutePt)
	}
	if base.anchorStage {
		t.Error("base should not have the anchoring stage enabled")
	}
	if withBlocks := base.WithBlocks(nil); !withBlocks.anchorStage {
		t.Error("WithBlocks should enable the anchoring stage")
	}
}

func TestVerifyWithAnchoring(t *testing.T) {
	v := Verify(nil, nil).WithAnchoring(anchor.Config{
		PreferBelow: true,
		Workers:     4,
	})
	if v.options.anchoring.Workers != 4 {
		t.Errorf("anchoring.Workers = %d, want 4", v.options.anchoring.Workers)
	}
}

func TestAnchorAssets(t *testing.T) {
	assets, blocks, _ := singlePageFixture()

	report := AnchorAssets(assets, blocks)
	if report.Anchored != 1 {
		t.Fatalf("Anchored = %d, want 1", report.Anchored)
	}
	if got := assets[0].AnchorTo; got != "p1.body.b4" {
		t.Errorf("AnchorTo = %q, want p1.body.b4", got)
	}
	if !report.Passed() {
		t.Error("report should pass")
	}
}

func TestAuditRecordWarnings(t *testing.T) {
	record := &AuditRecord{
		Anchoring: &anchor.Report{Warnings: []model.Warning{
			model.Warningf(model.WarnColumnFallback, "page 3 fell back to a page-wide search"),
		}},
	}
	warnings := record.Warnings()
	if len(warnings) != 1 || warnings[0].Code != model.WarnColumnFallback {
		t.Errorf("Warnings() = %v, want the anchoring warning", warnings)
	}

	if got := (&AuditRecord{}).Warnings(); got != nil {
		t.Errorf("Warnings() = %v, want none for an empty record", got)
	}
}

func TestFormatWarnings(t *testing.T) {
	warnings := []model.Warning{
		model.Warningf(model.WarnColumnFallback, "page 3 fell back to a page-wide search"),
		model.Warningf(model.WarnSizeDrift, "asset fig.1 placed at 90.0x40.0pt, expected 100.0x50.0pt"),
	}
	want := "column-fallback: page 3 fell back to a page-wide search\n" +
		"size-drift: asset fig.1 placed at 90.0x40.0pt, expected 100.0x50.0pt"
	if got := FormatWarnings(warnings); got != want {
		t.Errorf("FormatWarnings() = %q, want %q", got, want)
	}
	if got := FormatWarnings(nil); got != "" {
		t.Errorf("FormatWarnings(nil) = %q, want empty", got)
	}
}

func TestMust(t *testing.T) {
	if got := Must(42, nil); got != 42 {
		t.Errorf("Must(42, nil) = %d, want 42", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("Must should panic on error")
		}
	}()
	Must(0, errors.New("boom"))
}
