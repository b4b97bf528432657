package qa

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/norma/model"
)

// sizedAsset builds an asset with intrinsic raster dimensions and an
// anchor id.
func sizedAsset(id string, typ model.AssetType, page, px, py int, anchorTo string) model.Asset {
	return model.Asset{
		ID:          id,
		Type:        typ,
		Page:        page,
		PixelWidth:  px,
		PixelHeight: py,
		AnchorTo:    anchorTo,
	}
}

// labelsFor builds bare placed labels, one per id.
func labelsFor(ids ...string) []model.PlacedLabel {
	placed := make([]model.PlacedLabel, 0, len(ids))
	for _, id := range ids {
		placed = append(placed, model.PlacedLabel{AssetID: id})
	}
	return placed
}

// Ten assets with one table missing: simple coverage reads 90%, but the
// table's 1.5 weight drags weighted coverage strictly below that.
func TestAnalyzeWeightsMissingTable(t *testing.T) {
	var assets []model.Asset
	var placedIDs []string
	for i := 0; i < 9; i++ {
		id := fmt.Sprintf("img.%d", i)
		assets = append(assets, sizedAsset(id, model.AssetTypeImage, 1, 100, 100, ""))
		placedIDs = append(placedIDs, id)
	}
	assets = append(assets, sizedAsset("tbl.9", model.AssetTypeTable, 1, 100, 100, ""))

	metrics := NewCoverageAnalyzer().Analyze(assets, labelsFor(placedIDs...))
	if metrics.Overall.Percent != 90 {
		t.Fatalf("Overall.Percent = %v, want 90", metrics.Overall.Percent)
	}
	if metrics.WeightedPercent >= 90 {
		t.Errorf("WeightedPercent = %v, want strictly below 90", metrics.WeightedPercent)
	}
	if want := 9.0 / 10.5 * 100; math.Abs(metrics.WeightedPercent-want) > 1e-9 {
		t.Errorf("WeightedPercent = %v, want %v", metrics.WeightedPercent, want)
	}
}

func TestWeight(t *testing.T) {
	a := NewCoverageAnalyzer()
	tests := []struct {
		name  string
		asset model.Asset
		want  float64
	}{
		{"small image", sizedAsset("a", model.AssetTypeImage, 1, 100, 100, ""), 1.0},
		{"unknown type falls back to image weight", sizedAsset("a", model.AssetTypeUnknown, 1, 100, 100, ""), 1.0},
		{"vector", sizedAsset("a", model.AssetTypeVector, 1, 100, 100, ""), 1.2},
		{"table", sizedAsset("a", model.AssetTypeTable, 1, 100, 100, ""), 1.5},
		{"large image", sizedAsset("a", model.AssetTypeImage, 1, 600, 100, ""), 1.5},
		{"prominent image", sizedAsset("a", model.AssetTypeImage, 1, 600, 600, ""), 2.0},
		{"prominent table keeps the larger multiplier only", sizedAsset("a", model.AssetTypeTable, 1, 600, 600, ""), 3.0},
		{"unknown raster size", sizedAsset("a", model.AssetTypeImage, 1, 0, 0, ""), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Weight(&tt.asset); got != tt.want {
				t.Errorf("Weight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeightCustomThresholds(t *testing.T) {
	a := NewCoverageAnalyzerWithConfig(WeightConfig{LargeDimensionPx: 100})
	asset := sizedAsset("a", model.AssetTypeImage, 1, 150, 50, "")
	if got := a.Weight(&asset); got != 1.5 {
		t.Errorf("Weight() = %v, want 1.5 with a 100px large threshold", got)
	}
}

func TestCritical(t *testing.T) {
	a := NewCoverageAnalyzer()
	tests := []struct {
		name  string
		asset model.Asset
		want  bool
	}{
		{"small image", sizedAsset("a", model.AssetTypeImage, 1, 100, 100, ""), false},
		{"zero-size image", sizedAsset("a", model.AssetTypeImage, 1, 0, 0, ""), false},
		{"table", sizedAsset("a", model.AssetTypeTable, 1, 100, 100, ""), true},
		{"vector", sizedAsset("a", model.AssetTypeVector, 1, 100, 100, ""), true},
		{"large image", sizedAsset("a", model.AssetTypeImage, 1, 600, 100, ""), true},
		{"prominent image", sizedAsset("a", model.AssetTypeImage, 1, 600, 600, ""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Critical(&tt.asset); got != tt.want {
				t.Errorf("Critical() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeBuckets(t *testing.T) {
	assets := []model.Asset{
		sizedAsset("img.a", model.AssetTypeImage, 1, 100, 100, "p1.intro.b1"),
		sizedAsset("img.b", model.AssetTypeImage, 1, 100, 100, "p1.intro.b2"),
		sizedAsset("tbl.c", model.AssetTypeTable, 2, 100, 100, "p2.methods.b1"),
		sizedAsset("vec.d", model.AssetTypeVector, 2, 100, 100, ""),
	}
	metrics := NewCoverageAnalyzer().Analyze(assets, labelsFor("img.a", "tbl.c"))

	if metrics.Overall.Percent != 50 {
		t.Fatalf("Overall.Percent = %v, want 50", metrics.Overall.Percent)
	}
	wantByType := map[string]CoverageBucket{
		"image":  {Total: 2, Placed: 1, Percent: 50},
		"table":  {Total: 1, Placed: 1, Percent: 100},
		"vector": {Total: 1, Placed: 0, Percent: 0},
	}
	if diff := cmp.Diff(wantByType, metrics.ByType); diff != "" {
		t.Errorf("ByType mismatch (-want +got):\n%s", diff)
	}
	wantByPage := map[int]CoverageBucket{
		1: {Total: 2, Placed: 1, Percent: 50},
		2: {Total: 2, Placed: 1, Percent: 50},
	}
	if diff := cmp.Diff(wantByPage, metrics.ByPage); diff != "" {
		t.Errorf("ByPage mismatch (-want +got):\n%s", diff)
	}
	wantBySection := map[string]CoverageBucket{
		"intro":   {Total: 2, Placed: 1, Percent: 50},
		"methods": {Total: 1, Placed: 1, Percent: 100},
		"unknown": {Total: 1, Placed: 0, Percent: 0},
	}
	if diff := cmp.Diff(wantBySection, metrics.BySection); diff != "" {
		t.Errorf("BySection mismatch (-want +got):\n%s", diff)
	}

	// tbl.c is critical but placed; img.b is missing but not critical.
	if diff := cmp.Diff([]string{"vec.d"}, metrics.CriticalMissing); diff != "" {
		t.Errorf("CriticalMissing mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeCriticalMissingOrder(t *testing.T) {
	assets := []model.Asset{
		sizedAsset("vec.a", model.AssetTypeVector, 1, 100, 100, ""),
		sizedAsset("tbl.b", model.AssetTypeTable, 1, 100, 100, ""),
		sizedAsset("img.small", model.AssetTypeImage, 1, 100, 100, ""),
		sizedAsset("tbl.big", model.AssetTypeTable, 1, 600, 600, ""),
		sizedAsset("img.huge", model.AssetTypeImage, 1, 600, 600, ""),
		sizedAsset("tbl.a", model.AssetTypeTable, 1, 100, 100, ""),
	}
	metrics := NewCoverageAnalyzer().Analyze(assets, nil)

	want := []string{"tbl.big", "img.huge", "tbl.a", "tbl.b", "vec.a"}
	if diff := cmp.Diff(want, metrics.CriticalMissing); diff != "" {
		t.Errorf("CriticalMissing mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeEmptyLedger(t *testing.T) {
	metrics := NewCoverageAnalyzer().Analyze(nil, nil)
	if metrics.Overall.Percent != 100 {
		t.Errorf("Overall.Percent = %v, want 100 for an empty ledger", metrics.Overall.Percent)
	}
	if metrics.WeightedPercent != 100 {
		t.Errorf("WeightedPercent = %v, want 100", metrics.WeightedPercent)
	}
	if len(metrics.ByType) != 0 || len(metrics.ByPage) != 0 || len(metrics.BySection) != 0 {
		t.Error("expected empty buckets")
	}
	if metrics.CriticalMissing != nil {
		t.Errorf("CriticalMissing = %v, want none", metrics.CriticalMissing)
	}
}

func TestSectionOf(t *testing.T) {
	tests := []struct {
		anchorTo string
		want     string
	}{
		{"p1.intro.b3", "intro"},
		{"p2.methods.b1", "methods"},
		{"a.b", "b"},
		{"", "unknown"},
		{"blockonly", "unknown"},
		{"p1.", "unknown"},
	}
	for _, tt := range tests {
		if got := sectionOf(tt.anchorTo); got != tt.want {
			t.Errorf("sectionOf(%q) = %q, want %q", tt.anchorTo, got, tt.want)
		}
	}
}

func TestNewCoverageAnalyzerWithConfigDefaults(t *testing.T) {
	if got := NewCoverageAnalyzerWithConfig(WeightConfig{}).config; got != DefaultWeightConfig() {
		t.Errorf("config = %+v, want defaults", got)
	}

	custom := NewCoverageAnalyzerWithConfig(WeightConfig{TableWeight: 2.5}).config
	if custom.TableWeight != 2.5 {
		t.Errorf("TableWeight = %v, want 2.5 kept", custom.TableWeight)
	}
	if custom.ImageWeight != 1.0 {
		t.Errorf("ImageWeight = %v, want default 1.0", custom.ImageWeight)
	}
}

func BenchmarkAnalyze(b *testing.B) {
	var assets []model.Asset
	var placedIDs []string
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("img.%04d", i)
		typ := model.AssetTypeImage
		if i%5 == 0 {
			typ = model.AssetTypeTable
		}
		assets = append(assets, sizedAsset(id, typ, 1+i/40, 100+i%700, 100, fmt.Sprintf("p%d.s%d.b%d", 1+i/40, i%7, i)))
		if i%3 != 0 {
			placedIDs = append(placedIDs, id)
		}
	}
	placed := labelsFor(placedIDs...)
	a := NewCoverageAnalyzer()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Analyze(assets, placed)
	}
}
