package norma

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadProfileEmptyKeepsDefaults(t *testing.T) {
	p, err := LoadProfile([]byte(""))
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if diff := cmp.Diff(DefaultProfile(), p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultProfileValidates(t *testing.T) {
	if err := DefaultProfile().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadProfileOverrides(t *testing.T) {
	doc := []byte(`
anchoring:
  workers: 4
completeness:
  require_perfect: false
  min_coverage: 99.5
weights:
  table: 2.5
geometry:
  position_tolerance_pt: 3
`)
	p, err := LoadProfile(doc)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}

	if p.Anchoring.Workers != 4 {
		t.Errorf("Anchoring.Workers = %d, want 4", p.Anchoring.Workers)
	}
	if !p.Anchoring.PreferBelow {
		t.Error("Anchoring.PreferBelow should keep its default")
	}
	if p.Completeness.RequirePerfect {
		t.Error("Completeness.RequirePerfect should be overridden to false")
	}
	if p.Completeness.MinCoverage != 99.5 {
		t.Errorf("Completeness.MinCoverage = %v, want 99.5", p.Completeness.MinCoverage)
	}
	if p.Weights.Table != 2.5 {
		t.Errorf("Weights.Table = %v, want 2.5", p.Weights.Table)
	}
	if p.Weights.Image != 1.0 {
		t.Errorf("Weights.Image = %v, want the 1.0 default", p.Weights.Image)
	}
	if p.Geometry.PositionTolerancePt != 3 {
		t.Errorf("Geometry.PositionTolerancePt = %v, want 3", p.Geometry.PositionTolerancePt)
	}
	if p.Geometry.PositionTolerancePct != 0.01 {
		t.Errorf("Geometry.PositionTolerancePct = %v, want the 0.01 default", p.Geometry.PositionTolerancePct)
	}
}

func TestLoadProfileParseError(t *testing.T) {
	_, err := LoadProfile([]byte("geometry: ["))
	if err == nil {
		t.Fatal("LoadProfile() should reject malformed YAML")
	}
	if !strings.Contains(err.Error(), "parse profile") {
		t.Errorf("error = %q, want a parse profile error", err)
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero min coverage", "completeness:\n  min_coverage: 0"},
		{"min coverage above 100", "completeness:\n  min_coverage: 150"},
		{"zero overlap threshold", "anchoring:\n  overlap_threshold: 0"},
		{"zero workers", "anchoring:\n  workers: 0"},
		{"position pct not a fraction", "geometry:\n  position_tolerance_pct: 1.5"},
		{"zero bias samples", "geometry:\n  bias_min_samples: 0"},
		{"gross multiplier below 1", "geometry:\n  gross_multiplier: 0.5"},
		{"negative image weight", "weights:\n  image: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfile([]byte(tt.doc))
			if !errors.Is(err, ErrBadProfile) {
				t.Fatalf("LoadProfile() error = %v, want ErrBadProfile", err)
			}
		})
	}
}

func TestWithProfileAppliesConfig(t *testing.T) {
	p, err := LoadProfile([]byte(`
anchoring:
  workers: 3
completeness:
  require_perfect: false
  min_coverage: 95
geometry:
  position_tolerance_pt: 3
  min_pass_rate: 0.9
`))
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}

	v := Verify(nil, nil).WithProfile(p)
	if v.err != nil {
		t.Fatalf("WithProfile() error = %v", v.err)
	}
	if v.options.anchoring.Workers != 3 {
		t.Errorf("anchoring.Workers = %d, want 3", v.options.anchoring.Workers)
	}
	if v.options.completeness.MinCoverage != 95 {
		t.Errorf("completeness.MinCoverage = %v, want 95", v.options.completeness.MinCoverage)
	}
	if v.options.geometry.MinPassRate != 0.9 {
		t.Errorf("geometry.MinPassRate = %v, want 0.9", v.options.geometry.MinPassRate)
	}
	if got := v.options.geometry.Position; got.AbsolutePt != 3 || !got.Strict {
		t.Errorf("geometry.Position = %+v, want AbsolutePt 3 and strict composition", got)
	}
	if v.options.geometry.Size.Strict {
		t.Error("geometry.Size should stay lenient")
	}
}
