package qa

import (
	"sort"
	"strings"

	"github.com/tsawler/norma/model"
)

// WeightConfig holds the asset-importance model used by weighted
// coverage. Weights multiply: a base weight per asset type times a
// size multiplier, where only the larger applicable multiplier counts.
type WeightConfig struct {
	// ImageWeight is the base weight for raster images and the
	// fallback for unknown types. Default: 1.0.
	ImageWeight float64

	// VectorWeight is the base weight for vector graphics.
	// Default: 1.2.
	VectorWeight float64

	// TableWeight is the base weight for tables. Default: 1.5.
	TableWeight float64

	// LargeDimensionPx marks an asset as large when either pixel
	// dimension exceeds it. Default: 500 pixels.
	LargeDimensionPx int

	// LargeMultiplier scales the weight of large assets.
	// Default: 1.5.
	LargeMultiplier float64

	// ProminentAreaPx marks an asset as prominent when its pixel
	// area exceeds it. Default: 250000 square pixels.
	ProminentAreaPx int

	// ProminentMultiplier scales the weight of prominent assets. A
	// prominent asset uses this multiplier alone; it does not stack
	// with LargeMultiplier. Default: 2.0.
	ProminentMultiplier float64
}

// DefaultWeightConfig returns a WeightConfig with the default
// importance model.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		ImageWeight:         1.0,
		VectorWeight:        1.2,
		TableWeight:         1.5,
		LargeDimensionPx:    500,
		LargeMultiplier:     1.5,
		ProminentAreaPx:     250000,
		ProminentMultiplier: 2.0,
	}
}

// CoverageBucket is one slice of the ledger with its placement rate.
type CoverageBucket struct {
	// Total is how many assets the slice holds.
	Total int `json:"total"`

	// Placed is how many of them have a placed label.
	Placed int `json:"placed"`

	// Percent is Placed over Total as a percentage; an empty slice
	// counts as fully covered.
	Percent float64 `json:"percent"`
}

// CoverageMetrics breaks placement coverage down five ways. It is
// built once by Analyze and not modified afterwards.
type CoverageMetrics struct {
	// Overall is the raw headcount view of the whole ledger.
	Overall CoverageBucket `json:"overall"`

	// WeightedPercent is coverage with each asset weighted by
	// importance, so missing a full-page table hurts more than
	// missing an icon.
	WeightedPercent float64 `json:"weighted_percent"`

	// ByType buckets coverage per asset type name.
	ByType map[string]CoverageBucket `json:"by_type"`

	// ByPage buckets coverage per page number.
	ByPage map[int]CoverageBucket `json:"by_page"`

	// BySection buckets coverage per section key parsed from the
	// anchor id; assets without a parseable section fall under
	// "unknown".
	BySection map[string]CoverageBucket `json:"by_section"`

	// CriticalMissing lists missing assets that are large, prominent,
	// a table, or a vector, heaviest first.
	CriticalMissing []string `json:"critical_missing,omitempty"`
}

// CoverageAnalyzer computes placement coverage over an asset ledger.
type CoverageAnalyzer struct {
	config WeightConfig
}

// NewCoverageAnalyzer creates a CoverageAnalyzer with the default
// importance model.
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return NewCoverageAnalyzerWithConfig(DefaultWeightConfig())
}

// NewCoverageAnalyzerWithConfig creates a CoverageAnalyzer with a
// custom importance model. Non-positive values fall back to the
// defaults.
func NewCoverageAnalyzerWithConfig(config WeightConfig) *CoverageAnalyzer {
	defaults := DefaultWeightConfig()
	if config.ImageWeight <= 0 {
		config.ImageWeight = defaults.ImageWeight
	}
	if config.VectorWeight <= 0 {
		config.VectorWeight = defaults.VectorWeight
	}
	if config.TableWeight <= 0 {
		config.TableWeight = defaults.TableWeight
	}
	if config.LargeDimensionPx <= 0 {
		config.LargeDimensionPx = defaults.LargeDimensionPx
	}
	if config.LargeMultiplier <= 0 {
		config.LargeMultiplier = defaults.LargeMultiplier
	}
	if config.ProminentAreaPx <= 0 {
		config.ProminentAreaPx = defaults.ProminentAreaPx
	}
	if config.ProminentMultiplier <= 0 {
		config.ProminentMultiplier = defaults.ProminentMultiplier
	}
	return &CoverageAnalyzer{config: config}
}

// Analyze computes every coverage view for the ledger against the
// placed labels. Only label ids matter here; geometry is the geometry
// validator's business.
func (a *CoverageAnalyzer) Analyze(assets []model.Asset, placed []model.PlacedLabel) *CoverageMetrics {
	placedSet := make(map[string]struct{}, len(placed))
	for i := range placed {
		placedSet[placed[i].AssetID] = struct{}{}
	}

	metrics := &CoverageMetrics{
		ByType:    make(map[string]CoverageBucket),
		ByPage:    make(map[int]CoverageBucket),
		BySection: make(map[string]CoverageBucket),
	}

	var totalWeight, placedWeight float64
	type critical struct {
		id     string
		weight float64
	}
	var criticalMissing []critical

	for i := range assets {
		asset := &assets[i]
		_, isPlaced := placedSet[asset.ID]

		metrics.Overall.Total++
		weight := a.Weight(asset)
		totalWeight += weight
		if isPlaced {
			metrics.Overall.Placed++
			placedWeight += weight
		}

		bumpBucket(metrics.ByType, asset.Type.String(), isPlaced)
		bumpBucket(metrics.ByPage, asset.Page, isPlaced)
		bumpBucket(metrics.BySection, sectionOf(asset.AnchorTo), isPlaced)

		if !isPlaced && a.Critical(asset) {
			criticalMissing = append(criticalMissing, critical{id: asset.ID, weight: weight})
		}
	}

	metrics.Overall.Percent = percent(metrics.Overall.Placed, metrics.Overall.Total)
	metrics.WeightedPercent = weightedPercent(placedWeight, totalWeight)
	finishBuckets(metrics.ByType)
	finishBuckets(metrics.ByPage)
	finishBuckets(metrics.BySection)

	sort.SliceStable(criticalMissing, func(i, j int) bool {
		if criticalMissing[i].weight != criticalMissing[j].weight {
			return criticalMissing[i].weight > criticalMissing[j].weight
		}
		return criticalMissing[i].id < criticalMissing[j].id
	})
	for _, c := range criticalMissing {
		metrics.CriticalMissing = append(metrics.CriticalMissing, c.id)
	}

	return metrics
}

// Weight returns the asset's importance: its type's base weight times
// the larger applicable size multiplier.
func (a *CoverageAnalyzer) Weight(asset *model.Asset) float64 {
	base := a.config.ImageWeight
	switch asset.Type {
	case model.AssetTypeVector:
		base = a.config.VectorWeight
	case model.AssetTypeTable:
		base = a.config.TableWeight
	}
	switch {
	case a.prominent(asset):
		return base * a.config.ProminentMultiplier
	case a.large(asset):
		return base * a.config.LargeMultiplier
	}
	return base
}

// Critical reports whether losing this asset should be escalated:
// tables, vectors, and anything large or prominent.
func (a *CoverageAnalyzer) Critical(asset *model.Asset) bool {
	return asset.Type == model.AssetTypeTable ||
		asset.Type == model.AssetTypeVector ||
		a.large(asset) ||
		a.prominent(asset)
}

func (a *CoverageAnalyzer) large(asset *model.Asset) bool {
	return asset.PixelWidth > a.config.LargeDimensionPx ||
		asset.PixelHeight > a.config.LargeDimensionPx
}

func (a *CoverageAnalyzer) prominent(asset *model.Asset) bool {
	return asset.PixelArea() > a.config.ProminentAreaPx
}

// sectionOf extracts the section key from an anchor id: the second
// dot-separated segment, "unknown" when the id has no such segment.
func sectionOf(anchorTo string) string {
	parts := strings.Split(anchorTo, ".")
	if len(parts) < 2 || parts[1] == "" {
		return "unknown"
	}
	return parts[1]
}

func bumpBucket[K comparable](buckets map[K]CoverageBucket, key K, placed bool) {
	b := buckets[key]
	b.Total++
	if placed {
		b.Placed++
	}
	buckets[key] = b
}

func finishBuckets[K comparable](buckets map[K]CoverageBucket) {
	for key, b := range buckets {
		b.Percent = percent(b.Placed, b.Total)
		buckets[key] = b
	}
}

// percent is n over d as a percentage; an empty denominator counts as
// fully covered.
func percent(n, d int) float64 {
	if d == 0 {
		return 100
	}
	return float64(n) / float64(d) * 100
}

func weightedPercent(placed, total float64) float64 {
	if total <= 0 {
		return 100
	}
	return placed / total * 100
}
