package anchor

import (
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/tsawler/norma/layout"
	"github.com/tsawler/norma/model"
)

// ErrNoCandidates is returned by NearestBlock when no block with
// usable geometry is available to anchor to.
var ErrNoCandidates = errors.New("anchor: no candidate blocks with geometry")

// Config holds configuration parameters for the anchoring engine.
type Config struct {
	// PreferBelow applies the caption convention of print layouts:
	// when any block sits below the asset, the nearest below block
	// wins even if a block above is strictly closer. Default: true.
	PreferBelow bool

	// AmbiguityMarginPt is how close in points a losing candidate
	// must come to the winner's distance to be recorded as an
	// ambiguous match. Default: 1 point.
	AmbiguityMarginPt float64

	// OverlapThreshold is the fraction of an asset's width that must
	// overlap a column before the block search is narrowed to that
	// column. Default: layout.DefaultOverlapThreshold.
	OverlapThreshold float64

	// RoundTripTolerancePt is the largest per-coordinate drift in
	// points tolerated when an anchored asset's box is normalized
	// into its column and mapped back. Default: 0.01 points.
	RoundTripTolerancePt float64

	// Workers is the number of pages anchored concurrently by
	// AnchorAll. Default: 1.
	Workers int
}

// DefaultConfig returns a Config with sensible defaults for typical
// print layouts.
func DefaultConfig() Config {
	return Config{
		PreferBelow:          true,
		AmbiguityMarginPt:    1.0,
		OverlapThreshold:     layout.DefaultOverlapThreshold,
		RoundTripTolerancePt: 0.01,
		Workers:              1,
	}
}

// Engine anchors assets to their nearest eligible content block.
type Engine struct {
	config   Config
	detector *layout.ColumnDetector
	logger   *zap.Logger
}

// NewEngine creates an Engine with default configuration.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultConfig())
}

// NewEngineWithConfig creates an Engine with custom configuration.
// Invalid numeric values fall back to the defaults; a zero
// AmbiguityMarginPt is kept and flags exact ties only.
func NewEngineWithConfig(config Config) *Engine {
	defaults := DefaultConfig()
	if config.AmbiguityMarginPt < 0 {
		config.AmbiguityMarginPt = defaults.AmbiguityMarginPt
	}
	if config.OverlapThreshold <= 0 {
		config.OverlapThreshold = defaults.OverlapThreshold
	}
	if config.RoundTripTolerancePt <= 0 {
		config.RoundTripTolerancePt = defaults.RoundTripTolerancePt
	}
	if config.Workers < 1 {
		config.Workers = defaults.Workers
	}
	return &Engine{
		config:   config,
		detector: layout.NewColumnDetector(),
		logger:   zap.NewNop(),
	}
}

// WithLogger returns a copy of the engine that logs through logger.
// A nil logger silences the copy.
func (e *Engine) WithLogger(logger *zap.Logger) *Engine {
	clone := *e
	if logger == nil {
		logger = zap.NewNop()
	}
	clone.logger = logger
	return &clone
}

// candidate is one block considered for an anchoring decision.
type candidate struct {
	id    string
	dist  float64
	below bool
}

// NearestBlock selects the single block the asset belongs to.
//
// Blocks strictly below the asset are measured from the asset's bottom
// edge to the block's top edge, blocks strictly above from the block's
// bottom edge to the asset's top edge. A block that overlaps the asset
// vertically is classified above or below by comparing box centers
// (equal centers count as below) and measured center to center. When
// PreferBelow is set the below candidates are preferred as a group
// whenever any exist, so a farther below block can beat a nearer above
// one.
//
// Candidates within AmbiguityMarginPt of the winning distance are
// returned in an AmbiguousMatch; the winner is still chosen, nearest
// first with input order breaking ties. NearestBlock returns
// ErrNoCandidates when no block has usable geometry.
func (e *Engine) NearestBlock(asset model.Asset, blocks []model.ContentBlock) (string, *AmbiguousMatch, error) {
	all := make([]candidate, 0, len(blocks))
	belowCount := 0
	for i := range blocks {
		b := &blocks[i]
		if !b.HasGeometry() {
			continue
		}
		bb := *b.BBox
		var c candidate
		switch {
		case bb.Y0 >= asset.BBox.Y1:
			c = candidate{id: b.ID, dist: bb.Y0 - asset.BBox.Y1, below: true}
		case bb.Y1 <= asset.BBox.Y0:
			c = candidate{id: b.ID, dist: asset.BBox.Y0 - bb.Y1, below: false}
		default:
			d := bb.CenterY() - asset.BBox.CenterY()
			c = candidate{id: b.ID, dist: math.Abs(d), below: d >= 0}
		}
		if c.below {
			belowCount++
		}
		all = append(all, c)
	}
	if len(all) == 0 {
		return "", nil, ErrNoCandidates
	}

	pool := all
	if e.config.PreferBelow && belowCount > 0 {
		pool = make([]candidate, 0, belowCount)
		for _, c := range all {
			if c.below {
				pool = append(pool, c)
			}
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].dist < pool[j].dist
	})
	winner := pool[0]

	var contenders []string
	for _, c := range pool[1:] {
		if c.dist-winner.dist > e.config.AmbiguityMarginPt {
			break
		}
		contenders = append(contenders, c.id)
	}
	var ambiguous *AmbiguousMatch
	if len(contenders) > 0 {
		ambiguous = &AmbiguousMatch{
			AssetID:    asset.ID,
			BlockID:    winner.id,
			Contenders: contenders,
			Distance:   winner.dist,
		}
	}
	return winner.id, ambiguous, nil
}
