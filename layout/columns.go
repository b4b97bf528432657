package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/norma/model"
)

var (
	// ErrNoBlocks is returned by Detect when the input slice is empty.
	ErrNoBlocks = errors.New("layout: no blocks to detect columns from")

	// ErrNoUsableGeometry is returned by Detect when no input block
	// carries a well-formed bounding box.
	ErrNoUsableGeometry = errors.New("layout: no blocks with usable geometry")
)

// Column is one vertical band of content on a page. It holds the
// union of its member blocks' bounding boxes and the IDs of those
// members, in input order.
//
// A Column is constructed once by the detector and never modified
// afterwards; treat its fields as read-only.
type Column struct {
	// Index is the column's position on the page, 0 for the leftmost.
	Index int `json:"index"`

	// BBox is the union of the member blocks' bounding boxes.
	BBox model.BBox `json:"bbox"`

	// Members lists the IDs of the blocks assigned to this column.
	Members []string `json:"members"`

	// Synthetic marks a column produced by the fallback that spans
	// every block because no dense cluster survived.
	Synthetic bool `json:"synthetic,omitempty"`
}

// ColumnConfig holds configuration parameters for column detection.
type ColumnConfig struct {
	// ClusterRadius is the maximum horizontal distance in points
	// between block centers that still counts as the same column.
	// Default: 30 points.
	ClusterRadius float64

	// MinClusterSize is the minimum number of blocks whose centers
	// must fall within ClusterRadius of one of them before they form
	// a column on their own. Default: 3.
	MinClusterSize int

	// MinColumnWidth is the minimum width in points for a detected
	// column. Narrower clusters are dissolved and their blocks
	// reassigned to the surviving columns. Default: 50 points.
	MinColumnWidth float64
}

// DefaultColumnConfig returns a ColumnConfig with sensible defaults
// for typical print layouts.
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		ClusterRadius:  30.0,
		MinClusterSize: 3,
		MinColumnWidth: 50.0,
	}
}

// ColumnDetector detects the column structure of a page from the
// bounding boxes of its content blocks.
type ColumnDetector struct {
	config ColumnConfig
}

// NewColumnDetector creates a ColumnDetector with default configuration.
func NewColumnDetector() *ColumnDetector {
	return NewColumnDetectorWithConfig(DefaultColumnConfig())
}

// NewColumnDetectorWithConfig creates a ColumnDetector with custom
// configuration. Non-positive values fall back to the defaults.
func NewColumnDetectorWithConfig(config ColumnConfig) *ColumnDetector {
	defaults := DefaultColumnConfig()
	if config.ClusterRadius <= 0 {
		config.ClusterRadius = defaults.ClusterRadius
	}
	if config.MinClusterSize <= 0 {
		config.MinClusterSize = defaults.MinClusterSize
	}
	if config.MinColumnWidth <= 0 {
		config.MinColumnWidth = defaults.MinColumnWidth
	}
	return &ColumnDetector{config: config}
}

// Detect groups the given blocks into columns by clustering the
// horizontal centers of their bounding boxes. Every block with usable
// geometry ends up in exactly one column; blocks without geometry are
// ignored. The returned columns are sorted left to right and indexed
// from zero.
//
// Detect returns ErrNoBlocks for an empty input and ErrNoUsableGeometry
// when no block has a well-formed bounding box. When the blocks form no
// dense cluster at all, Detect degrades to a single column spanning
// every usable block rather than failing.
func (d *ColumnDetector) Detect(blocks []model.ContentBlock) ([]Column, error) {
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}

	usable := make([]model.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.HasGeometry() {
			usable = append(usable, b)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoUsableGeometry
	}

	clusters, noise := d.clusterCenters(usable)

	// Dissolve clusters too narrow to be real columns; their members
	// rejoin the unclustered pool.
	builders := make([]*columnBuilder, 0, len(clusters))
	for _, members := range clusters {
		cb := &columnBuilder{}
		for _, idx := range members {
			cb.add(idx, *usable[idx].BBox)
		}
		if cb.bounds.Width() < d.config.MinColumnWidth {
			noise = append(noise, members...)
			continue
		}
		builders = append(builders, cb)
	}

	if len(builders) == 0 {
		// Nothing dense enough survived. One synthetic column holds
		// every usable block so downstream stages always have a frame
		// to work in.
		cb := &columnBuilder{synthetic: true}
		for idx := range usable {
			cb.add(idx, *usable[idx].BBox)
		}
		builders = append(builders, cb)
	} else {
		d.foldNoise(builders, noise, usable)
	}

	if err := checkPartition(builders, len(usable)); err != nil {
		return nil, fmt.Errorf("layout: column partition violated: %w", err)
	}

	columns := make([]Column, len(builders))
	for i, cb := range builders {
		columns[i] = cb.build(usable)
	}
	sort.SliceStable(columns, func(a, b int) bool {
		return columns[a].BBox.CenterX() < columns[b].BBox.CenterX()
	})
	for i := range columns {
		columns[i].Index = i
	}
	return columns, nil
}

// clusterCenters runs density-based clustering over the horizontal
// centers of the usable blocks. It returns one slice of block indices
// per cluster, each in left-to-right center order, plus the indices
// that joined no cluster.
func (d *ColumnDetector) clusterCenters(usable []model.ContentBlock) (clusters [][]int, noise []int) {
	n := len(usable)
	centers := make([]float64, n)
	for i, b := range usable {
		centers[i] = b.BBox.CenterX()
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return centers[order[a]] < centers[order[b]]
	})

	// With the centers sorted, the neighborhood of a point is a
	// contiguous run of sorted positions.
	neighborhood := func(p int) (lo, hi int) {
		c := centers[order[p]]
		lo, hi = p, p
		for lo > 0 && c-centers[order[lo-1]] <= d.config.ClusterRadius {
			lo--
		}
		for hi < n-1 && centers[order[hi+1]]-c <= d.config.ClusterRadius {
			hi++
		}
		return lo, hi
	}

	const unclaimed = -1
	cluster := make([]int, n)
	for i := range cluster {
		cluster[i] = unclaimed
	}
	visited := make([]bool, n)
	clusterCount := 0

	for p := 0; p < n; p++ {
		if visited[p] {
			continue
		}
		visited[p] = true
		lo, hi := neighborhood(p)
		if hi-lo+1 < d.config.MinClusterSize {
			// Not dense here. The point stays unclaimed unless a
			// cluster seeded elsewhere reaches it as a border point.
			continue
		}
		id := clusterCount
		clusterCount++
		cluster[p] = id
		queue := make([]int, 0, hi-lo+1)
		for q := lo; q <= hi; q++ {
			if q != p {
				queue = append(queue, q)
			}
		}
		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]
			if cluster[q] == unclaimed {
				cluster[q] = id
			} else if cluster[q] != id {
				continue
			}
			if visited[q] {
				continue
			}
			visited[q] = true
			qlo, qhi := neighborhood(q)
			if qhi-qlo+1 >= d.config.MinClusterSize {
				for r := qlo; r <= qhi; r++ {
					if cluster[r] == unclaimed || !visited[r] {
						queue = append(queue, r)
					}
				}
			}
		}
	}

	clusters = make([][]int, clusterCount)
	for p := 0; p < n; p++ {
		idx := order[p]
		if id := cluster[p]; id != unclaimed {
			clusters[id] = append(clusters[id], idx)
		} else {
			noise = append(noise, idx)
		}
	}
	return clusters, noise
}

// foldNoise assigns each unclustered block to an existing column: the
// column whose bounds share the most horizontal overlap with the block,
// or the nearest column center when nothing overlaps. Assignment is
// judged against the dense-cluster bounds rather than bounds grown by
// earlier assignments, so the outcome does not depend on the order the
// blocks are folded in.
func (d *ColumnDetector) foldNoise(builders []*columnBuilder, noise []int, usable []model.ContentBlock) {
	snapshot := make([]model.BBox, len(builders))
	for i, cb := range builders {
		snapshot[i] = cb.bounds
	}
	for _, idx := range noise {
		bb := *usable[idx].BBox
		target := 0
		bestOverlap := snapshot[0].HorizontalOverlap(bb)
		for i := 1; i < len(snapshot); i++ {
			if ov := snapshot[i].HorizontalOverlap(bb); ov > bestOverlap {
				bestOverlap = ov
				target = i
			}
		}
		if bestOverlap <= 0 {
			target = 0
			bestDist := math.Abs(snapshot[0].CenterX() - bb.CenterX())
			for i := 1; i < len(snapshot); i++ {
				if dist := math.Abs(snapshot[i].CenterX() - bb.CenterX()); dist < bestDist {
					bestDist = dist
					target = i
				}
			}
		}
		builders[target].add(idx, bb)
	}
}

// columnBuilder accumulates member indices and bounds for one column
// while detection is still deciding who belongs where. The immutable
// Column is constructed only once membership is final.
type columnBuilder struct {
	bounds    model.BBox
	members   []int
	hasBounds bool
	synthetic bool
}

func (cb *columnBuilder) add(idx int, bb model.BBox) {
	if cb.hasBounds {
		cb.bounds = cb.bounds.Union(bb)
	} else {
		cb.bounds = bb
		cb.hasBounds = true
	}
	cb.members = append(cb.members, idx)
}

func (cb *columnBuilder) build(usable []model.ContentBlock) Column {
	sort.Ints(cb.members)
	ids := make([]string, len(cb.members))
	for i, idx := range cb.members {
		ids[i] = usable[idx].ID
	}
	return Column{BBox: cb.bounds, Members: ids, Synthetic: cb.synthetic}
}

// checkPartition verifies that every usable block landed in exactly one
// column. Detection assigns each block exactly once by construction, so
// a failure here is a bug rather than bad input.
func checkPartition(builders []*columnBuilder, total int) error {
	seen := make([]bool, total)
	for _, cb := range builders {
		for _, idx := range cb.members {
			if seen[idx] {
				return fmt.Errorf("block %d assigned to more than one column", idx)
			}
			seen[idx] = true
		}
	}
	for idx, ok := range seen {
		if !ok {
			return fmt.Errorf("block %d assigned to no column", idx)
		}
	}
	return nil
}
