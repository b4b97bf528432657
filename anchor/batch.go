package anchor

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/norma/layout"
	"github.com/tsawler/norma/model"
)

// AnchorAll anchors the whole asset ledger against the whole block
// list. Assets and blocks are grouped by page, the column structure of
// each page is detected once, and every asset is anchored against the
// blocks of the column that owns it, or the whole page when no column
// does. Each anchored asset's AnchorTo field is written in place,
// exactly once.
//
// Pages degrade independently: failed column detection falls back to a
// page-wide search with a warning, and a page without blocks leaves
// its assets in the unanchored list. With Config.Workers > 1, pages
// are anchored concurrently and the merged report is identical to the
// single-worker run.
func (e *Engine) AnchorAll(assets []model.Asset, blocks []model.ContentBlock) *Report {
	return e.AnchorAllWithColumns(assets, blocks, nil)
}

// AnchorAllWithColumns is AnchorAll with pre-computed columns. Pages
// present in columnsByPage use the given columns as-is; pages absent
// from the map are detected on the fly.
func (e *Engine) AnchorAllWithColumns(assets []model.Asset, blocks []model.ContentBlock, columnsByPage map[int][]layout.Column) *Report {
	pages, assetsByPage := groupAssetsByPage(assets)
	blocksByPage := groupBlocksByPage(blocks)

	reports := make([]*Report, len(pages))
	run := func(i int) {
		page := pages[i]
		reports[i] = e.anchorOnePage(page, assetsByPage[page], blocksByPage[page], columnsByPage)
	}

	if e.config.Workers > 1 && len(pages) > 1 {
		g := new(errgroup.Group)
		g.SetLimit(e.config.Workers)
		for i := range pages {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		// Page workers only write their own slot and return no errors.
		_ = g.Wait()
	} else {
		for i := range pages {
			run(i)
		}
	}

	merged := &Report{}
	for _, r := range reports {
		merged.merge(r)
	}
	e.logger.Info("anchoring run finished",
		zap.Int("pages", len(pages)),
		zap.Int("total", merged.Total),
		zap.Int("anchored", merged.Anchored),
		zap.Int("ambiguous", len(merged.AmbiguousMatches)),
		zap.Int("violations", len(merged.GeometryViolations)))
	return merged
}

// AnchorPage anchors the assets of a single page against its blocks
// and columns, writing AnchorTo in place. Callers that need
// cancellation or custom page handling can loop over pages themselves
// and merge the returned reports.
func (e *Engine) AnchorPage(assets []model.Asset, blocks []model.ContentBlock, columns []layout.Column) *Report {
	ptrs := make([]*model.Asset, len(assets))
	for i := range assets {
		ptrs[i] = &assets[i]
	}
	return e.anchorAssets(ptrs, blocks, columns, nil)
}

// anchorOnePage resolves the page's columns and anchors its assets.
func (e *Engine) anchorOnePage(page int, assets []*model.Asset, blocks []model.ContentBlock, columnsByPage map[int][]layout.Column) *Report {
	var warnings []model.Warning
	columns, provided := columnsByPage[page]
	if !provided {
		var err error
		columns, err = e.detector.Detect(blocks)
		if err != nil {
			columns = nil
			if len(blocks) == 0 {
				warnings = append(warnings, model.Warningf(model.WarnNoBlocksOnPage,
					"page %d has assets but no blocks; nothing to anchor to", page))
			} else {
				warnings = append(warnings, model.Warningf(model.WarnColumnFallback,
					"page %d column detection failed (%v); falling back to page-wide search", page, err))
			}
			e.logger.Warn("column detection degraded",
				zap.Int("page", page),
				zap.Error(err))
		}
	}
	return e.anchorAssets(assets, blocks, columns, warnings)
}

// anchorAssets runs the per-asset decision loop for one page.
func (e *Engine) anchorAssets(assets []*model.Asset, blocks []model.ContentBlock, columns []layout.Column, warnings []model.Warning) *Report {
	report := &Report{Total: len(assets), Warnings: warnings}
	if len(assets) > 0 && len(columns) == 1 && columns[0].Synthetic {
		report.Warnings = append(report.Warnings, model.Warningf(model.WarnSyntheticColumn,
			"page %d has no dense column structure; using one synthetic column", assets[0].Page))
	}

	for _, a := range assets {
		pool := blocks
		var col *layout.Column
		if found, ok := layout.FindAssetColumn(a.BBox, columns, e.config.OverlapThreshold); ok {
			if filtered := filterByColumn(blocks, found); len(filtered) > 0 {
				col = found
				pool = filtered
			}
		}

		blockID, ambiguous, err := e.NearestBlock(*a, pool)
		if err != nil {
			report.UnanchoredAssets = append(report.UnanchoredAssets, a.ID)
			e.logger.Warn("asset not anchored",
				zap.String("asset", a.ID),
				zap.Int("page", a.Page),
				zap.Error(err))
			continue
		}

		a.AnchorTo = blockID
		report.Anchored++
		if ambiguous != nil {
			report.AmbiguousMatches = append(report.AmbiguousMatches, *ambiguous)
		}
		if col != nil {
			e.checkRoundTrip(report, a, col)
		}
		e.logger.Debug("asset anchored",
			zap.String("asset", a.ID),
			zap.String("block", blockID))
	}
	return report
}

// filterByColumn keeps the blocks that are members of the column, in
// input order.
func filterByColumn(blocks []model.ContentBlock, col *layout.Column) []model.ContentBlock {
	members := make(map[string]struct{}, len(col.Members))
	for _, id := range col.Members {
		members[id] = struct{}{}
	}
	filtered := make([]model.ContentBlock, 0, len(col.Members))
	for _, b := range blocks {
		if _, ok := members[b.ID]; ok {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// checkRoundTrip normalizes the asset's box into its column, maps it
// back, and records a violation when the result drifts beyond the
// configured tolerance.
func (e *Engine) checkRoundTrip(report *Report, a *model.Asset, col *layout.Column) {
	report.RoundTripChecked++

	n, err := col.Normalize(a.BBox)
	if err != nil {
		report.GeometryViolations = append(report.GeometryViolations, GeometryViolation{
			AssetID: a.ID,
			Detail:  "normalize failed: " + err.Error(),
		})
		return
	}
	back, err := col.Denormalize(n)
	if err != nil {
		report.GeometryViolations = append(report.GeometryViolations, GeometryViolation{
			AssetID: a.ID,
			Detail:  "denormalize failed: " + err.Error(),
		})
		return
	}

	drift := maxCoordinateDrift(a.BBox, back)
	if drift > e.config.RoundTripTolerancePt {
		report.GeometryViolations = append(report.GeometryViolations, GeometryViolation{
			AssetID: a.ID,
			Drift:   drift,
			Detail:  "normalized box did not round-trip",
		})
		e.logger.Warn("round-trip check failed",
			zap.String("asset", a.ID),
			zap.Float64("drift", drift))
	}
}

func maxCoordinateDrift(a, b model.BBox) float64 {
	drift := math.Abs(a.X0 - b.X0)
	for _, d := range [...]float64{a.Y0 - b.Y0, a.X1 - b.X1, a.Y1 - b.Y1} {
		if v := math.Abs(d); v > drift {
			drift = v
		}
	}
	return drift
}

func groupAssetsByPage(assets []model.Asset) ([]int, map[int][]*model.Asset) {
	byPage := make(map[int][]*model.Asset)
	for i := range assets {
		a := &assets[i]
		byPage[a.Page] = append(byPage[a.Page], a)
	}
	pages := make([]int, 0, len(byPage))
	for page := range byPage {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages, byPage
}

func groupBlocksByPage(blocks []model.ContentBlock) map[int][]model.ContentBlock {
	byPage := make(map[int][]model.ContentBlock)
	for _, b := range blocks {
		byPage[b.Page] = append(byPage[b.Page], b)
	}
	return byPage
}
