package model

// AssetType classifies a visual asset.
type AssetType int

const (
	AssetTypeUnknown AssetType = iota
	AssetTypeImage
	AssetTypeVector
	AssetTypeTable
)

func (at AssetType) String() string {
	switch at {
	case AssetTypeImage:
		return "image"
	case AssetTypeVector:
		return "vector"
	case AssetTypeTable:
		return "table"
	default:
		return "unknown"
	}
}

// Asset is a visual asset from the asset-extraction stage. Geometry is fixed
// at extraction time; AnchorTo starts empty and is assigned exactly once by
// the anchoring engine. PixelWidth and PixelHeight carry the intrinsic
// raster size when known (0 = unknown) and feed coverage weighting.
type Asset struct {
	ID          string    `json:"id"`
	Type        AssetType `json:"type"`
	Page        int       `json:"page"`
	BBox        BBox      `json:"bbox"`
	PixelWidth  int       `json:"pixel_width,omitempty"`
	PixelHeight int       `json:"pixel_height,omitempty"`
	AnchorTo    string    `json:"anchor_to,omitempty"`
}

// Anchored reports whether the asset has been assigned an anchor block.
func (a *Asset) Anchored() bool {
	return a != nil && a.AnchorTo != ""
}

// PixelArea returns the raster area in square pixels, 0 when unknown.
func (a *Asset) PixelArea() int {
	if a == nil {
		return 0
	}
	return a.PixelWidth * a.PixelHeight
}

// PlacedLabel is one placement record from the layout-automation stage: the
// only channel through which "actual" geometry enters QA. Labels without a
// usable bbox are ignored by the checks, never treated as errors.
type PlacedLabel struct {
	AssetID string `json:"asset_id"`
	BBox    *BBox  `json:"bbox_placed,omitempty"`
}

// HasGeometry reports whether the label carries a usable bounding box.
func (l *PlacedLabel) HasGeometry() bool {
	return l != nil && l.BBox != nil && l.BBox.IsValid()
}
