package model

// BlockType classifies a content block reported by the extraction stage.
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeParagraph
	BlockTypeHeading
	BlockTypeCaption
	BlockTypeList
	BlockTypeFootnote
)

func (bt BlockType) String() string {
	switch bt {
	case BlockTypeParagraph:
		return "paragraph"
	case BlockTypeHeading:
		return "heading"
	case BlockTypeCaption:
		return "caption"
	case BlockTypeList:
		return "list"
	case BlockTypeFootnote:
		return "footnote"
	default:
		return "unknown"
	}
}

// ContentBlock is a text block on a page as reported by the extraction
// stage. BBox is optional: blocks without geometry are excluded from all
// spatial operations (column detection, anchoring).
type ContentBlock struct {
	ID           string    `json:"id"`
	Type         BlockType `json:"type"`
	BBox         *BBox     `json:"bbox,omitempty"`
	Page         int       `json:"page"`
	ReadingOrder int       `json:"reading_order"`
}

// HasGeometry reports whether the block carries a usable bounding box.
func (b *ContentBlock) HasGeometry() bool {
	return b != nil && b.BBox != nil
}
