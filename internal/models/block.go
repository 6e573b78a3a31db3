package models

import "time"

// BlockType tags a content block with its rendering variant.
type BlockType string

const (
	BlockTypeText    BlockType = "text"
	BlockTypeImage   BlockType = "image"
	BlockTypeVideo   BlockType = "video"
	BlockTypeCard    BlockType = "card"
	BlockTypeGrid    BlockType = "grid"
	BlockTypeCTA     BlockType = "cta"
	BlockTypeHero    BlockType = "hero"
	BlockTypeButton  BlockType = "button"
	BlockTypeDivider BlockType = "divider"
)

// KnownBlockTypes lists every block type the renderer has a dedicated
// variant for. Unknown types still render via the raw fallback.
func KnownBlockTypes() []BlockType {
	return []BlockType{
		BlockTypeText, BlockTypeImage, BlockTypeVideo, BlockTypeCard,
		BlockTypeGrid, BlockTypeCTA, BlockTypeHero, BlockTypeButton,
		BlockTypeDivider,
	}
}

// ContentBlock is one typed unit of page content. Content and Settings are
// JSON text interpreted per block type by the renderer; Position defines the
// render sequence within the page (not unique, ties broken by insertion
// order).
type ContentBlock struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PageID      uint      `gorm:"not null;index" json:"page_id"`
	Type        BlockType `gorm:"type:varchar(20);not null" json:"type"`
	Content     string    `gorm:"type:text" json:"content"`
	Settings    string    `gorm:"type:text" json:"settings"`
	Position    int       `gorm:"not null;default:0;index" json:"position"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
