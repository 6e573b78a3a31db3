package models

import (
	"time"

	"gorm.io/gorm"
)

// Page is a CMS page identified by its slug. The Content column is a JSON
// object of named fields (the historical single-blob payload); structured
// presentation lives in the page's ContentBlocks.
type Page struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Slug        string  `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Title       string  `gorm:"not null" json:"title"`
	Description string  `json:"description"`
	IsPublished bool    `gorm:"not null;default:false" json:"is_published"`
	ParentID    *uint   `gorm:"index" json:"parent_id,omitempty"`
	Parent      *Page   `gorm:"foreignKey:ParentID" json:"-"`
	Content     string  `gorm:"type:text" json:"content"`
	Blocks      []ContentBlock `gorm:"foreignKey:PageID" json:"blocks,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ContentRevision is an append-only snapshot of a page's content at save
// time. Rows are never updated or deleted; they exist for audit/history only.
type ContentRevision struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PageID    uint      `gorm:"not null;index" json:"page_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	EditorID  uint      `gorm:"not null" json:"editor_id"`
	Editor    *User     `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
