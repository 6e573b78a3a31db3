package models

import (
	"time"

	"gorm.io/gorm"
)

// NewsArticle is an editorial news entry written by staff.
type NewsArticle struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID  *uint      `gorm:"index" json:"category_id,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"size:160;not null;uniqueIndex" json:"slug"`
	Summary     string     `json:"summary"`
	Body        string     `gorm:"type:text" json:"body"`
	IsPublished bool       `gorm:"not null;default:false" json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
