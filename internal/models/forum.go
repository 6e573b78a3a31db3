package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups forum threads. Deleting a category with threads is
// rejected at the service layer.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:120;not null" json:"name"`
	Slug        string `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Description string `json:"description"`
	Position    int    `gorm:"not null;default:0" json:"position"`
	// ThreadCount is not persisted; computed at query time
	ThreadCount int       `gorm:"->" json:"thread_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Thread is a forum topic inside a category.
type Thread struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AuthorID   uint     `gorm:"not null;index" json:"author_id"`
	Author     *User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title      string   `gorm:"not null" json:"title"`
	Slug       string   `gorm:"size:160;not null;index" json:"slug"`
	Body       string   `gorm:"type:text;not null" json:"body"`
	IsPinned   bool     `gorm:"not null;default:false" json:"is_pinned"`
	IsLocked   bool     `gorm:"not null;default:false" json:"is_locked"`
	Tags       []Tag    `gorm:"many2many:thread_tags" json:"tags,omitempty"`
	// Score is not persisted; upvotes minus downvotes computed at query time
	Score int `gorm:"->" json:"score"`
	// PostCount is not persisted; computed at query time
	PostCount int            `gorm:"->" json:"post_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Post is a reply inside a thread.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ThreadID  uint           `gorm:"not null;index" json:"thread_id"`
	Thread    *Thread        `gorm:"foreignKey:ThreadID" json:"-"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Comment is a short reply attached to a single forum post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	Post      *Post          `gorm:"foreignKey:PostID" json:"-"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ThreadVote records one user's up or down vote on a thread.
// Value is +1 or -1; re-voting overwrites the previous value.
type ThreadVote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ThreadID  uint      `gorm:"primaryKey;autoIncrement:false" json:"thread_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
