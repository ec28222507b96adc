package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is a blog article. Views only ever grows, by one per detail view.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:250;not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;size:270;not null" json:"slug"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"author"`
	CategoryID  *uint      `gorm:"index" json:"category_id,omitempty"`
	Category    *Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Status      PostStatus `gorm:"size:10;not null;default:draft;index" json:"status"`
	Views       uint64     `gorm:"not null;default:0" json:"views"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; counts active comments only
	CommentsCount int            `gorm:"->;-:migration" json:"comments_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPublished reports whether the post is visible to readers.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Publish moves the post to the published state, stamping PublishedAt the first time.
func (p *Post) Publish(now time.Time) {
	p.Status = PostStatusPublished
	if p.PublishedAt == nil {
		t := now.UTC()
		p.PublishedAt = &t
	}
}
