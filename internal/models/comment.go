package models

import (
	"encoding/json"
	"time"
)

// AuthorKind distinguishes identified authors from guests.
type AuthorKind string

const (
	AuthorIdentified AuthorKind = "identified"
	AuthorGuest      AuthorKind = "guest"
)

// Author is the resolved author of a comment: either a registered user
// (UserID set) or a guest (Name and Email as typed, possibly empty).
type Author struct {
	Kind     AuthorKind `json:"kind"`
	UserID   uint       `json:"user_id,omitempty"`
	Username string     `json:"username,omitempty"`
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"-"`
}

// Comment is a reader comment on a post. The author is fixed at creation time.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	UserID     *uint     `gorm:"index" json:"-"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	GuestName  string    `gorm:"size:80" json:"-"`
	GuestEmail string    `gorm:"size:254" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Active     bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Author resolves the comment's author variant.
func (c Comment) Author() Author {
	if c.UserID == nil {
		return Author{Kind: AuthorGuest, Name: c.GuestName, Email: c.GuestEmail}
	}
	a := Author{Kind: AuthorIdentified, UserID: *c.UserID}
	if c.User != nil {
		a.Username = c.User.Username
	}
	return a
}

// IsAuthoredBy reports whether the identified user wrote the comment.
// Guest comments are never authored by any user.
func (c Comment) IsAuthoredBy(userID uint) bool {
	return c.UserID != nil && userID != 0 && *c.UserID == userID
}

// MarshalJSON renders the resolved author in place of the raw author columns.
func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        uint      `json:"id"`
		PostID    uint      `json:"post_id"`
		Author    Author    `json:"author"`
		Content   string    `json:"content"`
		Active    bool      `json:"active"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    c.Author(),
		Content:   c.Content,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
}
