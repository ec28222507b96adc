package models

// Category groups posts for navigation.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	// PostCount is computed at query time and counts published posts only
	PostCount int `gorm:"->;-:migration" json:"post_count"`
}
