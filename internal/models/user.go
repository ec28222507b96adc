// Package models contains the blog's domain models and error taxonomy.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Comments and likes made by a User carry its ID.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:254;not null" json:"-"`
	Password  string         `gorm:"not null" json:"-"`
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
