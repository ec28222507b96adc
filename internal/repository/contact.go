package repository

import (
	"context"

	"tecnopronto/internal/models"

	"gorm.io/gorm"
)

// ContactRepository stores contact page messages.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
