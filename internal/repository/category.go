package repository

import (
	"context"
	"errors"

	"tecnopronto/internal/cache"
	"tecnopronto/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ListWithCounts(ctx context.Context) ([]*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.CategoriesKey())
	return nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Category", slug)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListWithCounts returns every category ordered by name with its published post count.
func (r *categoryRepository) ListWithCounts(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := cache.Aside(ctx, cache.CategoriesKey(), &categories, cache.CategoriesTTL, func() error {
		return r.db.WithContext(ctx).
			Select("categories.*, "+
				"(SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id "+
				"AND posts.status = ? AND posts.deleted_at IS NULL) AS post_count", models.PostStatusPublished).
			Order("categories.name ASC").
			Find(&categories).Error
	})
	return categories, err
}
