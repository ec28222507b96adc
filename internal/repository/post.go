// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tecnopronto/internal/cache"
	"tecnopronto/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post and like data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListPublished(ctx context.Context, categoryID *uint, limit, offset int) ([]*models.Post, int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error)
	IncrementViews(ctx context.Context, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return err
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("title", "content", "category_id", "status", "published_at", "updated_at").
		Updates(post).Error
	if err != nil {
		return err
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("posts.slug = ?", slug).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", slug)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// ListPublished returns one page of published posts, newest first, optionally
// restricted to a category, along with the total number of matches.
func (r *postRepository) ListPublished(ctx context.Context, categoryID *uint, limit, offset int) ([]*models.Post, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("posts.status = ?", models.PostStatusPublished)
		if categoryID != nil {
			db = db.Where("posts.category_id = ?", *categoryID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := r.withDetails(r.db.WithContext(ctx)).
		Scopes(scope).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + strings.ToLower(query) + "%"
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("posts.status = ?", models.PostStatusPublished).
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", like, like).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// IncrementViews adds exactly one view with a single UPDATE, so concurrent
// views are never lost.
func (r *postRepository) IncrementViews(ctx context.Context, postID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Like inserts the (user, post) like. It reports false when the row already
// existed, leaving the table unchanged.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	like := &models.Like{UserID: userID, PostID: postID, CreatedAt: time.Now().UTC()}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Unlike hard-deletes the like and reports whether a row was removed.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// withDetails selects computed like and active comment counts and preloads the author and category.
func (r *postRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Select("posts.*, "+
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.active = ?) AS comments_count, "+
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count", true).
		Preload("User").
		Preload("Category")
}
