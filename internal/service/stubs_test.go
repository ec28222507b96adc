package service

import (
	"context"
	"errors"
	"testing"

	"tecnopronto/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	updateFn         func(context.Context, *models.Post) error
	getBySlugFn      func(context.Context, string) (*models.Post, error)
	slugExistsFn     func(context.Context, string) (bool, error)
	listPublishedFn  func(context.Context, *uint, int, int) ([]*models.Post, int64, error)
	searchFn         func(context.Context, string, int, int) ([]*models.Post, error)
	incrementViewsFn func(context.Context, uint) error
	isLikedFn        func(context.Context, uint, uint) (bool, error)
	likeFn           func(context.Context, uint, uint) (bool, error)
	unlikeFn         func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *postRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}
func (s *postRepoStub) ListPublished(ctx context.Context, categoryID *uint, limit, offset int) ([]*models.Post, int64, error) {
	return s.listPublishedFn(ctx, categoryID, limit, offset)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, postID uint) error {
	return s.incrementViewsFn(ctx, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}

func publishedPost(slug string) *models.Post {
	return &models.Post{ID: 1, Slug: slug, UserID: 10, Status: models.PostStatusPublished}
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Post, error) {
			return publishedPost(slug), nil
		},
		slugExistsFn:     func(_ context.Context, _ string) (bool, error) { return false, nil },
		listPublishedFn:  func(_ context.Context, _ *uint, _, _ int) ([]*models.Post, int64, error) { return nil, 0, nil },
		searchFn:         func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
		incrementViewsFn: func(_ context.Context, _ uint) error { return nil },
		isLikedFn:        func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:           func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn           func(context.Context, *models.Comment) error
	getByIDFn          func(context.Context, uint) (*models.Comment, error)
	listActiveByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateContentFn    func(context.Context, uint, string) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListActiveByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listActiveByPostFn(ctx, postID)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id uint, content string) error {
	return s.updateContentFn(ctx, id, content)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:           func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:          func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listActiveByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateContentFn:    func(_ context.Context, _ uint, _ string) error { return nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn         func(context.Context, *models.Category) error
	getBySlugFn      func(context.Context, string) (*models.Category, error)
	existsFn         func(context.Context, uint) (bool, error)
	listWithCountsFn func(context.Context) ([]*models.Category, error)
}

func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *categoryRepoStub) ListWithCounts(ctx context.Context) ([]*models.Category, error) {
	return s.listWithCountsFn(ctx)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn: func(_ context.Context, _ *models.Category) error { return nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Category, error) {
			return &models.Category{ID: 3, Name: slug, Slug: slug}, nil
		},
		existsFn:         func(_ context.Context, _ uint) (bool, error) { return true, nil },
		listWithCountsFn: func(_ context.Context) ([]*models.Category, error) { return nil, nil },
	}
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeUnauthorized)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeForbidden)
}
