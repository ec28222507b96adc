package repository

import (
	"context"
	"testing"
	"time"

	"tecnopronto/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_ListWithCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "alice")

	golang := &models.Category{Name: "Go", Slug: "go"}
	android := &models.Category{Name: "Android", Slug: "android"}
	require.NoError(t, repo.Create(ctx, golang))
	require.NoError(t, repo.Create(ctx, android))

	published := createPost(t, db, author, "p1", models.PostStatusPublished, time.Now())
	draft := createPost(t, db, author, "p2", models.PostStatusDraft, time.Now())
	require.NoError(t, db.Model(published).Update("category_id", golang.ID).Error)
	require.NoError(t, db.Model(draft).Update("category_id", golang.ID).Error)

	categories, err := repo.ListWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Android", categories[0].Name)
	assert.Equal(t, 0, categories[0].PostCount)
	assert.Equal(t, "Go", categories[1].Name)
	assert.Equal(t, 1, categories[1].PostCount)
}

func TestCategoryRepository_GetBySlugAndExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	cat := &models.Category{Name: "Go", Slug: "go"}
	require.NoError(t, repo.Create(ctx, cat))

	got, err := repo.GetBySlug(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.ID)

	_, err = repo.GetBySlug(ctx, "rust")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	ok, err := repo.Exists(ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, cat.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}
