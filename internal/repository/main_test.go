package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"tecnopronto/internal/config"
	"tecnopronto/internal/database"
	"tecnopronto/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupTestDB opens a private in-memory sqlite database with the schema migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(&config.Config{
		Env:      "test",
		DBDriver: "sqlite",
		DBPath:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, slug string, status models.PostStatus, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:     slug,
		Slug:      slug,
		Content:   "body of " + slug,
		UserID:    author.ID,
		Status:    status,
		CreatedAt: createdAt,
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}
