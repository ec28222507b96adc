package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tecnopronto/internal/auth"
	"tecnopronto/internal/config"
	"tecnopronto/internal/database"
	"tecnopronto/internal/middleware"
	"tecnopronto/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
	rdb *redis.Client
}

func testConfig(t *testing.T) *config.Config {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return &config.Config{
		Env:                "test",
		Port:               "0",
		JWTSecret:          testSecret,
		DBDriver:           "sqlite",
		DBPath:             fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		TimeZone:           "Europe/Rome",
		AvailabilityLocale: "en",
		SessionTTLHours:    24,
		PostsPageSize:      2,
		AllowedOrigins:     "http://localhost:5173",
		SupportEmail:       "support@example.com",
		SupportNumber:      "+39 000 000 0000",
	}
}

// newTestEnv builds a server on a private sqlite database. withRedis attaches a miniredis instance.
func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()
	cfg := testConfig(t)

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{db: db}
	if withRedis {
		env.mr = miniredis.RunT(t)
		env.rdb = redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
		t.Cleanup(func() { _ = env.rdb.Close() })
	}

	env.srv, err = NewServerWithDeps(cfg, db, env.rdb)
	require.NoError(t, err)
	env.app = env.srv.NewApp()
	return env
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) {
		if c != nil {
			r.AddCookie(c)
		}
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	token, _, err := auth.IssueToken(testSecret, u.ID, time.Now())
	require.NoError(t, err)
	return token
}

func (e *testEnv) createPost(t *testing.T, author *models.User, slug string, status models.PostStatus, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:     strings.ReplaceAll(slug, "-", " "),
		Slug:      slug,
		Content:   "body of " + slug,
		UserID:    author.ID,
		Status:    status,
		CreatedAt: createdAt,
	}
	if status == models.PostStatusPublished {
		p.Publish(createdAt)
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}
