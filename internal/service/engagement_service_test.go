package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tecnopronto/internal/actor"
	"tecnopronto/internal/models"
	"tecnopronto/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = actor.User{UserID: 10, Username: "alice"}

func TestEngagementService_ToggleLike_Identified(t *testing.T) {
	t.Parallel()

	t.Run("like when not yet liked", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		var likedBy uint
		postRepo.likeFn = func(_ context.Context, userID, _ uint) (bool, error) {
			likedBy = userID
			return true, nil
		}
		postRepo.unlikeFn = func(_ context.Context, _, _ uint) (bool, error) {
			t.Error("unlike must not be called")
			return false, nil
		}
		svc := NewEngagementService(postRepo, noopCommentRepo())

		res, err := svc.ToggleLike(context.Background(), "hello", alice)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, uint(10), likedBy)
		assert.Equal(t, "hello", res.Post.Slug)
	})

	t.Run("unlike when already liked", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.isLikedFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
		unliked := false
		postRepo.unlikeFn = func(_ context.Context, _, _ uint) (bool, error) {
			unliked = true
			return true, nil
		}
		postRepo.likeFn = func(_ context.Context, _, _ uint) (bool, error) {
			t.Error("like must not be called")
			return false, nil
		}
		svc := NewEngagementService(postRepo, noopCommentRepo())

		res, err := svc.ToggleLike(context.Background(), "hello", alice)
		require.NoError(t, err)
		assert.False(t, res.Liked)
		assert.True(t, unliked)
	})

	t.Run("returns refreshed like count", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		calls := 0
		postRepo.getBySlugFn = func(_ context.Context, slug string) (*models.Post, error) {
			calls++
			p := publishedPost(slug)
			p.LikesCount = calls - 1
			return p, nil
		}
		svc := NewEngagementService(postRepo, noopCommentRepo())

		res, err := svc.ToggleLike(context.Background(), "hello", alice)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 1, res.Post.LikesCount)
	})

	t.Run("lost race is a conflict", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.likeFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }
		svc := NewEngagementService(postRepo, noopCommentRepo())

		_, err := svc.ToggleLike(context.Background(), "hello", alice)
		assertAppError(t, err, models.CodeConflict)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("db down")
		postRepo := noopPostRepo()
		postRepo.isLikedFn = func(_ context.Context, _, _ uint) (bool, error) { return false, boom }
		svc := NewEngagementService(postRepo, noopCommentRepo())

		_, err := svc.ToggleLike(context.Background(), "hello", alice)
		assert.ErrorIs(t, err, boom)
	})
}

func TestEngagementService_ToggleLike_Guest(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.isLikedFn = func(_ context.Context, _, _ uint) (bool, error) {
		t.Error("guests never touch the likes table")
		return false, nil
	}
	postRepo.likeFn = func(_ context.Context, _, _ uint) (bool, error) {
		t.Error("guests never touch the likes table")
		return false, nil
	}
	svc := NewEngagementService(postRepo, noopCommentRepo())
	sess := session.New("guest-session")
	guest := actor.Guest{Sess: sess}
	ctx := context.Background()

	res, err := svc.ToggleLike(ctx, "hello", guest)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.True(t, sess.Modified())
	ids, ok := sess.Get(actor.LikedPostsKey)
	require.True(t, ok)
	assert.Equal(t, []uint{1}, ids)

	res, err = svc.ToggleLike(ctx, "hello", guest)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	ids, _ = sess.Get(actor.LikedPostsKey)
	assert.Empty(t, ids)
}

func TestEngagementService_ToggleLike_Errors(t *testing.T) {
	t.Parallel()

	t.Run("guest without session", func(t *testing.T) {
		t.Parallel()
		svc := NewEngagementService(noopPostRepo(), noopCommentRepo())
		_, err := svc.ToggleLike(context.Background(), "hello", actor.Anonymous)
		assertUnauthorizedError(t, err)
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getBySlugFn = func(_ context.Context, slug string) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		svc := NewEngagementService(postRepo, noopCommentRepo())
		_, err := svc.ToggleLike(context.Background(), "nope", alice)
		assertAppError(t, err, models.CodeNotFound)
	})
}

func TestEngagementService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, _ *models.Comment) error {
		t.Error("invalid comments must not be stored")
		return nil
	}
	svc := NewEngagementService(noopPostRepo(), commentRepo)
	guest := actor.Guest{Sess: session.New("s")}

	tests := []struct {
		name  string
		input CommentInput
	}{
		{"empty content", CommentInput{}},
		{"whitespace content", CommentInput{Content: "   \n\t"}},
		{"content too long", CommentInput{Content: strings.Repeat("x", 10001)}},
		{"bad guest email", CommentInput{Content: "hi", Email: "not-an-email"}},
		{"guest name too long", CommentInput{Content: "hi", Name: strings.Repeat("n", 81)}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.AddComment(context.Background(), "hello", guest, tt.input)
			assertValidationError(t, err)
		})
	}
}

func TestEngagementService_AddComment_Identified(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	var stored *models.Comment
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		stored = c
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return stored, nil
	}
	svc := NewEngagementService(noopPostRepo(), commentRepo)

	comment, err := svc.AddComment(context.Background(), "hello", alice, CommentInput{
		Content: "  nice post  ",
		Name:    "ignored",
		Email:   "ignored@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), comment.ID)
	assert.Equal(t, "nice post", comment.Content)
	assert.True(t, comment.Active)
	require.NotNil(t, comment.UserID)
	assert.Equal(t, uint(10), *comment.UserID)
	assert.Empty(t, comment.GuestName)
	assert.Empty(t, comment.GuestEmail)
	assert.Equal(t, models.AuthorIdentified, comment.Author().Kind)
}

func TestEngagementService_AddComment_Guest(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	var stored *models.Comment
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 7
		stored = c
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return stored, nil }
	svc := NewEngagementService(noopPostRepo(), commentRepo)

	comment, err := svc.AddComment(context.Background(), "hello", actor.Anonymous, CommentInput{
		Content: "hello",
		Name:    "Mario",
		Email:   "mario@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, comment.UserID)
	assert.Equal(t, "Mario", comment.GuestName)
	assert.Equal(t, "mario@example.com", comment.GuestEmail)
	assert.Equal(t, uint(1), comment.PostID)
}

func TestEngagementService_AddComment_UnknownPost(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getBySlugFn = func(_ context.Context, slug string) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", slug)
	}
	svc := NewEngagementService(postRepo, noopCommentRepo())
	_, err := svc.AddComment(context.Background(), "missing", alice, CommentInput{Content: "hi"})
	assertAppError(t, err, models.CodeNotFound)
}

func TestEngagementService_UpdateComment(t *testing.T) {
	t.Parallel()

	authorID := uint(10)
	identifiedComment := func() *models.Comment {
		return &models.Comment{ID: 5, PostID: 1, UserID: &authorID, Content: "before", Active: true}
	}
	guestComment := func() *models.Comment {
		return &models.Comment{ID: 6, PostID: 1, GuestName: "Guest", Content: "before", Active: true}
	}

	tests := []struct {
		name    string
		comment func() *models.Comment
		actor   actor.Actor
		content string
		code    string
	}{
		{"other user", identifiedComment, actor.User{UserID: 11}, "after", models.CodeForbidden},
		{"guest on identified comment", identifiedComment, actor.Guest{Sess: session.New("s")}, "after", models.CodeForbidden},
		{"guest comment is never editable", guestComment, actor.Guest{Sess: session.New("s")}, "after", models.CodeForbidden},
		{"user on guest comment", guestComment, alice, "after", models.CodeForbidden},
		{"empty content", identifiedComment, alice, "  ", models.CodeValidation},
		{"content too long", identifiedComment, alice, strings.Repeat("x", 10001), models.CodeValidation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			commentRepo := noopCommentRepo()
			commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return tt.comment(), nil }
			commentRepo.updateContentFn = func(_ context.Context, _ uint, _ string) error {
				t.Error("rejected updates must not write")
				return nil
			}
			svc := NewEngagementService(noopPostRepo(), commentRepo)

			_, err := svc.UpdateComment(context.Background(), 5, tt.actor, CommentInput{Content: tt.content})
			assertAppError(t, err, tt.code)
		})
	}

	t.Run("author updates content only", func(t *testing.T) {
		t.Parallel()
		current := identifiedComment()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			c := *current
			return &c, nil
		}
		commentRepo.updateContentFn = func(_ context.Context, id uint, content string) error {
			assert.Equal(t, uint(5), id)
			current.Content = content
			return nil
		}
		svc := NewEngagementService(noopPostRepo(), commentRepo)

		updated, err := svc.UpdateComment(context.Background(), 5, alice, CommentInput{
			Content: " after ",
			Name:    "sneaky",
		})
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Content)
		assert.Equal(t, uint(5), updated.ID)
		require.NotNil(t, updated.UserID)
		assert.Equal(t, authorID, *updated.UserID)
		assert.Empty(t, updated.GuestName)
	})

	t.Run("missing comment", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		svc := NewEngagementService(noopPostRepo(), commentRepo)
		_, err := svc.UpdateComment(context.Background(), 99, alice, CommentInput{Content: "x"})
		assertAppError(t, err, models.CodeNotFound)
	})
}

func TestEngagementService_FetchComment(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		if id == 1 {
			return &models.Comment{ID: 1, Content: "hi"}, nil
		}
		return nil, models.NewNotFoundError("Comment", id)
	}
	svc := NewEngagementService(noopPostRepo(), commentRepo)

	c, err := svc.FetchComment(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "hi", c.Content)

	_, err = svc.FetchComment(context.Background(), 2)
	assertAppError(t, err, models.CodeNotFound)
}
