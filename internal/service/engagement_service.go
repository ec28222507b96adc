// Package service implements the blog's use cases on top of the repositories.
package service

import (
	"context"
	"strings"

	"tecnopronto/internal/actor"
	"tecnopronto/internal/models"
	"tecnopronto/internal/observability"
	"tecnopronto/internal/repository"
	"tecnopronto/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// EngagementService owns the like toggle and the comment lifecycle.
type EngagementService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

// LikeResult is the post after a toggle and whether the actor now likes it.
type LikeResult struct {
	Post  *models.Post `json:"post"`
	Liked bool         `json:"liked"`
}

// CommentInput is the comment form. Name and Email are only read for guests.
type CommentInput struct {
	Content string `json:"content" form:"content" validate:"required,max=10000"`
	Name    string `json:"name" form:"name" validate:"max=80"`
	Email   string `json:"email" form:"email" validate:"omitempty,email,max=254"`
}

func (in *CommentInput) normalize() {
	in.Content = strings.TrimSpace(in.Content)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

func NewEngagementService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *EngagementService {
	return &EngagementService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// ToggleLike flips the actor's like on the post identified by slug.
//
// Identified actors are recorded in storage, where the (user, post) unique
// index decides concurrent toggles: the loser gets a CONFLICT error. Guests
// are tracked in their session's liked_posts list and never change the
// stored like count.
func (s *EngagementService) ToggleLike(ctx context.Context, slug string, a actor.Actor) (res *LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "engagement.toggle_like", attribute.String("post.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !a.IsIdentified() {
		sess, ok := actor.SessionOf(a)
		if !ok {
			return nil, models.NewUnauthorizedError("A session is required to like posts")
		}
		ids, _ := sess.Get(actor.LikedPostsKey)
		ids, liked := actor.Toggle(ids, post.ID)
		sess.Set(actor.LikedPostsKey, ids)

		observability.LikesToggled.WithLabelValues(observability.ActorLabel(false), likeState(liked)).Inc()
		return &LikeResult{Post: post, Liked: liked}, nil
	}

	liked, err := s.postRepo.IsLiked(ctx, a.ID(), post.ID)
	if err != nil {
		return nil, err
	}

	if liked {
		if _, err = s.postRepo.Unlike(ctx, a.ID(), post.ID); err != nil {
			return nil, err
		}
	} else {
		inserted, err := s.postRepo.Like(ctx, a.ID(), post.ID)
		if err != nil {
			return nil, err
		}
		if !inserted {
			observability.LikeConflicts.Inc()
			return nil, models.NewConflictError("Like was changed by another request, please retry")
		}
	}

	post, err = s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	observability.LikesToggled.WithLabelValues(observability.ActorLabel(true), likeState(!liked)).Inc()
	return &LikeResult{Post: post, Liked: !liked}, nil
}

func likeState(liked bool) string {
	if liked {
		return "liked"
	}
	return "unliked"
}

// AddComment attaches a new active comment to the post. Identified actors are
// recorded by ID and any guest fields are ignored.
func (s *EngagementService) AddComment(ctx context.Context, slug string, a actor.Actor, in CommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "engagement.add_comment", attribute.String("post.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	in.normalize()
	if a.IsIdentified() {
		in.Name, in.Email = "", ""
	}
	if err = validation.Struct(in); err != nil {
		return nil, err
	}

	comment = &models.Comment{
		PostID:  post.ID,
		Content: in.Content,
		Active:  true,
	}
	if a.IsIdentified() {
		uid := a.ID()
		comment.UserID = &uid
	} else {
		comment.GuestName = in.Name
		comment.GuestEmail = in.Email
	}

	if err = s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.WithLabelValues(observability.ActorLabel(a.IsIdentified())).Inc()

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// UpdateComment replaces the text of a comment. Only the identified user who
// wrote it may edit it; guest comments cannot be edited.
func (s *EngagementService) UpdateComment(ctx context.Context, commentID uint, a actor.Actor, in CommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "engagement.update_comment", attribute.Int64("comment.id", int64(commentID)))
	defer func() { observability.EndSpan(span, err) }()

	comment, err = s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if !a.IsIdentified() || !comment.IsAuthoredBy(a.ID()) {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}

	content := CommentInput{Content: in.Content}
	content.normalize()
	if err = validation.Struct(content); err != nil {
		return nil, err
	}

	if err = s.commentRepo.UpdateContent(ctx, comment.ID, content.Content); err != nil {
		return nil, err
	}
	observability.CommentsUpdated.Inc()

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// FetchComment returns a comment for re-rendering.
func (s *EngagementService) FetchComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, commentID)
}
