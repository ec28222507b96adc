package server

import (
	"context"
	"log/slog"
	"time"

	"tecnopronto/internal/middleware"
	"tecnopronto/internal/models"
	"tecnopronto/internal/notifications"
)

const (
	EventPostReactionUpdated = "post_reaction_updated"
	EventCommentCreated      = "comment_created"
	EventCommentUpdated      = "comment_updated"
)

// publishPostEvent fans an event out to the post's websocket subscribers. With
// Redis every instance, this one included, receives it through the subscriber;
// without Redis, or when publishing fails, it is delivered to local clients directly.
func (s *Server) publishPostEvent(ctx context.Context, postID uint, eventType string, payload map[string]interface{}) {
	message, err := notifications.Encode(eventType, payload)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode realtime event",
			slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}

	if s.notifier.Enabled() {
		err := s.notifier.PublishPost(ctx, postID, message)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "realtime publish failed, delivering locally",
			slog.String("type", eventType), slog.String("error", err.Error()))
	}
	s.hub.Publish(postID, message)
}

func (s *Server) publishReaction(ctx context.Context, post *models.Post) {
	s.publishPostEvent(ctx, post.ID, EventPostReactionUpdated, map[string]interface{}{
		"post_id":        post.ID,
		"slug":           post.Slug,
		"likes_count":    post.LikesCount,
		"comments_count": post.CommentsCount,
		"updated_at":     time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) publishComment(ctx context.Context, eventType string, comment *models.Comment) {
	s.publishPostEvent(ctx, comment.PostID, eventType, map[string]interface{}{
		"post_id": comment.PostID,
		"comment": comment,
	})
}
