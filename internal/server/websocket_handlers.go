package server

import (
	"log/slog"

	"tecnopronto/internal/middleware"
	"tecnopronto/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests and resolves ?post=<slug> to
// the post being watched. Without ?post the subscriber receives every post's events.
func (s *Server) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("WebSocket upgrade required"))
		}

		var postID uint
		if slug := c.Query("post"); slug != "" {
			post, err := s.postService.GetPost(c.UserContext(), slug)
			if err != nil {
				return respondServiceError(c, err)
			}
			postID = post.ID
		}
		c.Locals("postID", postID)
		return c.Next()
	}
}

// WebSocketHandler streams like and comment events to the subscriber.
func (s *Server) WebSocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		postID, _ := conn.Locals("postID").(uint)

		client, err := s.hub.Register(postID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration rejected",
				slog.Uint64("post_id", uint64(postID)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
