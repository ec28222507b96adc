package middleware

import (
	"errors"
	"log/slog"
	"time"

	"tecnopronto/internal/models"
	"tecnopronto/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie is the name of the cookie carrying the session ID.
const SessionCookie = "sessionid"

// SessionConfig configures the Sessions middleware.
type SessionConfig struct {
	Store  session.Store
	TTL    time.Duration
	Secure bool
}

// Sessions loads the visitor's session into c.Locals("session") and saves it
// after the handler returns if it was modified. Unknown or unreadable session
// IDs are replaced with a fresh one. A failed save turns the response into a 500.
func Sessions(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var sess *session.Session
		if id := c.Cookies(SessionCookie); id != "" {
			loaded, err := cfg.Store.Load(ctx, id)
			switch {
			case err == nil:
				sess = loaded
			case errors.Is(err, session.ErrNotFound):
			default:
				Logger.WarnContext(ctx, "failed to load session", slog.String("error", err.Error()))
			}
		}
		if sess == nil {
			sess = session.New(uuid.NewString())
		}
		c.Locals("session", sess)

		err := c.Next()

		if sess.Modified() {
			if saveErr := cfg.Store.Save(ctx, sess); saveErr != nil {
				Logger.ErrorContext(ctx, "failed to save session", slog.String("error", saveErr.Error()))
				// the handler's response assumed the session change stuck
				c.Response().ResetBody()
				return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(saveErr))
			}
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID(),
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				Secure:   cfg.Secure,
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		return err
	}
}

// SessionFrom returns the session loaded by Sessions, if any.
func SessionFrom(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals("session").(*session.Session)
	return s
}
