package middleware

import (
	"context"
	"log/slog"

	"tecnopronto/internal/actor"
	"tecnopronto/internal/auth"
	"tecnopronto/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// UsernameLookup resolves a user's display name; it may be nil.
type UsernameLookup func(ctx context.Context, userID uint) (string, error)

// ResolveActor sets c.Locals("actor") for every request: an identified user
// when a valid, unrevoked bearer token is present, otherwise a guest bound to
// the request's session. Invalid tokens degrade to a guest rather than failing.
func ResolveActor(secret string, rdb *redis.Client, lookup UsernameLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if token := auth.BearerToken(c.Get(fiber.HeaderAuthorization)); token != "" {
			claims, err := auth.ParseToken(secret, token)
			if err == nil && !isRevoked(ctx, rdb, claims.JTI) {
				u := actor.User{UserID: claims.UserID}
				if lookup != nil {
					if name, err := lookup(ctx, claims.UserID); err == nil {
						u.Username = name
					}
				}
				c.Locals("actor", actor.Actor(u))
				c.Locals("userID", claims.UserID)
				c.Locals("claims", claims)
				c.SetUserContext(context.WithValue(ctx, UserIDKey, claims.UserID))
				return c.Next()
			}
		}

		guest := actor.Guest{}
		if s := SessionFrom(c); s != nil {
			guest.Sess = s
		}
		c.Locals("actor", actor.Actor(guest))
		return c.Next()
	}
}

// isRevoked reports whether the token was logged out. A failed lookup counts
// as revoked so the request degrades to a guest.
func isRevoked(ctx context.Context, rdb *redis.Client, jti string) bool {
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, auth.RevokedKey(jti)).Result()
	if err != nil {
		Logger.WarnContext(ctx, "token revocation check failed", slog.String("error", err.Error()))
		return true
	}
	return n > 0
}

// ActorFrom returns the actor resolved for the request, defaulting to an anonymous guest.
func ActorFrom(c *fiber.Ctx) actor.Actor {
	if a, ok := c.Locals("actor").(actor.Actor); ok {
		return a
	}
	return actor.Anonymous
}

// ClaimsFrom returns the verified token claims of an identified request.
func ClaimsFrom(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals("claims").(*auth.Claims)
	return claims, ok
}

// AuthRequired rejects requests whose actor is not identified.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFrom(c).IsIdentified() {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		return c.Next()
	}
}
