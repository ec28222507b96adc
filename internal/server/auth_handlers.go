package server

import (
	"tecnopronto/internal/middleware"
	"tecnopronto/internal/models"
	"tecnopronto/internal/service"

	"github.com/gofiber/fiber/v2"
)

// userResponse is the account as shown to its owner; unlike the public author view it includes the email.
func userResponse(u *models.User) fiber.Map {
	return fiber.Map{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"is_admin":   u.IsAdmin,
		"created_at": u.CreatedAt,
	}
}

func authResponse(res *service.AuthResult) fiber.Map {
	return fiber.Map{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       userResponse(res.User),
	}
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Signup(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse(res))
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Login(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(authResponse(res))
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := middleware.ClaimsFrom(c)
	if err := s.authService.Logout(c.UserContext(), claims); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), middleware.ActorFrom(c).ID())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(userResponse(user))
}
