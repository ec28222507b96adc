package server

import (
	"strings"

	"tecnopronto/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts?page=N&q=term
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		page *service.Page
		err  error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		page, err = s.postService.Search(ctx, q, parsePage(c))
	} else {
		page, err = s.postService.ListPublished(ctx, parsePage(c))
	}
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:slug. Unlike the blog detail page it does not count a view.
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(categories)
}

// GetCategoryPosts handles GET /api/categories/:slug/posts?page=N
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	category, page, err := s.postService.ListByCategory(c.UserContext(), c.Params("slug"), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"category":  category,
		"posts":     page.Items,
		"page":      page.Page,
		"next_page": page.NextPage,
		"total":     page.Total,
	})
}

// GetAvailability handles GET /api/availability
func (s *Server) GetAvailability(c *fiber.Ctx) error {
	return c.JSON(s.engine.Status())
}

// GetContactInfo handles GET /api/contact
func (s *Server) GetContactInfo(c *fiber.Ctx) error {
	return c.JSON(s.contactService.Info(c.UserContext()))
}

// SubmitContact handles POST /api/contact
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	var req service.ContactInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.contactService.Submit(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      msg.ID,
		"message": "Thanks for getting in touch, we will reply as soon as possible.",
	})
}
