package server

import (
	"tecnopronto/internal/middleware"
	"tecnopronto/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPostsPage handles GET /blog/posts?page=N, the infinite-scroll listing.
func (s *Server) ListPostsPage(c *fiber.Ctx) error {
	page, err := s.postService.ListPublished(c.UserContext(), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts":    page.Items,
		"page":     page.Page,
		"next_url": nextURL(page.NextPage),
	})
}

// CategoryPage handles GET /blog/category/:slug?page=N
func (s *Server) CategoryPage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	category, page, err := s.postService.ListByCategory(ctx, c.Params("slug"), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	categories, err := s.categoryService.List(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"category":   category,
		"categories": categories,
		"posts":      page.Items,
		"page":       page.Page,
		"next_url":   nextURL(page.NextPage),
	})
}

// PostDetail handles GET /blog/post/:slug. Each call counts one view.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	detail, err := s.postService.ViewPost(ctx, c.Params("slug"), middleware.ActorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	categories, err := s.categoryService.List(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"post":         detail.Post,
		"comments":     detail.Comments,
		"liked":        detail.Liked,
		"categories":   categories,
		"availability": s.engine.Status(),
	})
}

// ToggleLike handles POST /blog/like/:slug
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	a := middleware.ActorFrom(c)

	res, err := s.engagementService.ToggleLike(ctx, c.Params("slug"), a)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Guest likes live in the session and leave the stored count unchanged.
	if a.IsIdentified() {
		s.publishReaction(ctx, res.Post)
	}

	return c.JSON(fiber.Map{
		"post_id":     res.Post.ID,
		"slug":        res.Post.Slug,
		"liked":       res.Liked,
		"likes_count": res.Post.LikesCount,
	})
}

// AddComment handles POST /blog/post/:slug/comment
func (s *Server) AddComment(c *fiber.Ctx) error {
	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	comment, err := s.engagementService.AddComment(ctx, c.Params("slug"), middleware.ActorFrom(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishComment(ctx, EventCommentCreated, comment)
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// CommentEdit handles GET /blog/comment/:id, returning the comment for the edit form.
func (s *Server) CommentEdit(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.engagementService.FetchComment(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	a := middleware.ActorFrom(c)
	return c.JSON(fiber.Map{
		"comment":  comment,
		"can_edit": a.IsIdentified() && comment.IsAuthoredBy(a.ID()),
	})
}

// UpdateComment handles POST /blog/comment/:id/update
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	comment, err := s.engagementService.UpdateComment(ctx, id, middleware.ActorFrom(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishComment(ctx, EventCommentUpdated, comment)
	return c.JSON(comment)
}

// CommentItem handles GET /blog/comment-item/:id, used to re-render a comment after editing is cancelled.
func (s *Server) CommentItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.engagementService.FetchComment(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// CreatePost handles POST /blog/create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), middleware.ActorFrom(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// EditPost handles POST /blog/post/:slug/edit
func (s *Server) EditPost(c *fiber.Ctx) error {
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), middleware.ActorFrom(c), c.Params("slug"), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}
