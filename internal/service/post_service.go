package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tecnopronto/internal/actor"
	"tecnopronto/internal/cache"
	"tecnopronto/internal/database"
	"tecnopronto/internal/models"
	"tecnopronto/internal/observability"
	"tecnopronto/internal/repository"
	"tecnopronto/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultPageSize is the number of posts per listing page.
const DefaultPageSize = 5

const maxSlugAttempts = 50

type PostService struct {
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	categoryRepo repository.CategoryRepository
	pageSize     int
	now          func() time.Time
}

// PostDetail is a published post with its active comments and the viewer's like state.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
	Liked    bool              `json:"liked"`
}

// Page is one page of a post listing. NextPage is nil on the last page and
// Total is -1 when the listing does not count its matches.
type Page struct {
	Items    []*models.Post `json:"posts"`
	Page     int            `json:"page"`
	NextPage *int           `json:"next_page"`
	Total    int64          `json:"total"`
}

// PostInput is the create/edit form for a post.
type PostInput struct {
	Title      string `json:"title" form:"title" validate:"required,max=250"`
	Content    string `json:"content" form:"content" validate:"required,max=100000"`
	Status     string `json:"status" form:"status" validate:"omitempty,oneof=draft published"`
	CategoryID *uint  `json:"category_id" form:"category_id"`
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	categoryRepo repository.CategoryRepository,
	pageSize int,
) *PostService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PostService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		pageSize:     pageSize,
		now:          time.Now,
	}
}

// ViewPost loads a published post for display and counts the view.
func (s *PostService) ViewPost(ctx context.Context, slug string, a actor.Actor) (detail *PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "post.view", attribute.String("post.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.GetPost(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err = s.postRepo.IncrementViews(ctx, post.ID); err != nil {
		return nil, err
	}
	post.Views++
	observability.PostViews.Inc()

	comments, err := s.commentRepo.ListActiveByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likedBy(ctx, a, post.ID)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, Comments: comments, Liked: liked}, nil
}

// GetPost returns a published post without counting a view.
func (s *PostService) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, models.NewNotFoundError("Post", slug)
	}
	return post, nil
}

func (s *PostService) likedBy(ctx context.Context, a actor.Actor, postID uint) (bool, error) {
	if a.IsIdentified() {
		return s.postRepo.IsLiked(ctx, a.ID(), postID)
	}
	sess, ok := actor.SessionOf(a)
	if !ok {
		return false, nil
	}
	ids, _ := sess.Get(actor.LikedPostsKey)
	return actor.Contains(ids, postID), nil
}

// ListPublished returns a page of published posts, newest first. Pages below
// one are treated as the first page and pages past the end as the last.
func (s *PostService) ListPublished(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	var out Page
	err := cache.Aside(ctx, cache.PostsListKey(page), &out, cache.PostsListTTL, func() error {
		p, err := s.paginate(ctx, nil, page)
		if err != nil {
			return err
		}
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByCategory returns a page of the category's published posts.
func (s *PostService) ListByCategory(ctx context.Context, categorySlug string, page int) (*models.Category, *Page, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.paginate(ctx, &category.ID, page)
	if err != nil {
		return nil, nil, err
	}
	return category, p, nil
}

// Search matches published posts by title or content.
func (s *PostService) Search(ctx context.Context, query string, page int) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if page < 1 {
		page = 1
	}
	// one extra row tells us whether another page exists
	posts, err := s.postRepo.Search(ctx, query, s.pageSize+1, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	out := &Page{Items: posts, Page: page, Total: -1}
	if len(posts) > s.pageSize {
		out.Items = posts[:s.pageSize]
		next := page + 1
		out.NextPage = &next
	}
	return out, nil
}

func (s *PostService) paginate(ctx context.Context, categoryID *uint, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	posts, total, err := s.postRepo.ListPublished(ctx, categoryID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}

	last := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	if last < 1 {
		last = 1
	}
	if page > last {
		page = last
		posts, total, err = s.postRepo.ListPublished(ctx, categoryID, s.pageSize, (page-1)*s.pageSize)
		if err != nil {
			return nil, err
		}
	}

	out := &Page{Items: posts, Page: page, Total: total}
	if page < last {
		next := page + 1
		out.NextPage = &next
	}
	return out, nil
}

// CreatePost stores a new post authored by the actor. The slug is derived
// from the title and made unique with a numeric suffix.
func (s *PostService) CreatePost(ctx context.Context, a actor.Actor, in PostInput) (*models.Post, error) {
	if !a.IsIdentified() {
		return nil, models.NewUnauthorizedError("Login required to write posts")
	}
	if err := s.validatePostInput(ctx, &in); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      in.Title,
		Slug:       slug,
		Content:    in.Content,
		UserID:     a.ID(),
		CategoryID: in.CategoryID,
		Status:     models.PostStatusDraft,
	}
	if models.PostStatus(in.Status) == models.PostStatusPublished {
		post.Publish(s.now())
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.NewConflictError("A post with this slug already exists")
		}
		return nil, err
	}

	return s.postRepo.GetBySlug(ctx, post.Slug)
}

// UpdatePost edits a post. Only its author may edit it; the slug never changes.
func (s *PostService) UpdatePost(ctx context.Context, a actor.Actor, slug string, in PostInput) (*models.Post, error) {
	if !a.IsIdentified() {
		return nil, models.NewUnauthorizedError("Login required to edit posts")
	}

	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.UserID != a.ID() {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if err := s.validatePostInput(ctx, &in); err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Content = in.Content
	post.CategoryID = in.CategoryID
	switch models.PostStatus(in.Status) {
	case models.PostStatusPublished:
		post.Publish(s.now())
	case models.PostStatusDraft:
		post.Status = models.PostStatusDraft
	}
	post.UpdatedAt = s.now().UTC()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetBySlug(ctx, post.Slug)
}

func (s *PostService) validatePostInput(ctx context.Context, in *PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Status = strings.TrimSpace(in.Status)
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.CategoryID != nil {
		ok, err := s.categoryRepo.Exists(ctx, *in.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewValidationError("category_id does not exist")
		}
	}
	return nil
}

func (s *PostService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := models.Slugify(title)
	if base == "" {
		base = "post"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		exists, err := s.postRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}
