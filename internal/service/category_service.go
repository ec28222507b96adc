package service

import (
	"context"

	"tecnopronto/internal/models"
	"tecnopronto/internal/repository"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// List returns all categories by name, each with its published post count.
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.ListWithCounts(ctx)
}

func (s *CategoryService) Get(ctx context.Context, slug string) (*models.Category, error) {
	return s.categoryRepo.GetBySlug(ctx, slug)
}
