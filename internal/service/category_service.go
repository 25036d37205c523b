package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/glossary-api/internal/models"
	appErrors "github.com/noah-isme/glossary-api/pkg/errors"
)

const (
	categoriesCacheKey     = "categories:all"
	categoriesCachePattern = "categories:*"
)

type categoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
}

// CategoryService serves category listings, optionally from cache.
type CategoryService struct {
	repo   categoryRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewCategoryService creates a category service. cache may be nil.
func NewCategoryService(repo categoryRepository, cache *CacheService, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, cache: cache, logger: logger}
}

// List returns every category ordered by id. The bool reports a cache hit.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, bool, error) {
	var cached []models.Category
	if s.cache.Get(ctx, categoriesCacheKey, &cached) {
		return cached, true, nil
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list categories")
	}
	s.cache.Set(ctx, categoriesCacheKey, categories, 0)
	return categories, false, nil
}

// Invalidate drops cached category listings, including ones written by an
// earlier process.
func (s *CategoryService) Invalidate(ctx context.Context) {
	s.cache.InvalidatePattern(ctx, categoriesCachePattern)
}
