package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/internal/platform/constants"
	"github.com/allsoft/pims/internal/platform/validate"
)

type Service struct {
	repository Repository
	cache      Cache
	logger     *slog.Logger
}

func NewService(repository Repository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		logger:     logger,
	}
}

// CreateRequest is the payload for creating a category.
type CreateRequest struct {
	Name        string `json:"category_name"`
	Description string `json:"description"`
}

func (request CreateRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		Required("category_name", request.Name).
		MaxLen("category_name", request.Name, 100).
		MaxLen("description", request.Description, 255).
		Err()
}

// Create inserts a new category and invalidates the cached list.
func (service *Service) Create(context context.Context, request CreateRequest) (*Category, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	taken, err := service.repository.NameTaken(context, request.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict(fmt.Sprintf("Category with name %s already exists", request.Name))
	}

	category := &Category{
		Name:        request.Name,
		Description: request.Description,
	}
	if err := service.repository.Create(context, category); err != nil {
		return nil, err
	}

	// Stale list entries must not outlive the write.
	if err := service.cache.InvalidateList(context); err != nil {
		service.logger.WarnContext(context, "category_cache_invalidate_failed",
			slog.String("error", err.Error()),
		)
	}

	return category, nil
}

// List returns every category, served from the cache when possible.
//
// Cache failures degrade to a direct store read; a failed re-fill is logged
// and ignored so a Redis outage never breaks reads.
func (service *Service) List(context context.Context) ([]*Category, error) {
	cached, err := service.cache.GetList(context)
	if err != nil {
		service.logger.WarnContext(context, "category_cache_read_failed",
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	categories, err := service.repository.List(context)
	if err != nil {
		return nil, err
	}

	if err := service.cache.SetList(context, categories, constants.CategoryCacheTTL); err != nil {
		service.logger.WarnContext(context, "category_cache_fill_failed",
			slog.String("error", err.Error()),
		)
	}

	return categories, nil
}

func (service *Service) Get(context context.Context, id int64) (*Category, error) {
	return service.repository.GetByID(context, id)
}
