package product

import (
	"context"
	"log/slog"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/internal/platform/validate"
	"github.com/allsoft/pims/pkg/pagination"
	"github.com/allsoft/pims/pkg/slug"
)

type Service struct {
	repository Repository
	logger     *slog.Logger
}

func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
	}
}

// CreateRequest is the payload for creating a product.
type CreateRequest struct {
	Name        string  `json:"product_name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	SKU         string  `json:"sku"`
	CategoryIDs []int64 `json:"category_ids"`
}

func (request CreateRequest) Validate() error {
	v := &validate.Validator{}
	v.Required("product_name", request.Name).
		MaxLen("product_name", request.Name, 200).
		MaxLen("sku", request.SKU, 100).
		Custom("price", request.Price < 0, "Must not be negative")
	for _, categoryID := range request.CategoryIDs {
		if categoryID < 1 {
			v.Custom("category_ids", true, "Must contain positive integers")
			break
		}
	}
	return v.Err()
}

// UpdateRequest is the payload for rewriting an existing product.
type UpdateRequest struct {
	Name        string  `json:"product_name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	SKU         string  `json:"sku"`
	CategoryIDs []int64 `json:"category_ids"`
}

func (request UpdateRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		Required("product_name", request.Name).
		MaxLen("product_name", request.Name, 200).
		Required("sku", request.SKU).
		MaxLen("sku", request.SKU, 100).
		Custom("price", request.Price < 0, "Must not be negative").
		Err()
}

// AdjustPricesRequest applies one price change to a batch of products.
type AdjustPricesRequest struct {
	ProductIDs []int64 `json:"product_ids"`
	Mode       string  `json:"mode"`
	Value      float64 `json:"value"`
}

func (request AdjustPricesRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		NotEmptyInt64("product_ids", request.ProductIDs).
		OneOf("mode", request.Mode, AdjustAbsolute, AdjustPercentage).
		Custom("value", request.Mode == AdjustPercentage && request.Value < -100,
			"Percentage must not be below -100").
		Err()
}

// Create registers a new product. A missing SKU is derived from the name
// ("Café Grinder" becomes "cafe-grinder").
func (service *Service) Create(context context.Context, request CreateRequest) (*Product, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	sku := request.SKU
	if sku == "" {
		sku = slug.From(request.Name)
	}

	taken, err := service.repository.SKUTaken(context, sku)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("SKU must be unique.")
	}

	product := &Product{
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
		SKU:         sku,
		CategoryIDs: request.CategoryIDs,
	}
	if err := service.repository.Create(context, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update rewrites a product in place, keeping the SKU unique.
func (service *Service) Update(context context.Context, id int64, request UpdateRequest) (*Product, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	existing, err := service.repository.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if request.SKU != existing.SKU {
		taken, err := service.repository.SKUTaken(context, request.SKU)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("SKU must be unique.")
		}
	}

	product := &Product{
		ID:          id,
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
		SKU:         request.SKU,
		CategoryIDs: request.CategoryIDs,
		CreatedAt:   existing.CreatedAt,
	}
	if err := service.repository.Update(context, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (service *Service) Get(context context.Context, id int64) (*Product, error) {
	return service.repository.GetByID(context, id)
}

// ListAll returns one page of the catalog plus pagination metadata.
func (service *Service) ListAll(context context.Context, params pagination.Params) ([]*Product, pagination.Meta, error) {
	products, total, err := service.repository.List(context, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return products, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// FilterByCategory returns one page of products linked to the category.
func (service *Service) FilterByCategory(context context.Context, categoryID int64, params pagination.Params) ([]*Product, pagination.Meta, error) {
	products, total, err := service.repository.ListByCategory(context, categoryID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return products, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// AdjustPrices applies the change to every listed product and reports the
// number of affected rows. IDs that match no product are skipped silently.
func (service *Service) AdjustPrices(context context.Context, request AdjustPricesRequest) (int64, error) {
	if err := request.Validate(); err != nil {
		return 0, err
	}

	updated, err := service.repository.AdjustPrices(context, request.ProductIDs, Adjustment{
		Mode:  request.Mode,
		Value: request.Value,
	})
	if err != nil {
		return 0, err
	}

	service.logger.InfoContext(context, "product_prices_adjusted",
		slog.String("mode", request.Mode),
		slog.Float64("value", request.Value),
		slog.Int64("updated", updated),
	)
	return updated, nil
}
