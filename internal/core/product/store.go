package product

import (
	"context"

	"github.com/allsoft/pims/pkg/pagination"
)

// Repository is the persistent store for the product catalog.
type Repository interface {
	Create(context context.Context, product *Product) error
	Update(context context.Context, product *Product) error
	GetByID(context context.Context, id int64) (*Product, error)
	SKUTaken(context context.Context, sku string) (bool, error)

	// List returns one page of products plus the total row count.
	List(context context.Context, params pagination.Params) ([]*Product, int, error)

	// ListByCategory returns one page of products linked to the category.
	ListByCategory(context context.Context, categoryID int64, params pagination.Params) ([]*Product, int, error)

	// AdjustPrices applies the adjustment to every listed product in one
	// statement and reports how many rows changed.
	AdjustPrices(context context.Context, ids []int64, adjustment Adjustment) (int64, error)
}
