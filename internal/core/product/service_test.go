package product

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/pkg/pagination"
)

type fakeRepository struct {
	products map[int64]*Product
	nextID   int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{products: make(map[int64]*Product), nextID: 1}
}

func (repository *fakeRepository) Create(_ context.Context, product *Product) error {
	product.ID = repository.nextID
	repository.nextID++
	copied := *product
	repository.products[product.ID] = &copied
	return nil
}

func (repository *fakeRepository) Update(_ context.Context, product *Product) error {
	if _, ok := repository.products[product.ID]; !ok {
		return apperr.NotFound("Product not found")
	}
	copied := *product
	repository.products[product.ID] = &copied
	return nil
}

func (repository *fakeRepository) GetByID(_ context.Context, id int64) (*Product, error) {
	product, ok := repository.products[id]
	if !ok {
		return nil, apperr.NotFound("Product not found")
	}
	copied := *product
	return &copied, nil
}

func (repository *fakeRepository) SKUTaken(_ context.Context, sku string) (bool, error) {
	for _, product := range repository.products {
		if product.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (repository *fakeRepository) List(_ context.Context, params pagination.Params) ([]*Product, int, error) {
	all := repository.sorted()
	return page(all, params), len(all), nil
}

func (repository *fakeRepository) ListByCategory(_ context.Context, categoryID int64, params pagination.Params) ([]*Product, int, error) {
	var matched []*Product
	for _, product := range repository.sorted() {
		for _, id := range product.CategoryIDs {
			if id == categoryID {
				matched = append(matched, product)
				break
			}
		}
	}
	return page(matched, params), len(matched), nil
}

func (repository *fakeRepository) AdjustPrices(_ context.Context, ids []int64, adjustment Adjustment) (int64, error) {
	var updated int64
	for _, id := range ids {
		product, ok := repository.products[id]
		if !ok {
			continue
		}
		switch adjustment.Mode {
		case AdjustPercentage:
			product.Price *= 1 + adjustment.Value/100
		default:
			product.Price += adjustment.Value
		}
		if product.Price < 0 {
			product.Price = 0
		}
		updated++
	}
	return updated, nil
}

func (repository *fakeRepository) sorted() []*Product {
	var all []*Product
	for id := int64(1); id < repository.nextID; id++ {
		if product, ok := repository.products[id]; ok {
			all = append(all, product)
		}
	}
	return all
}

func page(products []*Product, params pagination.Params) []*Product {
	offset := params.Offset()
	if offset >= len(products) {
		return nil
	}
	end := offset + params.Limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end]
}

func newTestService() (*Service, *fakeRepository) {
	repository := newFakeRepository()
	return NewService(repository, slog.Default()), repository
}

func TestCreateGeneratesSKUFromName(t *testing.T) {
	service, _ := newTestService()

	product, err := service.Create(context.Background(), CreateRequest{
		Name:  "Café Grinder",
		Price: 49.90,
	})
	require.NoError(t, err)
	assert.Equal(t, "cafe-grinder", product.SKU)
}

func TestCreateKeepsExplicitSKU(t *testing.T) {
	service, _ := newTestService()

	product, err := service.Create(context.Background(), CreateRequest{
		Name:  "Café Grinder",
		Price: 49.90,
		SKU:   "CG-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "CG-001", product.SKU)
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Create(ctx, CreateRequest{Name: "Grinder", Price: 10, SKU: "CG-001"})
	require.NoError(t, err)

	_, err = service.Create(ctx, CreateRequest{Name: "Other Grinder", Price: 12, SKU: "CG-001"})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Equal(t, "SKU must be unique.", appError.Message)
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Create(context.Background(), CreateRequest{Name: "Grinder", Price: -1})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestUpdateRejectsSKUCollision(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	first, err := service.Create(ctx, CreateRequest{Name: "Grinder", Price: 10, SKU: "CG-001"})
	require.NoError(t, err)
	_, err = service.Create(ctx, CreateRequest{Name: "Scale", Price: 20, SKU: "SC-001"})
	require.NoError(t, err)

	_, err = service.Update(ctx, first.ID, UpdateRequest{
		Name:  "Grinder v2",
		Price: 11,
		SKU:   "SC-001",
	})
	require.Error(t, err)
	assert.Equal(t, "SKU must be unique.", apperr.As(err).Message)
}

func TestUpdateAllowsKeepingOwnSKU(t *testing.T) {
	service, repository := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, CreateRequest{Name: "Grinder", Price: 10, SKU: "CG-001"})
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID, UpdateRequest{
		Name:  "Grinder v2",
		Price: 12.5,
		SKU:   "CG-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grinder v2", updated.Name)
	assert.Equal(t, 12.5, repository.products[created.ID].Price)
}

func TestAdjustPricesPercentage(t *testing.T) {
	service, repository := newTestService()
	ctx := context.Background()

	grinder, err := service.Create(ctx, CreateRequest{Name: "Grinder", Price: 100, SKU: "CG-001"})
	require.NoError(t, err)
	scale, err := service.Create(ctx, CreateRequest{Name: "Scale", Price: 50, SKU: "SC-001"})
	require.NoError(t, err)

	updated, err := service.AdjustPrices(ctx, AdjustPricesRequest{
		ProductIDs: []int64{grinder.ID, scale.ID},
		Mode:       AdjustPercentage,
		Value:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.InDelta(t, 110, repository.products[grinder.ID].Price, 0.001)
	assert.InDelta(t, 55, repository.products[scale.ID].Price, 0.001)
}

func TestAdjustPricesAbsoluteClampsAtZero(t *testing.T) {
	service, repository := newTestService()
	ctx := context.Background()

	grinder, err := service.Create(ctx, CreateRequest{Name: "Grinder", Price: 5, SKU: "CG-001"})
	require.NoError(t, err)

	updated, err := service.AdjustPrices(ctx, AdjustPricesRequest{
		ProductIDs: []int64{grinder.ID},
		Mode:       AdjustAbsolute,
		Value:      -10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
	assert.Equal(t, float64(0), repository.products[grinder.ID].Price)
}

func TestAdjustPricesRejectsUnknownMode(t *testing.T) {
	service, _ := newTestService()

	_, err := service.AdjustPrices(context.Background(), AdjustPricesRequest{
		ProductIDs: []int64{1},
		Mode:       "multiply",
		Value:      2,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestListAllPaginates(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	for _, name := range []string{"Grinder", "Scale", "Kettle"} {
		_, err := service.Create(ctx, CreateRequest{Name: name, Price: 10})
		require.NoError(t, err)
	}

	products, meta, err := service.ListAll(ctx, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestFilterByCategory(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Create(ctx, CreateRequest{Name: "Grinder", Price: 10, CategoryIDs: []int64{1}})
	require.NoError(t, err)
	_, err = service.Create(ctx, CreateRequest{Name: "Scale", Price: 20, CategoryIDs: []int64{2}})
	require.NoError(t, err)

	products, meta, err := service.FilterByCategory(ctx, 1, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Grinder", products[0].Name)
	assert.Equal(t, 1, meta.Total)
}
