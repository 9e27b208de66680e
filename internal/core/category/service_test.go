package category

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allsoft/pims/internal/platform/apperr"
)

type fakeRepository struct {
	categories []*Category
	nextID     int64
	listCalls  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{nextID: 1}
}

func (repository *fakeRepository) Create(_ context.Context, category *Category) error {
	category.ID = repository.nextID
	repository.nextID++
	copied := *category
	repository.categories = append(repository.categories, &copied)
	return nil
}

func (repository *fakeRepository) GetByID(_ context.Context, id int64) (*Category, error) {
	for _, category := range repository.categories {
		if category.ID == id {
			copied := *category
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Category not found")
}

func (repository *fakeRepository) List(_ context.Context) ([]*Category, error) {
	repository.listCalls++
	out := make([]*Category, len(repository.categories))
	copy(out, repository.categories)
	return out, nil
}

func (repository *fakeRepository) NameTaken(_ context.Context, name string) (bool, error) {
	for _, category := range repository.categories {
		if category.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type fakeCache struct {
	list []*Category
	ttl  time.Duration
}

func (cache *fakeCache) GetList(_ context.Context) ([]*Category, error) {
	return cache.list, nil
}

func (cache *fakeCache) SetList(_ context.Context, categories []*Category, ttl time.Duration) error {
	cache.list = categories
	cache.ttl = ttl
	return nil
}

func (cache *fakeCache) InvalidateList(_ context.Context) error {
	cache.list = nil
	return nil
}

func newTestService() (*Service, *fakeRepository, *fakeCache) {
	repository := newFakeRepository()
	cache := &fakeCache{}
	return NewService(repository, cache, slog.Default()), repository, cache
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.Create(ctx, CreateRequest{Name: "Electronics"})
	require.NoError(t, err)

	_, err = service.Create(ctx, CreateRequest{Name: "Electronics"})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Equal(t, "Category with name Electronics already exists", appError.Message)
}

func TestCreateInvalidatesCachedList(t *testing.T) {
	service, _, cache := newTestService()
	ctx := context.Background()

	_, err := service.Create(ctx, CreateRequest{Name: "Electronics"})
	require.NoError(t, err)

	// Prime the cache, then write again.
	_, err = service.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, cache.list)

	_, err = service.Create(ctx, CreateRequest{Name: "Hardware"})
	require.NoError(t, err)
	assert.Nil(t, cache.list)

	categories, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestListServesFromCache(t *testing.T) {
	service, repository, cache := newTestService()
	ctx := context.Background()

	_, err := service.Create(ctx, CreateRequest{Name: "Electronics"})
	require.NoError(t, err)

	first, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	storeReads := repository.listCalls

	second, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, storeReads, repository.listCalls, "second read must hit the cache")
	assert.Equal(t, 30*time.Minute, cache.ttl)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Create(context.Background(), CreateRequest{Name: "  "})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
