package category

import (
	"context"
	"time"
)

// Repository is the persistent store for categories.
type Repository interface {
	Create(context context.Context, category *Category) error
	GetByID(context context.Context, id int64) (*Category, error)
	List(context context.Context) ([]*Category, error)
	NameTaken(context context.Context, name string) (bool, error)
}

// Cache is a read-through cache for the full category list.
//
// A Get miss returns (nil, nil); cache failures other than a miss are
// returned so the service can decide whether to fall through to the store.
type Cache interface {
	GetList(context context.Context) ([]*Category, error)
	SetList(context context.Context, categories []*Category, ttl time.Duration) error
	InvalidateList(context context.Context) error
}
