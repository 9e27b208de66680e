package inventory

import "context"

// Change carries the audit fields recorded alongside every stock mutation.
type Change struct {
	Reason          string
	UserResponsible string
}

// Repository is the persistent store for stock levels.
//
// ApplyDelta and SetQuantity are atomic upserts: the row for the
// (product, location) pair is created on first use. Stock can never go
// negative; a delta that would is rejected without mutation.
type Repository interface {
	ProductExists(context context.Context, productID int64) (bool, error)
	ApplyDelta(context context.Context, productID int64, location string, delta int64, change Change) (*Inventory, error)
	SetQuantity(context context.Context, productID int64, location string, quantity int64, change Change) (*Inventory, error)
	ListByProduct(context context.Context, productID int64) ([]*Inventory, error)
	ListBelow(context context.Context, threshold int64) ([]*Inventory, error)
}
