// Package product manages the sellable catalog: products, their SKUs,
// pricing, and category membership.
package product

import "time"

// Product is a single catalog entry. SKU is unique across the catalog and
// is generated from the name when the caller does not supply one.
type Product struct {
	ID          int64     `json:"product_id"`
	Name        string    `json:"product_name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	SKU         string    `json:"sku"`
	CategoryIDs []int64   `json:"category_ids,omitempty"`
	CreatedAt   time.Time `json:"created_date"`
}

// Price adjustment modes.
const (
	AdjustAbsolute   = "absolute"
	AdjustPercentage = "percentage"
)

// Adjustment describes one batch price change.
//
// In absolute mode Value is added to each price; in percentage mode each
// price is scaled by (1 + Value/100). Either way the resulting price is
// clamped at zero by the store.
type Adjustment struct {
	Mode  string  `json:"mode"`
	Value float64 `json:"value"`
}
