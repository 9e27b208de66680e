// Package inventory tracks stock levels per product and warehouse location.
package inventory

import "time"

// DefaultLocation is used when an adjustment does not name a warehouse.
const DefaultLocation = "Default Location"

// Inventory is the current stock level of one product at one location.
// Reason and UserResponsible describe the most recent change.
type Inventory struct {
	ID                int64     `json:"inventory_id"`
	ProductID         int64     `json:"product_id"`
	Quantity          int64     `json:"quantity"`
	WarehouseLocation string    `json:"warehouse_location"`
	Reason            string    `json:"reason,omitempty"`
	UserResponsible   string    `json:"user_responsible,omitempty"`
	UpdatedAt         time.Time `json:"timestamp"`
}
