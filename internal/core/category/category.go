// Package category manages the product classification taxonomy.
package category

// Category is a named grouping that products can belong to.
type Category struct {
	ID          int64  `json:"category_id"`
	Name        string `json:"category_name"`
	Description string `json:"description,omitempty"`
}
