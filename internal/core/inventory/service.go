package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/internal/platform/validate"
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

// AdjustRequest applies a relative stock change.
type AdjustRequest struct {
	ProductID         int64  `json:"product_id"`
	Delta             int64  `json:"delta"`
	WarehouseLocation string `json:"warehouse_location"`
	Reason            string `json:"reason"`
}

func (request AdjustRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		Positive("product_id", request.ProductID).
		Custom("delta", request.Delta == 0, "Must not be zero").
		MaxLen("warehouse_location", request.WarehouseLocation, 100).
		MaxLen("reason", request.Reason, 255).
		Err()
}

// AuditRequest overwrites a stock level with a counted quantity.
type AuditRequest struct {
	ProductID         int64  `json:"product_id"`
	Quantity          int64  `json:"quantity"`
	WarehouseLocation string `json:"warehouse_location"`
	Reason            string `json:"reason"`
}

func (request AuditRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		Positive("product_id", request.ProductID).
		Custom("quantity", request.Quantity < 0, "Must not be negative").
		Required("reason", request.Reason).
		MaxLen("warehouse_location", request.WarehouseLocation, 100).
		MaxLen("reason", request.Reason, 255).
		Err()
}

// Adjust applies a delta to a product's stock. The row is created on first
// use; a missing location falls back to [DefaultLocation].
func (service *Service) Adjust(context context.Context, request AdjustRequest, userResponsible string) (*Inventory, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	if err := service.checkProduct(context, request.ProductID); err != nil {
		return nil, err
	}

	location := normalizeLocation(request.WarehouseLocation)
	record, err := service.repository.ApplyDelta(context, request.ProductID, location, request.Delta, Change{
		Reason:          request.Reason,
		UserResponsible: userResponsible,
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "inventory_adjusted",
		slog.Int64("product_id", request.ProductID),
		slog.Int64("delta", request.Delta),
		slog.Int64("quantity", record.Quantity),
		slog.String("location", location),
	)
	return record, nil
}

// Audit sets a product's stock to an absolute counted quantity. Unlike
// Adjust, a reason is mandatory: audits rewrite history and must say why.
func (service *Service) Audit(context context.Context, request AuditRequest, userResponsible string) (*Inventory, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	if err := service.checkProduct(context, request.ProductID); err != nil {
		return nil, err
	}

	location := normalizeLocation(request.WarehouseLocation)
	record, err := service.repository.SetQuantity(context, request.ProductID, location, request.Quantity, Change{
		Reason:          request.Reason,
		UserResponsible: userResponsible,
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "inventory_audited",
		slog.Int64("product_id", request.ProductID),
		slog.Int64("quantity", request.Quantity),
		slog.String("location", location),
		slog.String("user", userResponsible),
	)
	return record, nil
}

// LowInventory lists every stock row at or below the threshold.
func (service *Service) LowInventory(context context.Context, threshold int64) ([]*Inventory, error) {
	if threshold < 0 {
		return nil, validate.RequiredError("threshold", "Must not be negative")
	}
	return service.repository.ListBelow(context, threshold)
}

// ForProduct lists the stock rows of one product across locations.
func (service *Service) ForProduct(context context.Context, productID int64) ([]*Inventory, error) {
	if err := service.checkProduct(context, productID); err != nil {
		return nil, err
	}
	return service.repository.ListByProduct(context, productID)
}

func (service *Service) checkProduct(context context.Context, productID int64) error {
	exists, err := service.repository.ProductExists(context, productID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound(fmt.Sprintf("Product ID %d is not valid", productID))
	}
	return nil
}

func normalizeLocation(location string) string {
	if strings.TrimSpace(location) == "" {
		return DefaultLocation
	}
	return location
}
