package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allsoft/pims/internal/platform/apperr"
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) ProductExists(context context.Context, productID int64) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM products WHERE product_id = $1)"

	var exists bool
	if err := repository.pool.QueryRow(context, query, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_inventory_repo_product_exists_failed: %w", err)
	}
	return exists, nil
}

// ApplyDelta adds delta to the stock level, creating the row on first use.
// The DO UPDATE guard plus the table's CHECK constraint keep the quantity
// from going negative under any interleaving.
func (repository *PostgresRepository) ApplyDelta(context context.Context, productID int64, location string, delta int64, change Change) (*Inventory, error) {
	const query = `
		INSERT INTO inventory (product_id, warehouse_location, quantity, reason, user_responsible, updated_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, warehouse_location) DO UPDATE
		SET quantity = inventory.quantity + EXCLUDED.quantity,
		    reason = EXCLUDED.reason,
		    user_responsible = EXCLUDED.user_responsible,
		    updated_date = EXCLUDED.updated_date
		WHERE inventory.quantity + EXCLUDED.quantity >= 0
		RETURNING inventory_id, product_id, warehouse_location, quantity, reason, user_responsible, updated_date`

	record, err := repository.scanUpsert(context, query, productID, location, delta, change)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err) {
			return nil, apperr.Conflict(fmt.Sprintf("Insufficient stock for product %d", productID))
		}
		return nil, fmt.Errorf("postgres_inventory_repo_apply_delta_failed: %w", err)
	}
	return record, nil
}

// SetQuantity overwrites the stock level, creating the row on first use.
func (repository *PostgresRepository) SetQuantity(context context.Context, productID int64, location string, quantity int64, change Change) (*Inventory, error) {
	const query = `
		INSERT INTO inventory (product_id, warehouse_location, quantity, reason, user_responsible, updated_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, warehouse_location) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    reason = EXCLUDED.reason,
		    user_responsible = EXCLUDED.user_responsible,
		    updated_date = EXCLUDED.updated_date
		RETURNING inventory_id, product_id, warehouse_location, quantity, reason, user_responsible, updated_date`

	record, err := repository.scanUpsert(context, query, productID, location, quantity, change)
	if err != nil {
		if isCheckViolation(err) {
			return nil, apperr.Conflict(fmt.Sprintf("Insufficient stock for product %d", productID))
		}
		return nil, fmt.Errorf("postgres_inventory_repo_set_quantity_failed: %w", err)
	}
	return record, nil
}

func (repository *PostgresRepository) scanUpsert(context context.Context, query string, productID int64, location string, value int64, change Change) (*Inventory, error) {
	record := &Inventory{}
	err := repository.pool.QueryRow(context, query,
		productID,
		location,
		value,
		change.Reason,
		change.UserResponsible,
		time.Now(),
	).Scan(
		&record.ID,
		&record.ProductID,
		&record.WarehouseLocation,
		&record.Quantity,
		&record.Reason,
		&record.UserResponsible,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (repository *PostgresRepository) ListByProduct(context context.Context, productID int64) ([]*Inventory, error) {
	const query = `
		SELECT inventory_id, product_id, warehouse_location, quantity, reason, user_responsible, updated_date
		FROM inventory
		WHERE product_id = $1
		ORDER BY warehouse_location ASC`

	rows, err := repository.pool.Query(context, query, productID)
	if err != nil {
		return nil, fmt.Errorf("postgres_inventory_repo_list_by_product_failed: %w", err)
	}
	defer rows.Close()

	return scanInventory(rows)
}

func (repository *PostgresRepository) ListBelow(context context.Context, threshold int64) ([]*Inventory, error) {
	const query = `
		SELECT inventory_id, product_id, warehouse_location, quantity, reason, user_responsible, updated_date
		FROM inventory
		WHERE quantity <= $1
		ORDER BY quantity ASC, product_id ASC`

	rows, err := repository.pool.Query(context, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("postgres_inventory_repo_list_below_failed: %w", err)
	}
	defer rows.Close()

	return scanInventory(rows)
}

func scanInventory(rows pgx.Rows) ([]*Inventory, error) {
	var records []*Inventory
	for rows.Next() {
		record := &Inventory{}
		err := rows.Scan(
			&record.ID,
			&record.ProductID,
			&record.WarehouseLocation,
			&record.Quantity,
			&record.Reason,
			&record.UserResponsible,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_inventory_repo_scan_failed: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_inventory_repo_rows_failed: %w", err)
	}
	return records, nil
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}
