package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/internal/platform/dberr"
	"github.com/allsoft/pims/pkg/pagination"
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts the product row and its category links in one transaction.
func (repository *PostgresRepository) Create(context context.Context, product *Product) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_product_repo_create_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	const insertProduct = `
		INSERT INTO products (product_name, description, price, sku, created_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING product_id`

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}

	err = transaction.QueryRow(context, insertProduct,
		product.Name,
		product.Description,
		product.Price,
		product.SKU,
		product.CreatedAt,
	).Scan(&product.ID)

	if err != nil {
		return dberr.WrapConflict(err, "SKU must be unique.")
	}

	if err := linkCategories(context, transaction, product.ID, product.CategoryIDs); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_product_repo_create_commit_failed: %w", err)
	}
	return nil
}

// Update rewrites the product row and replaces its category links.
func (repository *PostgresRepository) Update(context context.Context, product *Product) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_product_repo_update_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	const updateProduct = `
		UPDATE products
		SET product_name = $2, description = $3, price = $4, sku = $5
		WHERE product_id = $1`

	tag, err := transaction.Exec(context, updateProduct,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.SKU,
	)
	if err != nil {
		return dberr.WrapConflict(err, "SKU must be unique.")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(fmt.Sprintf("Product ID %d is not valid", product.ID))
	}

	if _, err := transaction.Exec(context,
		"DELETE FROM product_categories WHERE product_id = $1", product.ID); err != nil {
		return fmt.Errorf("postgres_product_repo_unlink_failed: %w", err)
	}
	if err := linkCategories(context, transaction, product.ID, product.CategoryIDs); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_product_repo_update_commit_failed: %w", err)
	}
	return nil
}

func linkCategories(context context.Context, transaction pgx.Tx, productID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	const query = "INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)"

	batch := &pgx.Batch{}
	for _, categoryID := range categoryIDs {
		batch.Queue(query, productID, categoryID)
	}

	batchResults := transaction.SendBatch(context, batch)
	for range categoryIDs {
		if _, err := batchResults.Exec(); err != nil {
			_ = batchResults.Close()
			return dberr.Wrap(err, "postgres_product_repo_link_category")
		}
	}
	return batchResults.Close()
}

func (repository *PostgresRepository) GetByID(context context.Context, id int64) (*Product, error) {
	const query = `
		SELECT product_id, product_name, description, price, sku, created_date
		FROM products
		WHERE product_id = $1`

	product := &Product{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.SKU,
		&product.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("Product ID %d is not valid", id))
		}
		return nil, fmt.Errorf("postgres_product_repo_get_failed: %w", err)
	}

	product.CategoryIDs, err = repository.categoryIDs(context, id)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (repository *PostgresRepository) categoryIDs(context context.Context, productID int64) ([]int64, error) {
	const query = `
		SELECT category_id
		FROM product_categories
		WHERE product_id = $1
		ORDER BY category_id ASC`

	rows, err := repository.pool.Query(context, query, productID)
	if err != nil {
		return nil, fmt.Errorf("postgres_product_repo_category_ids_failed: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres_product_repo_category_ids_scan_failed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (repository *PostgresRepository) SKUTaken(context context.Context, sku string) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)"

	var taken bool
	if err := repository.pool.QueryRow(context, query, sku).Scan(&taken); err != nil {
		return false, fmt.Errorf("postgres_product_repo_sku_taken_failed: %w", err)
	}
	return taken, nil
}

func (repository *PostgresRepository) List(context context.Context, params pagination.Params) ([]*Product, int, error) {
	const countQuery = "SELECT COUNT(*) FROM products"

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_product_repo_count_failed: %w", err)
	}

	const query = `
		SELECT product_id, product_name, description, price, sku, created_date
		FROM products
		ORDER BY product_id ASC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_product_repo_list_failed: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (repository *PostgresRepository) ListByCategory(context context.Context, categoryID int64, params pagination.Params) ([]*Product, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM products p
		JOIN product_categories pc ON pc.product_id = p.product_id
		WHERE pc.category_id = $1`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, categoryID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_product_repo_filter_count_failed: %w", err)
	}

	const query = `
		SELECT p.product_id, p.product_name, p.description, p.price, p.sku, p.created_date
		FROM products p
		JOIN product_categories pc ON pc.product_id = p.product_id
		WHERE pc.category_id = $1
		ORDER BY p.product_id ASC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, categoryID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_product_repo_filter_failed: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// AdjustPrices applies one adjustment to every listed product. GREATEST
// keeps a large negative delta from driving a price below zero.
func (repository *PostgresRepository) AdjustPrices(context context.Context, ids []int64, adjustment Adjustment) (int64, error) {
	var query string
	switch adjustment.Mode {
	case AdjustPercentage:
		query = `
			UPDATE products
			SET price = GREATEST(0, price * (1 + $2 / 100.0))
			WHERE product_id = ANY($1)`
	default:
		query = `
			UPDATE products
			SET price = GREATEST(0, price + $2)
			WHERE product_id = ANY($1)`
	}

	tag, err := repository.pool.Exec(context, query, ids, adjustment.Value)
	if err != nil {
		return 0, fmt.Errorf("postgres_product_repo_adjust_prices_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanProducts(rows pgx.Rows) ([]*Product, error) {
	var products []*Product
	for rows.Next() {
		product := &Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.SKU,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_product_repo_scan_failed: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_product_repo_rows_failed: %w", err)
	}
	return products, nil
}
