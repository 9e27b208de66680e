package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/internal/platform/dberr"
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) Create(context context.Context, category *Category) error {
	const query = `
		INSERT INTO categories (category_name, description)
		VALUES ($1, $2)
		RETURNING category_id`

	err := repository.pool.QueryRow(context, query,
		category.Name,
		category.Description,
	).Scan(&category.ID)

	if err != nil {
		return dberr.WrapConflict(err, fmt.Sprintf("Category with name %s already exists", category.Name))
	}
	return nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id int64) (*Category, error) {
	const query = `
		SELECT category_id, category_name, description
		FROM categories
		WHERE category_id = $1`

	category := &Category{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("Category ID %d is not valid", id))
		}
		return nil, fmt.Errorf("postgres_category_repo_get_failed: %w", err)
	}
	return category, nil
}

func (repository *PostgresRepository) List(context context.Context) ([]*Category, error) {
	const query = `
		SELECT category_id, category_name, description
		FROM categories
		ORDER BY category_name ASC`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_category_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		category := &Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, fmt.Errorf("postgres_category_repo_list_scan_failed: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_category_repo_list_rows_failed: %w", err)
	}
	return categories, nil
}

func (repository *PostgresRepository) NameTaken(context context.Context, name string) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM categories WHERE category_name = $1)"

	var taken bool
	if err := repository.pool.QueryRow(context, query, name).Scan(&taken); err != nil {
		return false, fmt.Errorf("postgres_category_repo_name_taken_failed: %w", err)
	}
	return taken, nil
}
