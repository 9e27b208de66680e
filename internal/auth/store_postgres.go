// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/internal/platform/dberr"
)

// PostgresRepository implements the [Repository] interface using pgx.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] values via dberr to avoid leaking
// storage implementation details. The unique indexes on username, role name,
// and (user_id, role_id) are the race-safe backstop behind the service
// layer's check-then-insert sequences.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the auth Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindUserByUsername retrieves a user record by their unique username.

Description: Standard lookup by username for authentication.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindUserByUsername(context context.Context, username string) (*User, error) {
	const query = `
		SELECT user_id, name, username, password_hash, created_date
		FROM users
		WHERE username = $1`

	user := &User{}
	err := repository.pool.QueryRow(context, query, username).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("postgres_auth_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
FindUserByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindUserByID(context context.Context, id int64) (*User, error) {
	const query = `
		SELECT user_id, name, username, password_hash, created_date
		FROM users
		WHERE user_id = $1`

	user := &User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("postgres_auth_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// UsernameTaken reports whether the username is already registered.
func (repository *PostgresRepository) UsernameTaken(context context.Context, username string) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)"

	var taken bool
	if err := repository.pool.QueryRow(context, query, username).Scan(&taken); err != nil {
		return false, fmt.Errorf("postgres_auth_repo_username_taken_failed: %w", err)
	}
	return taken, nil
}

// RoleNameTaken reports whether a role with the given name exists.
func (repository *PostgresRepository) RoleNameTaken(context context.Context, name string) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM roles WHERE role_name = $1)"

	var taken bool
	if err := repository.pool.QueryRow(context, query, name).Scan(&taken); err != nil {
		return false, fmt.Errorf("postgres_auth_repo_role_name_taken_failed: %w", err)
	}
	return taken, nil
}

// RoleExists reports whether a role with the given ID exists.
func (repository *PostgresRepository) RoleExists(context context.Context, id int64) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM roles WHERE role_id = $1)"

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_auth_repo_role_exists_failed: %w", err)
	}
	return exists, nil
}

// UserRoleExists reports whether the (userID, roleID) assignment already exists.
func (repository *PostgresRepository) UserRoleExists(context context.Context, userID, roleID int64) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role_id = $2)"

	var exists bool
	if err := repository.pool.QueryRow(context, query, userID, roleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_auth_repo_user_role_exists_failed: %w", err)
	}
	return exists, nil
}

/*
CreateUser persists a new user record and fills the generated ID.

Description: The unique index on username settles concurrent duplicate
inserts; the loser of that race receives the same Conflict the pre-check
would have produced.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.Conflict or persistence failures
*/
func (repository *PostgresRepository) CreateUser(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (name, username, password_hash, created_date)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	err := repository.pool.QueryRow(context, query,
		user.Name,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		return dberr.WrapConflict(err, fmt.Sprintf("Username %s is already taken.", user.Username))
	}

	return nil
}

/*
CreateRole persists a new role record and fills the generated ID.

Parameters:
  - context: context.Context
  - role: *Role

Returns:
  - error: apperr.Conflict or persistence failures
*/
func (repository *PostgresRepository) CreateRole(context context.Context, role *Role) error {
	const query = `
		INSERT INTO roles (role_name, description)
		VALUES ($1, $2)
		RETURNING role_id`

	err := repository.pool.QueryRow(context, query,
		role.Name,
		role.Description,
	).Scan(&role.ID)

	if err != nil {
		return dberr.WrapConflict(err, fmt.Sprintf("Role with RoleName %s already exists", role.Name))
	}

	return nil
}

/*
CreateUserRoles inserts all assignment rows inside a single transaction.

Description: The rows are queued as one pgx batch and sent within an
explicit transaction, so either every assignment commits or none do. The
composite primary key on (user_id, role_id) rejects a concurrent duplicate,
rolling back the whole batch.

Parameters:
  - context: context.Context
  - userRoles: []UserRole

Returns:
  - error: apperr.Conflict on a lost race, or persistence failures
*/
func (repository *PostgresRepository) CreateUserRoles(context context.Context, userRoles []UserRole) error {
	if len(userRoles) == 0 {
		return nil
	}

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_auth_repo_assign_begin_failed: %w", err)
	}
	// Rollback is a no-op once Commit succeeds.
	defer func() { _ = transaction.Rollback(context) }()

	const query = "INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)"

	batch := &pgx.Batch{}
	for _, userRole := range userRoles {
		batch.Queue(query, userRole.UserID, userRole.RoleID)
	}

	batchResults := transaction.SendBatch(context, batch)
	for _, userRole := range userRoles {
		if _, err := batchResults.Exec(); err != nil {
			_ = batchResults.Close()
			return dberr.WrapConflict(err, fmt.Sprintf(
				"User %d is already assigned to role %d", userRole.UserID, userRole.RoleID))
		}
	}

	if err := batchResults.Close(); err != nil {
		return fmt.Errorf("postgres_auth_repo_assign_batch_close_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_auth_repo_assign_commit_failed: %w", err)
	}

	return nil
}

/*
RoleNamesForUser returns the role names assigned to the user.

Description: Joins user_roles to roles and returns names in role-ID order,
which drives the role claims embedded into issued tokens.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - []string: Zero or more role names
  - error: Database errors
*/
func (repository *PostgresRepository) RoleNamesForUser(context context.Context, userID int64) ([]string, error) {
	const query = `
		SELECT r.role_name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.role_id
		WHERE ur.user_id = $1
		ORDER BY r.role_id ASC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_auth_repo_role_names_failed: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("postgres_auth_repo_role_names_scan_failed: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_auth_repo_role_names_rows_failed: %w", err)
	}

	return names, nil
}
