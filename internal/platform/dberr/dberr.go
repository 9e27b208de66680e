// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// The unique-violation mapping matters here: application-level
// check-then-insert sequences are not race-safe, so the storage layer's
// uniqueness constraints are the final enforcement point. When two
// concurrent inserts race, the loser's SQLSTATE 23505 must surface as the
// same CONFLICT the pre-check would have produced.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/allsoft/pims/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource not found")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique constraint violations become Conflicts
	if IsUniqueViolation(err) {
		return apperr.Conflict("Resource already exists")
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// WrapConflict is like [Wrap] but substitutes a domain-specific message when
// the error is a unique-constraint violation (e.g. a lost username race).
func WrapConflict(err error, conflictMessage string) error {
	if err == nil {
		return nil
	}

	if IsUniqueViolation(err) {
		return apperr.Conflict(conflictMessage)
	}

	return Wrap(err, "")
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
