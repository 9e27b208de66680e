// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

/*
Package auth implements the identity and access management core of PIMS.

It handles credential verification, bearer-token issuance, and the
user-to-role assignment rules.

# Architecture

  - Service: Orchestrates business logic (Login, AddUser, AddRole, AssignRoles).
  - Repository: Abstracted interface over the transactional PostgreSQL store.
  - Security: Leverages bcrypt hashing and HMAC-SHA256 signed JWTs.

The package owns the User, Role, and UserRole row lifetimes; every other
type here is a transient request/response object that is never persisted.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered account.
type User struct {
	ID           int64     `json:"user_id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_date"`
}

// Role is a named permission group. A user may hold zero or more roles.
type Role struct {
	ID          int64  `json:"role_id"`
	Name        string `json:"role_name"`
	Description string `json:"description"`
}

// UserRole links one User to one Role.
//
// # Lifecycle
//
// Rows are created only through [Service.AssignRoles] and never updated.
// The (UserID, RoleID) pair is unique — enforced both by validation and by
// the storage layer's composite primary key.
type UserRole struct {
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName        = "name"
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldRoleName    = "role_name"
	FieldDescription = "description"
	FieldUserID      = "user_id"
	FieldRoleIDs     = "role_ids"
)
