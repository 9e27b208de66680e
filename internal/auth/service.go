// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

package auth

import (
	"context"
	"fmt"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/internal/platform/sec"
	"github.com/allsoft/pims/internal/platform/validate"
)

// ErrInvalidLogin is the single error returned for every credential failure.
//
// An unknown username and a wrong password are indistinguishable to the
// caller, which prevents account enumeration through the login endpoint.
var ErrInvalidLogin = apperr.Unauthorized("Invalid login attempt")

// TokenProvider abstracts access-token issuance so the service layer does not
// depend on a concrete signing implementation.
type TokenProvider interface {
	GenerateAccessToken(userID int64, username string, roles []string) (string, error)
}

// Service orchestrates the auth domain business logic.
type Service struct {
	repository Repository
	tokens     TokenProvider
}

// NewService creates a new auth Service with its dependencies injected.
func NewService(repository Repository, tokens TokenProvider) *Service {
	return &Service{
		repository: repository,
		tokens:     tokens,
	}
}

// # Request / Response Types

// LoginRequest is the payload for the login operation.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the login payload for structural completeness.
func (request LoginRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		Required(FieldUsername, request.Username).
		Required(FieldPassword, request.Password).
		Err()
}

// LoginResult carries the signed access token issued on a successful login.
type LoginResult struct {
	Token string `json:"token"`
}

// AddUserRequest is the payload for registering a new account.
type AddUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the registration payload.
func (request AddUserRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		Required(FieldName, request.Name).
		MaxLen(FieldName, request.Name, 100).
		Required(FieldUsername, request.Username).
		MaxLen(FieldUsername, request.Username, 100).
		Required(FieldPassword, request.Password).
		MinLen(FieldPassword, request.Password, 6).
		// bcrypt rejects input beyond 72 bytes (not runes), so the cap is
		// enforced on the encoded length.
		Custom(FieldPassword, len(request.Password) > 72, "Maximum 72 bytes").
		Err()
}

// AddRoleRequest is the payload for creating a new role.
type AddRoleRequest struct {
	RoleName    string `json:"role_name"`
	Description string `json:"description"`
}

// Validate checks the role payload.
func (request AddRoleRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		Required(FieldRoleName, request.RoleName).
		MaxLen(FieldRoleName, request.RoleName, 100).
		MaxLen(FieldDescription, request.Description, 255).
		Err()
}

// AssignRolesRequest is the payload for assigning one or more roles to a user.
type AssignRolesRequest struct {
	UserID  int64   `json:"user_id"`
	RoleIDs []int64 `json:"role_ids"`
}

// Validate checks the assignment payload.
func (request AssignRolesRequest) Validate() error {
	v := &validate.Validator{}
	return v.
		Positive(FieldUserID, request.UserID).
		NotEmptyInt64(FieldRoleIDs, request.RoleIDs).
		Err()
}

// # Operations

/*
Login verifies a username/password pair and issues a signed access token.

Description: The user is looked up by username and the supplied password is
checked against the stored bcrypt hash. Both failure modes collapse into
[ErrInvalidLogin]. On success the user's role names are loaded and embedded
into the token claims.

Parameters:
  - context: context.Context
  - request: LoginRequest

Returns:
  - *LoginResult: The signed access token
  - error: ErrInvalidLogin, or token/storage failures
*/
func (service *Service) Login(context context.Context, request LoginRequest) (*LoginResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	user, err := service.repository.FindUserByUsername(context, request.Username)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(request.Password, user.PasswordHash) {
		return nil, ErrInvalidLogin
	}

	roles, err := service.repository.RoleNamesForUser(context, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := service.tokens.GenerateAccessToken(user.ID, user.Username, roles)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_generation_failed: %w", err))
	}

	return &LoginResult{Token: token}, nil
}

/*
AddUser registers a new account with a bcrypt-hashed password.

Description: The username must be unused. The plaintext password is hashed
before it reaches the repository; the plaintext is never persisted.

Parameters:
  - context: context.Context
  - request: AddUserRequest

Returns:
  - *User: The created account with its generated ID
  - error: apperr.Conflict on a duplicate username, or storage failures
*/
func (service *Service) AddUser(context context.Context, request AddUserRequest) (*User, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	taken, err := service.repository.UsernameTaken(context, request.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict(fmt.Sprintf("Username %s is already taken.", request.Username))
	}

	passwordHash, err := sec.HashPassword(request.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_password_hash_failed: %w", err))
	}

	user := &User{
		Name:         request.Name,
		Username:     request.Username,
		PasswordHash: passwordHash,
	}

	if err := service.repository.CreateUser(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

/*
AddRole creates a new role with a unique name.

Parameters:
  - context: context.Context
  - request: AddRoleRequest

Returns:
  - *Role: The created role with its generated ID
  - error: apperr.Conflict on a duplicate role name, or storage failures
*/
func (service *Service) AddRole(context context.Context, request AddRoleRequest) (*Role, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	taken, err := service.repository.RoleNameTaken(context, request.RoleName)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict(fmt.Sprintf("Role with RoleName %s already exists", request.RoleName))
	}

	role := &Role{
		Name:        request.RoleName,
		Description: request.Description,
	}

	if err := service.repository.CreateRole(context, role); err != nil {
		return nil, err
	}

	return role, nil
}

/*
AssignRoles atomically links a user to one or more roles.

Description: Validation is fail-fast and runs before any row is written:
the user must exist, every role ID must exist, and no requested pair may
already be assigned. Role IDs are checked in request order and a duplicate
ID within the same request fails as already-assigned. Only after every
check passes are the rows inserted in one transactional batch, so a failure
anywhere leaves the store untouched.

Parameters:
  - context: context.Context
  - request: AssignRolesRequest

Returns:
  - bool: true when every assignment committed
  - error: The first validation failure, or storage failures
*/
func (service *Service) AssignRoles(context context.Context, request AssignRolesRequest) (bool, error) {
	if err := request.Validate(); err != nil {
		return false, err
	}

	if _, err := service.repository.FindUserByID(context, request.UserID); err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			return false, apperr.NotFound("user is not valid")
		}
		return false, err
	}

	seen := make(map[int64]struct{}, len(request.RoleIDs))
	userRoles := make([]UserRole, 0, len(request.RoleIDs))

	for _, roleID := range request.RoleIDs {
		exists, err := service.repository.RoleExists(context, roleID)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, apperr.NotFound(fmt.Sprintf("Role ID %d is not valid", roleID))
		}

		assigned, err := service.repository.UserRoleExists(context, request.UserID, roleID)
		if err != nil {
			return false, err
		}
		if _, duplicate := seen[roleID]; assigned || duplicate {
			return false, apperr.Conflict(fmt.Sprintf(
				"User %d is already assigned to role %d", request.UserID, roleID))
		}

		seen[roleID] = struct{}{}
		userRoles = append(userRoles, UserRole{UserID: request.UserID, RoleID: roleID})
	}

	if err := service.repository.CreateUserRoles(context, userRoles); err != nil {
		return false, err
	}

	return true, nil
}
