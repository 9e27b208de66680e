// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

package auth

import "context"

// # Credential Store Contract

// Repository defines the data access contract for the auth domain against a
// single logical transactional store.
//
// No retries are attempted at this layer; any underlying failure propagates
// as a store error and aborts the operation.
type Repository interface {

	/*
		FindUserByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindUserByUsername(context context.Context, username string) (*User, error)

	/*
		FindUserByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindUserByID(context context.Context, id int64) (*User, error)

	/*
		UsernameTaken reports whether a user row already holds the username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - bool: true if the username exists
		  - error: Database retrieval failures
	*/
	UsernameTaken(context context.Context, username string) (bool, error)

	/*
		RoleNameTaken reports whether a role row already holds the name.

		Parameters:
		  - context: context.Context
		  - name: string

		Returns:
		  - bool: true if the role name exists
		  - error: Database retrieval failures
	*/
	RoleNameTaken(context context.Context, name string) (bool, error)

	/*
		RoleExists reports whether a role row with the given ID exists.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - bool: true if the role exists
		  - error: Database retrieval failures
	*/
	RoleExists(context context.Context, id int64) (bool, error)

	/*
		UserRoleExists reports whether the (userID, roleID) pair is already linked.

		Parameters:
		  - context: context.Context
		  - userID: int64
		  - roleID: int64

		Returns:
		  - bool: true if the assignment exists
		  - error: Database retrieval failures
	*/
	UserRoleExists(context context.Context, userID, roleID int64) (bool, error)

	/*
		CreateUser persists a brand-new user account and fills the generated ID.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on a lost uniqueness race, or persistence failures
	*/
	CreateUser(context context.Context, user *User) error

	/*
		CreateRole persists a brand-new role and fills the generated ID.

		Parameters:
		  - context: context.Context
		  - role: *Role

		Returns:
		  - error: apperr.Conflict on a lost uniqueness race, or persistence failures
	*/
	CreateRole(context context.Context, role *Role) error

	/*
		CreateUserRoles inserts all given assignment rows as one transactional
		batch: either every row commits or none do. A concurrent reader never
		observes a partial assignment.

		Parameters:
		  - context: context.Context
		  - userRoles: []UserRole

		Returns:
		  - error: apperr.Conflict on a lost uniqueness race, or persistence failures
	*/
	CreateUserRoles(context context.Context, userRoles []UserRole) error

	/*
		RoleNamesForUser returns the names of every role assigned to the user
		(UserRole joined to Role), in role-ID order.

		Parameters:
		  - context: context.Context
		  - userID: int64

		Returns:
		  - []string: Zero or more role names
		  - error: Database retrieval failures
	*/
	RoleNamesForUser(context context.Context, userID int64) ([]string, error)
}
