// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allsoft/pims/internal/platform/apperr"
	"github.com/allsoft/pims/internal/platform/constants"
	"github.com/allsoft/pims/internal/platform/sec"
)

// fakeRepository is an in-memory Repository used to exercise the service
// layer without a database.
type fakeRepository struct {
	users     map[int64]*User
	roles     map[int64]*Role
	userRoles map[[2]int64]struct{}
	nextID    int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:     make(map[int64]*User),
		roles:     make(map[int64]*Role),
		userRoles: make(map[[2]int64]struct{}),
		nextID:    1,
	}
}

func (repository *fakeRepository) FindUserByUsername(_ context.Context, username string) (*User, error) {
	for _, user := range repository.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (repository *fakeRepository) FindUserByID(_ context.Context, id int64) (*User, error) {
	user, ok := repository.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	copied := *user
	return &copied, nil
}

func (repository *fakeRepository) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, user := range repository.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (repository *fakeRepository) RoleNameTaken(_ context.Context, name string) (bool, error) {
	for _, role := range repository.roles {
		if role.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (repository *fakeRepository) RoleExists(_ context.Context, id int64) (bool, error) {
	_, ok := repository.roles[id]
	return ok, nil
}

func (repository *fakeRepository) UserRoleExists(_ context.Context, userID, roleID int64) (bool, error) {
	_, ok := repository.userRoles[[2]int64{userID, roleID}]
	return ok, nil
}

func (repository *fakeRepository) CreateUser(_ context.Context, user *User) error {
	user.ID = repository.nextID
	repository.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	repository.users[user.ID] = &copied
	return nil
}

func (repository *fakeRepository) CreateRole(_ context.Context, role *Role) error {
	role.ID = repository.nextID
	repository.nextID++
	copied := *role
	repository.roles[role.ID] = &copied
	return nil
}

func (repository *fakeRepository) CreateUserRoles(_ context.Context, userRoles []UserRole) error {
	for _, userRole := range userRoles {
		repository.userRoles[[2]int64{userRole.UserID, userRole.RoleID}] = struct{}{}
	}
	return nil
}

func (repository *fakeRepository) RoleNamesForUser(_ context.Context, userID int64) ([]string, error) {
	var names []string
	for roleID, role := range repository.roles {
		if _, ok := repository.userRoles[[2]int64{userID, roleID}]; ok {
			names = append(names, role.Name)
		}
	}
	return names, nil
}

// newTestTokenService builds a TokenService with a fixed development key.
func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	tokens, err := sec.NewTokenService(
		"0123456789abcdef0123456789abcdef",
		"pims-api",
		"pims-clients",
		"access-token",
		10*time.Minute,
	)
	require.NoError(t, err)
	return tokens
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *sec.TokenService) {
	t.Helper()

	repository := newFakeRepository()
	tokens := newTestTokenService(t)
	return NewService(repository, tokens), repository, tokens
}

// seedUser registers an account through the service so the stored hash is a
// real bcrypt digest.
func seedUser(t *testing.T, service *Service, name, username, password string) *User {
	t.Helper()

	user, err := service.AddUser(context.Background(), AddUserRequest{
		Name:     name,
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func seedRole(t *testing.T, service *Service, name string) *Role {
	t.Helper()

	role, err := service.AddRole(context.Background(), AddRoleRequest{
		RoleName:    name,
		Description: name + " role",
	})
	require.NoError(t, err)
	return role
}

func TestLoginIssuesTokenWithRoleClaims(t *testing.T) {
	service, _, tokens := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, service, "Administrator", "admin@123", "Pass@123")
	role := seedRole(t, service, constants.RoleAdmin)

	ok, err := service.AssignRoles(ctx, AssignRolesRequest{
		UserID:  admin.ID,
		RoleIDs: []int64{role.ID},
	})
	require.NoError(t, err)
	require.True(t, ok)

	result, err := service.Login(ctx, LoginRequest{Username: "admin@123", Password: "Pass@123"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := tokens.VerifyToken(result.Token)
	require.NoError(t, err)

	assert.Equal(t, "1", claims.UserID)
	assert.Equal(t, "admin@123", claims.UserName)
	assert.Equal(t, []string{constants.RoleAdmin}, claims.Roles)
	assert.Equal(t, "access-token", claims.Subject)
	assert.Equal(t, "pims-api", claims.Issuer)
	assert.True(t, claims.HasRole(constants.RoleAdmin))

	require.NotNil(t, claims.ExpiresAt)
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 9*time.Minute)
	assert.LessOrEqual(t, remaining, 10*time.Minute)
}

func TestLoginWithoutRolesOmitsRoleClaim(t *testing.T) {
	service, _, tokens := newTestService(t)
	ctx := context.Background()

	seedUser(t, service, "Plain User", "plain", "Secret@1")

	result, err := service.Login(ctx, LoginRequest{Username: "plain", Password: "Secret@1"})
	require.NoError(t, err)

	claims, err := tokens.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Empty(t, claims.Roles)
	assert.False(t, claims.HasRole(constants.RoleAdmin))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	seedUser(t, service, "Administrator", "admin", "Pass@123")

	_, unknownErr := service.Login(ctx, LoginRequest{Username: "ghost", Password: "Pass@123"})
	_, wrongPassErr := service.Login(ctx, LoginRequest{Username: "admin", Password: "wrong"})

	require.Error(t, unknownErr)
	require.Error(t, wrongPassErr)

	unknownApp := apperr.As(unknownErr)
	wrongPassApp := apperr.As(wrongPassErr)
	require.NotNil(t, unknownApp)
	require.NotNil(t, wrongPassApp)

	assert.Equal(t, "Invalid login attempt", unknownApp.Message)
	assert.Equal(t, unknownApp.Message, wrongPassApp.Message)
	assert.Equal(t, unknownApp.Code, wrongPassApp.Code)
	assert.Equal(t, unknownApp.HTTPStatus, wrongPassApp.HTTPStatus)
}

func TestLoginRejectsMissingFields(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Login(context.Background(), LoginRequest{Username: "", Password: ""})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
}

func TestAddUserRejectsOverlongPassword(t *testing.T) {
	service, _, _ := newTestService(t)

	// One byte past bcrypt's 72-byte input limit must fail validation,
	// never reach the hasher, and never surface as a server error.
	long := strings.Repeat("a", 73)
	_, err := service.AddUser(context.Background(), AddUserRequest{
		Name:     "Long Password",
		Username: "longpass",
		Password: long,
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
	require.Len(t, appError.Details, 1)
	assert.Equal(t, FieldPassword, appError.Details[0].Field)

	// Exactly 72 bytes is still accepted.
	user, err := service.AddUser(context.Background(), AddUserRequest{
		Name:     "Max Password",
		Username: "maxpass",
		Password: strings.Repeat("a", 72),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestAddUserRejectsDuplicateUsername(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	seedUser(t, service, "First", "admin", "Pass@123")

	_, err := service.AddUser(ctx, AddUserRequest{
		Name:     "Second",
		Username: "admin",
		Password: "Other@456",
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Equal(t, "Username admin is already taken.", appError.Message)
}

// racingRepository simulates losing a uniqueness race: the pre-check sees a
// free username but the insert hits the storage constraint.
type racingRepository struct {
	*fakeRepository
}

func (repository *racingRepository) UsernameTaken(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (repository *racingRepository) CreateUser(_ context.Context, user *User) error {
	return apperr.Conflict(fmt.Sprintf("Username %s is already taken.", user.Username))
}

func TestAddUserLostUniquenessRaceSurfacesConflict(t *testing.T) {
	tokens := newTestTokenService(t)
	service := NewService(&racingRepository{newFakeRepository()}, tokens)

	_, err := service.AddUser(context.Background(), AddUserRequest{
		Name:     "Second",
		Username: "admin",
		Password: "Pass@123",
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Equal(t, "Username admin is already taken.", appError.Message)
}

func TestAddUserNeverStoresPlaintext(t *testing.T) {
	service, repository, _ := newTestService(t)

	user := seedUser(t, service, "Administrator", "admin", "Pass@123")

	stored := repository.users[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Pass@123", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("Pass@123", stored.PasswordHash))
}

func TestAddRoleRejectsDuplicateName(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	seedRole(t, service, constants.RoleAdmin)

	_, err := service.AddRole(ctx, AddRoleRequest{RoleName: constants.RoleAdmin})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Equal(t, "Role with RoleName Admin already exists", appError.Message)
}

func TestAssignRolesRejectsUnknownUser(t *testing.T) {
	service, repository, _ := newTestService(t)

	role := seedRole(t, service, constants.RoleAdmin)

	ok, err := service.AssignRoles(context.Background(), AssignRolesRequest{
		UserID:  999,
		RoleIDs: []int64{role.ID},
	})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "user is not valid", apperr.As(err).Message)
	assert.Empty(t, repository.userRoles)
}

func TestAssignRolesRejectsUnknownRoleWithoutPartialWrite(t *testing.T) {
	service, repository, _ := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, service, "Administrator", "admin", "Pass@123")
	role := seedRole(t, service, constants.RoleAdmin)

	// The valid role comes first; the bad ID must still abort everything.
	ok, err := service.AssignRoles(ctx, AssignRolesRequest{
		UserID:  user.ID,
		RoleIDs: []int64{role.ID, 999},
	})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Role ID 999 is not valid", apperr.As(err).Message)
	assert.Empty(t, repository.userRoles)
}

func TestAssignRolesRejectsExistingAssignment(t *testing.T) {
	service, repository, _ := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, service, "Administrator", "admin", "Pass@123")
	adminRole := seedRole(t, service, constants.RoleAdmin)
	userRole := seedRole(t, service, constants.RoleUser)

	ok, err := service.AssignRoles(ctx, AssignRolesRequest{
		UserID:  user.ID,
		RoleIDs: []int64{adminRole.ID},
	})
	require.NoError(t, err)
	require.True(t, ok)

	// Re-assigning the same role aborts the whole request, including the
	// not-yet-assigned second role.
	ok, err = service.AssignRoles(ctx, AssignRolesRequest{
		UserID:  user.ID,
		RoleIDs: []int64{adminRole.ID, userRole.ID},
	})
	require.Error(t, err)
	assert.False(t, ok)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Contains(t, appError.Message, "is already assigned to role")

	_, secondAssigned := repository.userRoles[[2]int64{user.ID, userRole.ID}]
	assert.False(t, secondAssigned)
}

func TestAssignRolesRejectsDuplicateIDsInOneRequest(t *testing.T) {
	service, repository, _ := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, service, "Administrator", "admin", "Pass@123")
	role := seedRole(t, service, constants.RoleAdmin)

	ok, err := service.AssignRoles(ctx, AssignRolesRequest{
		UserID:  user.ID,
		RoleIDs: []int64{role.ID, role.ID},
	})
	require.Error(t, err)
	assert.False(t, ok)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Empty(t, repository.userRoles)
}

func TestAssignRolesCommitsAllRows(t *testing.T) {
	service, repository, _ := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, service, "Administrator", "admin", "Pass@123")
	adminRole := seedRole(t, service, constants.RoleAdmin)
	userRole := seedRole(t, service, constants.RoleUser)

	ok, err := service.AssignRoles(ctx, AssignRolesRequest{
		UserID:  user.ID,
		RoleIDs: []int64{adminRole.ID, userRole.ID},
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, repository.userRoles, 2)

	names, err := repository.RoleNamesForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{constants.RoleAdmin, constants.RoleUser}, names)
}

func TestAssignRolesRejectsEmptyRoleList(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, service, "Administrator", "admin", "Pass@123")

	ok, err := service.AssignRoles(ctx, AssignRolesRequest{UserID: user.ID, RoleIDs: nil})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
