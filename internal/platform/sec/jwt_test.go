// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

package sec

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, tokenTTL time.Duration) *TokenService {
	t.Helper()

	service, err := NewTokenService(testSigningKey, "pims-api", "pims-clients", "access-token", tokenTTL)
	require.NoError(t, err)
	return service
}

func TestNewTokenServiceRejectsShortKey(t *testing.T) {
	_, err := NewTokenService("too-short", "pims-api", "pims-clients", "access-token", 10*time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing key")
}

func TestNewTokenServiceRejectsNonPositiveTTL(t *testing.T) {
	_, err := NewTokenService(testSigningKey, "pims-api", "pims-clients", "access-token", 0)
	require.Error(t, err)

	_, err = NewTokenService(testSigningKey, "pims-api", "pims-clients", "access-token", -time.Minute)
	require.Error(t, err)
}

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	service := newTestService(t, 10*time.Minute)

	tokenString, err := service.GenerateAccessToken(42, "admin", []string{"Admin", "User"})
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := service.VerifyToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "admin", claims.UserName)
	assert.Equal(t, []string{"Admin", "User"}, claims.Roles)
	assert.Equal(t, "access-token", claims.Subject)
	assert.Equal(t, "pims-api", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"pims-clients"}, claims.Audience)

	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, 10*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerifyTokenRejectsForeignKey(t *testing.T) {
	service := newTestService(t, 10*time.Minute)
	other, err := NewTokenService("ffffffffffffffffffffffffffffffff", "pims-api", "pims-clients", "access-token", 10*time.Minute)
	require.NoError(t, err)

	tokenString, err := other.GenerateAccessToken(1, "admin", nil)
	require.NoError(t, err)

	_, err = service.VerifyToken(tokenString)
	require.Error(t, err)
}

func TestVerifyTokenRejectsWrongIssuer(t *testing.T) {
	service := newTestService(t, 10*time.Minute)
	other, err := NewTokenService(testSigningKey, "someone-else", "pims-clients", "access-token", 10*time.Minute)
	require.NoError(t, err)

	tokenString, err := other.GenerateAccessToken(1, "admin", nil)
	require.NoError(t, err)

	_, err = service.VerifyToken(tokenString)
	require.Error(t, err)
}

func TestVerifyTokenRejectsUnsignedAlgorithm(t *testing.T) {
	service := newTestService(t, 10*time.Minute)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "pims-api",
			Audience: jwt.ClaimStrings{"pims-clients"},
		},
		UserID:   "1",
		UserName: "admin",
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.VerifyToken(tokenString)
	require.Error(t, err)
}

func TestVerifyTokenRejectsExpiredToken(t *testing.T) {
	service := newTestService(t, time.Millisecond)

	tokenString, err := service.GenerateAccessToken(1, "admin", nil)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = service.VerifyToken(tokenString)
	require.Error(t, err)
}

func TestHasRole(t *testing.T) {
	claims := &AuthClaims{Roles: []string{"Admin"}}

	assert.True(t, claims.HasRole("Admin"))
	assert.False(t, claims.HasRole("User"))
	assert.False(t, claims.HasRole("admin"))

	empty := &AuthClaims{}
	assert.False(t, empty.HasRole("Admin"))
}
