// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth package's TokenProvider interface.
package sec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minSigningKeyLength guards against weak HMAC keys. Anything shorter than
// the HS256 block-derived minimum is a fatal configuration error at startup.
const minSigningKeyLength = 32

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID, UserName, and role names directly inside the JWT,
// the [middleware.Authenticate] chain can reconstruct the active user context
// WITHOUT querying the database on every single API request. Any bearer-token
// verifier holding the same symmetric key can validate the token offline —
// there is no server-side session state.
type AuthClaims struct {
	jwt.RegisteredClaims

	// UserID is the numeric account identifier, carried as a string claim.
	UserID string `json:"UserID"`
	// UserName is the unique login name of the account.
	UserName string `json:"UserName"`
	// Roles holds one entry per role assigned to the user (zero or more).
	Roles []string `json:"role,omitempty"`
}

// HasRole reports whether the token carries a claim for the named role.
func (c *AuthClaims) HasRole(name string) bool {
	for _, role := range c.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// TokenService handles generation and verification of JWT tokens using HS256.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
	subject    string
	tokenTTL   time.Duration
}

// NewTokenService creates a new TokenService with a symmetric signing key.
//
// A missing or short key is rejected here so that misconfiguration aborts
// startup instead of failing per-request.
func NewTokenService(signingKey, issuer, audience, subject string, tokenTTL time.Duration) (*TokenService, error) {
	if len(signingKey) < minSigningKeyLength {
		return nil, fmt.Errorf("sec: signing key must be at least %d bytes, got %d", minSigningKeyLength, len(signingKey))
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("sec: token TTL must be positive, got %s", tokenTTL)
	}

	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		subject:    subject,
		tokenTTL:   tokenTTL,
	}, nil
}

// GenerateAccessToken creates a signed bearer token for a user.
//
// The claim set carries the configured subject, the numeric user ID, the
// username, and one role entry per assigned role. The token expires at
// issuance time plus the configured validity window.
func (service *TokenService) GenerateAccessToken(userID int64, username string, roles []string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   service.subject,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{service.audience},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.tokenTTL)),
		},
		UserID:   strconv.FormatInt(userID, 10),
		UserName: username,
		Roles:    roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.signingKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.signingKey, nil
	},
		jwt.WithIssuer(service.issuer),
		jwt.WithAudience(service.audience),
	)

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
