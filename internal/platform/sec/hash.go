// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when an empty plaintext is offered for hashing.
// An empty secret must be an error, never silently hashed.
var ErrEmptyPassword = errors.New("sec: password must not be empty")

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// The resulting string is self-describing: it encodes the algorithm version,
// cost factor, and salt, so verification needs no out-of-band parameters.
func HashPassword(plainTextPassword string) (string, error) {
	if plainTextPassword == "" {
		return "", ErrEmptyPassword
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
//
// bcrypt performs a constant-time comparison internally, so the result does
// not leak which character of the password mismatched.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
