// Package service provides confirmation token generation and verification for
// privacy requests. Tokens are random 256-bit values hashed with Argon2id.
package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/privacy/internal/errors"
)

// tokenService implements TokenService using Argon2id for token hashing.
type tokenService struct {
	hasher *pwdhash.PasswordHasher
}

// NewTokenService creates a new TokenService instance using Argon2id hashing.
// Uses the Interactive policy: confirmation links are verified on a user-facing
// request path, so hashing has to stay responsive while still resisting brute
// force against a leaked hash.
func NewTokenService() (TokenService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create token hasher")
	}

	return &tokenService{hasher: hasher}, nil
}

// GenerateToken creates a new cryptographically secure 32-byte random token.
// The token is base64 URL-encoded for embedding in confirmation links.
// Returns the plain token and its Argon2id hash.
func (t *tokenService) GenerateToken() (plainToken string, hashedToken string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken = base64.URLEncoding.EncodeToString(randomBytes)

	hashedToken, err = t.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash token")
	}

	return plainToken, hashedToken, nil
}

// CompareToken performs a constant-time comparison between a plain token and its hash.
func (t *tokenService) CompareToken(plainToken string, hashedToken string) bool {
	ok, err := t.hasher.Verify([]byte(plainToken), hashedToken)
	if err != nil {
		return false
	}
	return ok
}
