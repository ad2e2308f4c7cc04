package ports

import (
	"context"
	"time"
)

// Claim is the minimal user data embedded in an issued token.
type Claim struct {
	UserID    string
	Username  string
	FirstName string
}

// PasswordHasher provides one-way credential hashing.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a stored hash in constant
	// time. A mismatch returns false, never an error.
	Verify(password, hash string) bool
}

// TokenIssuer issues and verifies signed, time-bounded session tokens.
type TokenIssuer interface {
	Issue(claim Claim) (token string, expiresAt time.Time, err error)

	// Verify returns the embedded claim and expiry, or
	// domain.ErrTokenExpired / domain.ErrInvalidToken.
	Verify(token string) (Claim, time.Time, error)
}

// TokenRevoker invalidates individual tokens ahead of their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
