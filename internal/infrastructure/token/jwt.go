// Package token implements the session token issuer on top of HS256 JWTs.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/identikit/user-service/internal/core/domain"
	"github.com/identikit/user-service/internal/core/ports"
)

const defaultTTL = 24 * time.Hour

// sessionClaims is the wire shape of an issued token: the registered claim
// set plus the user fields the API needs without a store round-trip.
type sessionClaims struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies session tokens with a shared HS256 secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *JWTIssuer) Issue(claim ports.Claim) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("jwt: signing secret not configured")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(i.ttl)
	claims := &sessionClaims{
		Username:  claim.Username,
		FirstName: claim.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt sign: %w", err)
	}
	return signed, expiresAt, nil
}

func (i *JWTIssuer) Verify(token string) (ports.Claim, time.Time, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.Claim{}, time.Time{}, domain.ErrTokenExpired
		}
		return ports.Claim{}, time.Time{}, domain.ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return ports.Claim{}, time.Time{}, domain.ErrInvalidToken
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return ports.Claim{
		UserID:    claims.Subject,
		Username:  claims.Username,
		FirstName: claims.FirstName,
	}, expiresAt, nil
}
