package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/identikit/user-service/internal/core/ports"
	"github.com/identikit/user-service/internal/infrastructure/token"
)

type fakeRevoker struct {
	revoked map[string]bool
}

func (r *fakeRevoker) Revoke(_ context.Context, tok string, _ time.Time) error {
	r.revoked[tok] = true
	return nil
}

func (r *fakeRevoker) IsRevoked(_ context.Context, tok string) (bool, error) {
	return r.revoked[tok], nil
}

func issueToken(t *testing.T, issuer ports.TokenIssuer) string {
	t.Helper()
	signed, _, err := issuer.Issue(ports.Claim{UserID: "u1", Username: "alice", FirstName: "Alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return signed
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, mw(next)(c)
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", he.Code)
	}
}

func TestBearer_ValidToken(t *testing.T) {
	issuer := token.NewJWTIssuer("secret", time.Hour)
	signed := issueToken(t, issuer)
	mw := Bearer(issuer, &fakeRevoker{revoked: map[string]bool{}})

	called := false
	_, err := invoke(t, mw, "Bearer "+signed, func(c echo.Context) error {
		called = true
		if c.Get(CtxUserID) != "u1" {
			t.Fatalf("user_id not set")
		}
		if c.Get(CtxUsername) != "alice" {
			t.Fatalf("username not set")
		}
		if tok, exp := TokenFromContext(c); tok != signed || exp.IsZero() {
			t.Fatalf("raw token not propagated")
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestBearer_MissingHeader(t *testing.T) {
	issuer := token.NewJWTIssuer("secret", time.Hour)
	mw := Bearer(issuer, &fakeRevoker{revoked: map[string]bool{}})

	_, err := invoke(t, mw, "", func(c echo.Context) error {
		t.Fatalf("handler must not run without a token")
		return nil
	})
	assertUnauthorized(t, err)
}

func TestBearer_MalformedHeader(t *testing.T) {
	issuer := token.NewJWTIssuer("secret", time.Hour)
	mw := Bearer(issuer, &fakeRevoker{revoked: map[string]bool{}})

	for _, header := range []string{"token-without-scheme", "Basic abc"} {
		_, err := invoke(t, mw, header, func(c echo.Context) error {
			t.Fatalf("handler must not run for header %q", header)
			return nil
		})
		assertUnauthorized(t, err)
	}
}

func TestBearer_InvalidSignature(t *testing.T) {
	signed := issueToken(t, token.NewJWTIssuer("other-secret", time.Hour))
	mw := Bearer(token.NewJWTIssuer("secret", time.Hour), &fakeRevoker{revoked: map[string]bool{}})

	_, err := invoke(t, mw, "Bearer "+signed, func(c echo.Context) error {
		t.Fatalf("handler must not run with a foreign token")
		return nil
	})
	assertUnauthorized(t, err)
}

func TestBearer_ExpiredToken(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	mw := Bearer(token.NewJWTIssuer("secret", time.Hour), &fakeRevoker{revoked: map[string]bool{}})
	_, invokeErr := invoke(t, mw, "Bearer "+signed, func(c echo.Context) error {
		t.Fatalf("handler must not run with an expired token")
		return nil
	})
	assertUnauthorized(t, invokeErr)
}

func TestBearer_RevokedToken(t *testing.T) {
	issuer := token.NewJWTIssuer("secret", time.Hour)
	signed := issueToken(t, issuer)
	mw := Bearer(issuer, &fakeRevoker{revoked: map[string]bool{signed: true}})

	_, err := invoke(t, mw, "Bearer "+signed, func(c echo.Context) error {
		t.Fatalf("handler must not run with a revoked token")
		return nil
	})
	assertUnauthorized(t, err)
}
