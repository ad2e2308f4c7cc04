package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/identikit/user-service/internal/api/metrics"
	"github.com/identikit/user-service/internal/core/domain"
	"github.com/identikit/user-service/internal/core/ports"
)

// Context keys under which the bearer gate stores the authenticated
// principal and the raw token (the latter is what logout revokes).
const (
	CtxUserID    = "user_id"
	CtxUsername  = "username"
	CtxFirstName = "first_name"
	CtxToken     = "token"
	CtxTokenExp  = "token_exp"
)

// Bearer gates a route on a valid, unrevoked bearer token. The check is
// stateless and runs before the handler; a failure short-circuits the request
// with 401 and the handler never executes.
func Bearer(issuer ports.TokenIssuer, revoker ports.TokenRevoker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.AuthRejectedTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthRejectedTotal.WithLabelValues("malformed_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			raw := parts[1]

			claim, expiresAt, err := issuer.Verify(raw)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					metrics.AuthRejectedTotal.WithLabelValues("expired").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				metrics.AuthRejectedTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if revoker != nil {
				revoked, err := revoker.IsRevoked(c.Request().Context(), raw)
				if err != nil {
					return err
				}
				if revoked {
					metrics.AuthRejectedTotal.WithLabelValues("revoked").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			c.Set(CtxUserID, claim.UserID)
			c.Set(CtxUsername, claim.Username)
			c.Set(CtxFirstName, claim.FirstName)
			c.Set(CtxToken, raw)
			c.Set(CtxTokenExp, expiresAt)

			return next(c)
		}
	}
}

// TokenFromContext returns the raw bearer token and its expiry as stored by
// the Bearer middleware.
func TokenFromContext(c echo.Context) (string, time.Time) {
	token, _ := c.Get(CtxToken).(string)
	exp, _ := c.Get(CtxTokenExp).(time.Time)
	return token, exp
}
