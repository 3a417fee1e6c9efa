package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lingoleap/learning-api/internal/api/metrics"
	"github.com/lingoleap/learning-api/internal/core/domain"
	"github.com/lingoleap/learning-api/internal/core/ports"
)

const claimsKey = "auth.claims"

// Authenticate validates the bearer access token and injects its claims into
// the echo context. It never touches the credential store, so an access token
// stays usable until it expires even after logout.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject("missing_header", "missing authorization header")
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return reject("malformed_header", "invalid authorization header")
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				return reject("invalid_token", "invalid or expired token")
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func reject(reason, msg string) error {
	metrics.TokenVerificationFailuresTotal.WithLabelValues(reason).Inc()
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
