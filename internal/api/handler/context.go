package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lingoleap/learning-api/internal/api/middleware"
	"github.com/lingoleap/learning-api/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Authenticate middleware. A
// missing value means the route was mounted without the gate.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.Subject == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
