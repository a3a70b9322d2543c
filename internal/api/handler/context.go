package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pointplay/rewards-gateway/internal/api/middleware"
	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// requireSession extracts the session the middleware resolved for this
// request, failing with 401 when none is present.
func requireSession(c echo.Context) (*domain.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return sess, nil
}

// bearerToken pulls the raw ticket out of the Authorization header, or ""
// when absent or malformed.
func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
