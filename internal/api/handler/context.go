package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gccconnect/connect/internal/api/middleware"
	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/service"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// value means the route was wired without Auth.
func ctxClaims(c echo.Context) (*service.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(*service.Claims)
	if !ok || claims == nil || claims.Subject == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// ctxSnapshot builds a session snapshot from optional claims. Requests
// without claims are anonymous.
func ctxSnapshot(c echo.Context) domain.Snapshot {
	claims, ok := c.Get(middleware.ClaimsKey).(*service.Claims)
	if !ok || claims == nil {
		return domain.AnonymousSnapshot()
	}
	return domain.SnapshotOf(domain.Session{Identity: claims.Identity()}, 0)
}
