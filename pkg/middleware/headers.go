package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"beanline/pkg/auth"
)

const (
	HeaderActorID    = "X-Actor-Id"
	HeaderActorRole  = "X-Actor-Role"
	HeaderActorScope = "X-Actor-Scope"
)

// ActorHeaders trusts identity headers injected by the upstream auth proxy.
// When enabled=false it passes through (use DevLogin instead). A request
// without id or with an unknown role gets 401.
func ActorHeaders(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}
			h := c.Request().Header
			id := h.Get(HeaderActorID)
			role, ok := auth.ParseRole(h.Get(HeaderActorRole))
			if id == "" || !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid actor headers"})
			}
			auth.WithActor(c, auth.Actor{ID: id, Role: role, ScopeID: h.Get(HeaderActorScope)})
			return next(c)
		}
	}
}
