package middleware

import (
	"github.com/labstack/echo/v4"

	"beanline/pkg/auth"
)

// DevLogin resolves the actor from the cookies set by /devlogin, falling back
// to an admin development actor.
func DevLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := auth.Actor{ID: auth.DevActorID, Role: auth.RoleAdmin}
			if ck, err := c.Cookie(auth.CookieActorID); err == nil && ck.Value != "" {
				a.ID = ck.Value
				a.Role = auth.RoleFarmer
				if ck, err := c.Cookie(auth.CookieActorRole); err == nil {
					if r, ok := auth.ParseRole(ck.Value); ok {
						a.Role = r
					}
				}
				if ck, err := c.Cookie(auth.CookieActorScope); err == nil {
					a.ScopeID = ck.Value
				}
			}
			auth.WithActor(c, a)
			return next(c)
		}
	}
}
