package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"beanline/pkg/auth"
	"beanline/pkg/auth/controller"
)

type authCtrl struct{}

func NewAuthController() controller.AuthController { return &authCtrl{} }

// DevLogin stores a development identity in cookies; the DevLogin
// middleware picks it up on later requests.
func (h *authCtrl) DevLogin(c echo.Context) error {
	a := auth.Actor{ID: c.QueryParam("uid"), ScopeID: c.QueryParam("scope")}
	if a.ID == "" {
		a.ID = auth.DevActorID
	}
	role, ok := auth.ParseRole(c.QueryParam("role"))
	if !ok {
		role = auth.RoleAdmin
	}
	a.Role = role
	c.SetCookie(&http.Cookie{Name: auth.CookieActorID, Value: a.ID, Path: "/"})
	c.SetCookie(&http.Cookie{Name: auth.CookieActorRole, Value: string(a.Role), Path: "/"})
	c.SetCookie(&http.Cookie{Name: auth.CookieActorScope, Value: a.ScopeID, Path: "/"})
	return c.JSON(http.StatusOK, a)
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	a, ok := auth.FromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no actor"})
	}
	return c.JSON(http.StatusOK, map[string]any{"actor": a, "flags": a.Flags()})
}
