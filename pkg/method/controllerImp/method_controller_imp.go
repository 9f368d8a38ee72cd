package controllerImp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	"beanline/pkg/method/controller"
	"beanline/pkg/method/service"
)

type methodCtrl struct{ s service.MethodService }

func New(s service.MethodService) controller.MethodController { return &methodCtrl{s} }

func (h *methodCtrl) Create(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var req service.CreateMethodInput
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	m, err := h.s.Create(c.Request().Context(), a, req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *methodCtrl) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.BadRequest(c, "invalid id")
	}
	m, err := h.s.Get(c.Request().Context(), uint(id))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *methodCtrl) List(c echo.Context) error {
	out, err := h.s.List(c.Request().Context())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *methodCtrl) Delete(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.BadRequest(c, "invalid id")
	}
	if err := h.s.Delete(c.Request().Context(), a, uint(id)); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
