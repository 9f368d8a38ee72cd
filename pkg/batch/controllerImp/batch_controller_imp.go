package controllerImp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	"beanline/pkg/batch/controller"
	"beanline/pkg/batch/service"
)

type batchCtrl struct{ s service.BatchService }

func New(s service.BatchService) controller.BatchController { return &batchCtrl{s} }

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err == nil
}

func (h *batchCtrl) Create(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var req service.CreateBatchInput
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	b, err := h.s.Create(c.Request().Context(), a, req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *batchCtrl) Get(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid id")
	}
	b, err := h.s.Get(c.Request().Context(), a, id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *batchCtrl) List(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	out, err := h.s.List(c.Request().Context(), a)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *batchCtrl) Delete(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid id")
	}
	if err := h.s.Delete(c.Request().Context(), a, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *batchCtrl) Progression(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid id")
	}
	p, err := h.s.Progression(c.Request().Context(), a, id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
