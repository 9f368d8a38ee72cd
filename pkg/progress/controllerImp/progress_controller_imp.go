package controllerImp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	"beanline/pkg/progress/controller"
	"beanline/pkg/progress/service"
)

type progressCtrl struct{ s service.ProgressService }

func New(s service.ProgressService) controller.ProgressController { return &progressCtrl{s} }

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err == nil && id > 0
}

// POST /batches/:id/progress
func (h *progressCtrl) Record(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	batchID, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid batch id")
	}
	var req service.RecordInput
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	req.BatchID = batchID
	p, err := h.s.Record(c.Request().Context(), a, req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// GET /batches/:id/progress
func (h *progressCtrl) List(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	batchID, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid batch id")
	}
	out, err := h.s.List(c.Request().Context(), a, batchID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *progressCtrl) Get(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid id")
	}
	p, err := h.s.Get(c.Request().Context(), a, id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *progressCtrl) Patch(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid id")
	}
	var req service.ProgressPatch
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	p, err := h.s.Update(c.Request().Context(), a, id, req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *progressCtrl) Delete(c echo.Context) error {
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

func (h *progressCtrl) HardDelete(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid id")
	}
	if err := h.s.HardDelete(c.Request().Context(), a, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
