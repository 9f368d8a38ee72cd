package controllerImp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	"beanline/pkg/waste/controller"
	"beanline/pkg/waste/service"
)

type wasteCtrl struct{ s service.WasteService }

func New(s service.WasteService) controller.WasteController { return &wasteCtrl{s} }

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err == nil && id > 0
}

// POST /progress/:id/waste. A threshold breach still answers 201 with the
// warning in the body.
func (h *wasteCtrl) Record(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	progressID, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid progress id")
	}
	var req service.RecordWasteInput
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	req.ProgressID = progressID
	res, err := h.s.Record(c.Request().Context(), a, req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *wasteCtrl) List(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	progressID, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid progress id")
	}
	out, err := h.s.List(c.Request().Context(), a, progressID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *wasteCtrl) Dispose(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid id")
	}
	w, err := h.s.MarkDisposed(c.Request().Context(), a, id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *wasteCtrl) Delete(c echo.Context) error {
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

// GET /batches/:id/waste/stats
func (h *wasteCtrl) Stats(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	batchID, ok := parseID(c)
	if !ok {
		return apperr.BadRequest(c, "invalid batch id")
	}
	st, err := h.s.Stats(c.Request().Context(), a, batchID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
