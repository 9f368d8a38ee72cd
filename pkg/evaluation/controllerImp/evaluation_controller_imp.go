package controllerImp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	"beanline/pkg/evaluation/controller"
	"beanline/pkg/evaluation/service"
)

type evalCtrl struct{ s service.EvaluationService }

func New(s service.EvaluationService) controller.EvaluationController { return &evalCtrl{s} }

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err == nil && id > 0
}

// withID resolves the actor and the :id param shared by most handlers. When
// ok is false the response has been written and err is what to return.
func withID(c echo.Context) (a auth.Actor, id uint, ok bool, err error) {
	a, err = auth.Require(c)
	if err != nil {
		return a, 0, false, apperr.Respond(c, err)
	}
	if id, ok = parseID(c); !ok {
		return a, 0, false, apperr.BadRequest(c, "invalid id")
	}
	return a, id, true, nil
}

// POST /batches/:id/evaluations
func (h *evalCtrl) Evaluate(c echo.Context) error {
	a, batchID, ok, err := withID(c)
	if !ok {
		return err
	}
	var req service.EvaluateInput
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	req.BatchID = batchID
	res, err := h.s.Evaluate(c.Request().Context(), a, req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// GET /evaluations?batch_id=&include_deleted=
func (h *evalCtrl) List(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var f service.ListFilter
	if v := c.QueryParam("batch_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return apperr.BadRequest(c, "invalid batch_id")
		}
		f.BatchID = uint(id)
	}
	if v := c.QueryParam("include_deleted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apperr.BadRequest(c, "invalid include_deleted")
		}
		f.IncludeDeleted = b
	}
	out, err := h.s.List(c.Request().Context(), a, f)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *evalCtrl) Get(c echo.Context) error {
	a, id, ok, err := withID(c)
	if !ok {
		return err
	}
	e, err := h.s.Get(c.Request().Context(), a, id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *evalCtrl) Patch(c echo.Context) error {
	a, id, ok, err := withID(c)
	if !ok {
		return err
	}
	var req service.EvaluationPatch
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	res, err := h.s.Update(c.Request().Context(), a, id, req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *evalCtrl) Delete(c echo.Context) error {
	a, id, ok, err := withID(c)
	if !ok {
		return err
	}
	if err := h.s.SoftDelete(c.Request().Context(), a, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *evalCtrl) Restore(c echo.Context) error {
	a, id, ok, err := withID(c)
	if !ok {
		return err
	}
	e, err := h.s.Restore(c.Request().Context(), a, id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *evalCtrl) HardDelete(c echo.Context) error {
	a, id, ok, err := withID(c)
	if !ok {
		return err
	}
	if err := h.s.HardDelete(c.Request().Context(), a, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type bulkRequest struct {
	IDs []uint `json:"ids"`
}

// POST /evaluations/bulk-hard-delete {"ids": [..]}
func (h *evalCtrl) BulkHardDelete(c echo.Context) error {
	a, err := auth.Require(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var req bulkRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	res, err := h.s.BulkHardDelete(c.Request().Context(), a, req.IDs)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *evalCtrl) Failure(c echo.Context) error {
	a, id, ok, err := withID(c)
	if !ok {
		return err
	}
	v, err := h.s.Failure(c.Request().Context(), a, id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

type decodeRequest struct {
	Text string `json:"text"`
}

// POST /failures/decode {"text": "..."}; failure is null when the text holds
// no record.
func (h *evalCtrl) DecodeFailure(c echo.Context) error {
	if _, err := auth.Require(c); err != nil {
		return apperr.Respond(c, err)
	}
	var req decodeRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(c, "bad json")
	}
	info := h.s.DecodeFailure(req.Text)
	return c.JSON(http.StatusOK, map[string]any{"failure": info, "is_failure": info != nil})
}
