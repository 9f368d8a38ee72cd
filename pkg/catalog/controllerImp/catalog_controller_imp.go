package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"beanline/pkg/apperr"
	"beanline/pkg/catalog"
	"beanline/pkg/catalog/controller"
)

type catalogCtrl struct{ cat *catalog.Catalog }

func New(cat *catalog.Catalog) controller.CatalogController { return &catalogCtrl{cat} }

type stageSummary struct {
	Code       catalog.StageCode `json:"code"`
	Criteria   int               `json:"criteria"`
	Required   int               `json:"required"`
	MaxWastePc float64           `json:"max_waste_percent"`
}

type stageDetail struct {
	Code           catalog.StageCode       `json:"code"`
	Criteria       []catalog.Criterion     `json:"criteria"`
	FailureReasons []catalog.FailureReason `json:"failure_reasons"`
	MaxWastePc     float64                 `json:"max_waste_percent"`
}

// GET /catalog/stages
func (h *catalogCtrl) Stages(c echo.Context) error {
	out := []stageSummary{}
	for _, code := range h.cat.Stages() {
		list := h.cat.Criteria(code)
		req := 0
		for _, cr := range list {
			if cr.Required {
				req++
			}
		}
		out = append(out, stageSummary{Code: code, Criteria: len(list), Required: req, MaxWastePc: h.cat.MaxWastePercent(string(code))})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /catalog/stages/:code accepts aliases; the response carries the
// canonical code.
func (h *catalogCtrl) Stage(c echo.Context) error {
	code, err := catalog.ParseStageCode(c.Param("code"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, stageDetail{
		Code:           code,
		Criteria:       h.cat.Criteria(code),
		FailureReasons: h.cat.FailureReasons(code),
		MaxWastePc:     h.cat.MaxWastePercent(string(code)),
	})
}
