package router

import (
	"github.com/labstack/echo/v4"

	authCtrl "beanline/pkg/auth/controller"
	batchCtrl "beanline/pkg/batch/controller"
	catalogCtrl "beanline/pkg/catalog/controller"
	evalCtrl "beanline/pkg/evaluation/controller"
	methodCtrl "beanline/pkg/method/controller"
	"beanline/pkg/middleware"
	progressCtrl "beanline/pkg/progress/controller"
	wasteCtrl "beanline/pkg/waste/controller"
)

type Controllers struct {
	Auth       authCtrl.AuthController
	Health     interface{ Health(echo.Context) error }
	Catalog    catalogCtrl.CatalogController
	Method     methodCtrl.MethodController
	Batch      batchCtrl.BatchController
	Progress   progressCtrl.ProgressController
	Waste      wasteCtrl.WasteController
	Evaluation evalCtrl.EvaluationController
}

// New registers every route. With actorHeaders the caller identity comes
// from X-Actor-* headers, otherwise from the devlogin cookies.
func New(e *echo.Echo, h Controllers, actorHeaders bool) *echo.Echo {
	e.GET("/health", h.Health.Health)

	actor := middleware.DevLogin()
	if actorHeaders {
		actor = middleware.ActorHeaders(true)
	}
	api := e.Group("", actor)

	api.GET("/whoami", h.Auth.WhoAmI)
	api.GET("/devlogin", h.Auth.DevLogin)

	api.GET("/catalog/stages", h.Catalog.Stages)
	api.GET("/catalog/stages/:code", h.Catalog.Stage)

	api.POST("/methods", h.Method.Create)
	api.GET("/methods", h.Method.List)
	api.GET("/methods/:id", h.Method.Get)
	api.DELETE("/methods/:id", h.Method.Delete)

	api.POST("/batches", h.Batch.Create)
	api.GET("/batches", h.Batch.List)
	api.GET("/batches/:id", h.Batch.Get)
	api.DELETE("/batches/:id", h.Batch.Delete)
	api.GET("/batches/:id/progression", h.Batch.Progression)

	api.POST("/batches/:id/progress", h.Progress.Record)
	api.GET("/batches/:id/progress", h.Progress.List)
	api.GET("/progress/:id", h.Progress.Get)
	api.PATCH("/progress/:id", h.Progress.Patch)
	api.DELETE("/progress/:id", h.Progress.Delete)
	api.DELETE("/progress/:id/hard", h.Progress.HardDelete)

	api.POST("/progress/:id/waste", h.Waste.Record)
	api.GET("/progress/:id/waste", h.Waste.List)
	api.PATCH("/waste/:id/dispose", h.Waste.Dispose)
	api.DELETE("/waste/:id", h.Waste.Delete)
	api.GET("/batches/:id/waste/stats", h.Waste.Stats)

	api.POST("/batches/:id/evaluations", h.Evaluation.Evaluate)
	api.GET("/evaluations", h.Evaluation.List)
	api.POST("/evaluations/bulk-hard-delete", h.Evaluation.BulkHardDelete)
	api.GET("/evaluations/:id", h.Evaluation.Get)
	api.PATCH("/evaluations/:id", h.Evaluation.Patch)
	api.DELETE("/evaluations/:id", h.Evaluation.Delete)
	api.POST("/evaluations/:id/restore", h.Evaluation.Restore)
	api.DELETE("/evaluations/:id/hard", h.Evaluation.HardDelete)
	api.GET("/evaluations/:id/failure", h.Evaluation.Failure)
	api.POST("/failures/decode", h.Evaluation.DecodeFailure)
	return e
}
