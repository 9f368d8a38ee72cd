package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"beanline/config"
	"beanline/database"
	"beanline/pkg/catalog"
	"beanline/pkg/notify"
	"beanline/router"

	authCtrlImp "beanline/pkg/auth/controllerImp"
	catalogCtrlImp "beanline/pkg/catalog/controllerImp"
	healthCtrlImp "beanline/pkg/health/controllerImp"

	batchCtrlImp "beanline/pkg/batch/controllerImp"
	batchSvcImp "beanline/pkg/batch/serviceImp"
	evalCtrlImp "beanline/pkg/evaluation/controllerImp"
	evalSvcImp "beanline/pkg/evaluation/serviceImp"
	methodCtrlImp "beanline/pkg/method/controllerImp"
	methodSvcImp "beanline/pkg/method/serviceImp"
	progressCtrlImp "beanline/pkg/progress/controllerImp"
	progressSvcImp "beanline/pkg/progress/serviceImp"
	wasteCtrlImp "beanline/pkg/waste/controllerImp"
	wasteSvcImp "beanline/pkg/waste/serviceImp"
)

func main() {
	// 1) Config
	cfg := config.Load()

	// 2) DB (sqlite) + automigrate + legacy failure backfill
	db := database.OpenSQLite(cfg.DBPath)

	// 3) Criteria catalog: built-in defaults, then sheet, then YAML
	cat, err := catalog.FromFiles(cfg.CatalogFile, cfg.CatalogXLSX)
	if err != nil {
		log.Fatalf("[cfg] catalog: %v", err)
	}
	log.Printf("[cfg] catalog loaded: %d stages", len(cat.Stages()))

	// 4) Status notifications
	var n notify.Notifier = notify.NewLog()
	if cfg.NotifyWebhookURL != "" {
		n = notify.NewWebhook(cfg.NotifyWebhookURL)
	}
	n = notify.Async(n)

	// 5) Services + controllers
	h := router.Controllers{
		Auth:       authCtrlImp.NewAuthController(),
		Health:     healthCtrlImp.NewHealthCtrl(db, cat),
		Catalog:    catalogCtrlImp.New(cat),
		Method:     methodCtrlImp.New(methodSvcImp.NewMethodService(db)),
		Batch:      batchCtrlImp.New(batchSvcImp.NewBatchService(db)),
		Progress:   progressCtrlImp.New(progressSvcImp.NewProgressService(db)),
		Waste:      wasteCtrlImp.New(wasteSvcImp.NewWasteService(db, cat)),
		Evaluation: evalCtrlImp.New(evalSvcImp.NewEvaluationService(db, cat, n)),
	}

	// 6) Echo
	e := echo.New()
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.Logger())
	r := router.New(e, h, cfg.EnableActorHeaders)

	// 7) Start
	log.Printf("listening on :%s", cfg.Port)
	if err := r.Start(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
