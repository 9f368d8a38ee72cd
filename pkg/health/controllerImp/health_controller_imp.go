package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"beanline/pkg/catalog"
)

var appStart = time.Now()

type HealthCtrl struct {
	db  *gorm.DB
	cat *catalog.Catalog
}

func NewHealthCtrl(db *gorm.DB, cat *catalog.Catalog) *HealthCtrl {
	return &HealthCtrl{db: db, cat: cat}
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	dbOK := true
	dbErr := ""
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			dbOK = false
			dbErr = "db.DB(): " + err.Error()
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbOK = false
			dbErr = "ping: " + err.Error()
		}
	} else {
		dbOK = false
		dbErr = "gorm db is nil"
	}

	catOK := h.cat != nil
	catErr := ""
	stages := 0
	if catOK {
		stages = len(h.cat.Stages())
		if stages == 0 {
			catOK = false
			catErr = "no stage carries criteria"
		}
	} else {
		catErr = "catalog not loaded"
	}

	allOK := dbOK && catOK
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	type sub struct {
		OK  bool   `json:"ok"`
		Err string `json:"err,omitempty"`
	}

	resp := map[string]any{
		"status":     map[string]any{"ok": allOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"database": sub{OK: dbOK, Err: dbErr},
			"catalog":  sub{OK: catOK, Err: catErr},
		},
		"catalog_stages": stages,
		"time": time.Now().Format(time.RFC3339),
	}

	return c.JSON(status, resp)
}
