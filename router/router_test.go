package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"beanline/internal/fixture"
	"beanline/pkg/auth"
	"beanline/pkg/catalog"
	"beanline/pkg/notify"

	authCtrlImp "beanline/pkg/auth/controllerImp"
	batchCtrlImp "beanline/pkg/batch/controllerImp"
	batchSvcImp "beanline/pkg/batch/serviceImp"
	catalogCtrlImp "beanline/pkg/catalog/controllerImp"
	evalCtrlImp "beanline/pkg/evaluation/controllerImp"
	evalSvcImp "beanline/pkg/evaluation/serviceImp"
	healthCtrlImp "beanline/pkg/health/controllerImp"
	methodCtrlImp "beanline/pkg/method/controllerImp"
	methodSvcImp "beanline/pkg/method/serviceImp"
	progressCtrlImp "beanline/pkg/progress/controllerImp"
	progressSvcImp "beanline/pkg/progress/serviceImp"
	wasteCtrlImp "beanline/pkg/waste/controllerImp"
	wasteSvcImp "beanline/pkg/waste/serviceImp"
)

func server(t *testing.T) *echo.Echo {
	t.Helper()
	db := fixture.DB(t)
	cat := catalog.Default()
	h := Controllers{
		Auth:       authCtrlImp.NewAuthController(),
		Health:     healthCtrlImp.NewHealthCtrl(db, cat),
		Catalog:    catalogCtrlImp.New(cat),
		Method:     methodCtrlImp.New(methodSvcImp.NewMethodService(db)),
		Batch:      batchCtrlImp.New(batchSvcImp.NewBatchService(db)),
		Progress:   progressCtrlImp.New(progressSvcImp.NewProgressService(db)),
		Waste:      wasteCtrlImp.New(wasteSvcImp.NewWasteService(db, cat)),
		Evaluation: evalCtrlImp.New(evalSvcImp.NewEvaluationService(db, cat, notify.NewLog())),
	}
	return New(echo.New(), h, true)
}

func call(t *testing.T, e *echo.Echo, as *auth.Actor, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if as != nil {
		r.Header.Set("X-Actor-Id", as.ID)
		r.Header.Set("X-Actor-Role", string(as.Role))
		r.Header.Set("X-Actor-Scope", as.ScopeID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)
	out := map[string]any{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
	}
	return rec.Code, out
}

func id(t *testing.T, m map[string]any, key string) uint {
	t.Helper()
	v, ok := m[key].(float64)
	if !ok {
		t.Fatalf("no %s in %v", key, m)
	}
	return uint(v)
}

func TestBatchFlow(t *testing.T) {
	e := server(t)
	admin, farmer, expert, outside := fixture.Admin, fixture.Farmer, fixture.Expert, fixture.Outside

	code, m := call(t, e, &admin, http.MethodPost, "/methods", `{"code":"NAT","name":"Natural","stages":[
		{"code":"harvesting","name":"Harvesting","is_required":true},
		{"code":"drying","name":"Drying","is_required":true}]}`)
	if code != http.StatusCreated {
		t.Fatalf("create method %d %v", code, m)
	}
	methodID := id(t, m, "ID")

	code, m = call(t, e, &farmer, http.MethodPost, "/batches", fmt.Sprintf(`{"method_id":%d,"input_quantity":200,"input_unit":"kg"}`, methodID))
	if code != http.StatusCreated {
		t.Fatalf("create batch %d %v", code, m)
	}
	batchID := id(t, m, "ID")

	code, m = call(t, e, &farmer, http.MethodPost, fmt.Sprintf("/batches/%d/progress", batchID), `{"step_index":2,"output_quantity":180,"output_unit":"kg"}`)
	if code != http.StatusConflict {
		t.Fatalf("skipped step: %d %v", code, m)
	}
	code, m = call(t, e, &farmer, http.MethodPost, fmt.Sprintf("/batches/%d/progress", batchID), `{"step_index":1,"output_quantity":180,"output_unit":"kg"}`)
	if code != http.StatusCreated {
		t.Fatalf("record step 1: %d %v", code, m)
	}
	code, m = call(t, e, &farmer, http.MethodPost, fmt.Sprintf("/batches/%d/progress", batchID), `{"step_index":2,"output_quantity":100,"output_unit":"kg"}`)
	if code != http.StatusCreated {
		t.Fatalf("record step 2: %d %v", code, m)
	}
	progressID := id(t, m, "ID")

	code, m = call(t, e, &farmer, http.MethodPost, fmt.Sprintf("/progress/%d/waste", progressID), `{"waste_type":"husk","quantity":12,"unit":"kg"}`)
	if code != http.StatusCreated || m["exceeds_threshold"] != true {
		t.Fatalf("waste over the drying limit should warn but store: %d %v", code, m)
	}

	evalBody := `{"stage_code":"drying","result":"Fail","criteria":[{"criteria_id":"DRY_MOISTURE","actual_value":13.5}]}`
	code, m = call(t, e, &farmer, http.MethodPost, fmt.Sprintf("/batches/%d/evaluations", batchID), evalBody)
	if code != http.StatusForbidden {
		t.Fatalf("farmer evaluating: %d %v", code, m)
	}
	code, m = call(t, e, &expert, http.MethodPost, fmt.Sprintf("/batches/%d/evaluations", batchID), evalBody)
	if code != http.StatusCreated || m["score"] != float64(0) || m["verdict"] != "Fail" {
		t.Fatalf("evaluate: %d %v", code, m)
	}
	evalID := id(t, m, "evaluation_id")

	code, m = call(t, e, &farmer, http.MethodGet, fmt.Sprintf("/evaluations/%d/failure", evalID), "")
	if code != http.StatusOK || m["source"] != "column" {
		t.Fatalf("failure view: %d %v", code, m)
	}
	if code, _ = call(t, e, &outside, http.MethodGet, fmt.Sprintf("/evaluations/%d", evalID), ""); code != http.StatusForbidden {
		t.Fatalf("outside expert: %d", code)
	}
	if code, _ = call(t, e, &expert, http.MethodGet, "/evaluations/987654", ""); code != http.StatusNotFound {
		t.Fatalf("missing evaluation: %d", code)
	}
	code, m = call(t, e, &expert, http.MethodPost, fmt.Sprintf("/batches/%d/evaluations", batchID), `{"stage_code":"roastng","result":"Pass"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("unknown stage: %d %v", code, m)
	}
}

func TestActorHeadersRequired(t *testing.T) {
	e := server(t)
	if code, _ := call(t, e, nil, http.MethodGet, "/batches", ""); code != http.StatusUnauthorized {
		t.Fatalf("no headers: %d", code)
	}
	if code, _ := call(t, e, nil, http.MethodGet, "/health", ""); code != http.StatusOK {
		t.Fatalf("health must stay open: %d", code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	e := server(t)
	farmer := fixture.Farmer
	code, m := call(t, e, &farmer, http.MethodGet, "/catalog/stages/sun-drying", "")
	if code != http.StatusOK || m["code"] != "drying" {
		t.Fatalf("stage by alias: %d %v", code, m)
	}
	if code, _ = call(t, e, &farmer, http.MethodGet, "/catalog/stages/roastng", ""); code != http.StatusBadRequest {
		t.Fatalf("unknown stage: %d", code)
	}
	code, m = call(t, e, &farmer, http.MethodPost, "/failures/decode", `{"text":"note FAILED_STAGE_ID:3|FAILED_STAGE_NAME:Drying|DETAILS:wet|RECOMMENDATIONS:dry"}`)
	if code != http.StatusOK || m["is_failure"] != true {
		t.Fatalf("decode: %d %v", code, m)
	}
}
