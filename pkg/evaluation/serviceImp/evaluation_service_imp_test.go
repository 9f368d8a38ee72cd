package serviceImp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"beanline/entities"
	"beanline/internal/fixture"
	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	"beanline/pkg/catalog"
	"beanline/pkg/evaluation/service"
	"beanline/pkg/failurecodec"
	"beanline/pkg/notify"
	"beanline/pkg/scoring"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.StatusChange
}

func (r *recorder) BatchStatusChanged(_ context.Context, ev notify.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type env struct {
	db    *gorm.DB
	svc   service.EvaluationService
	rec   *recorder
	m     *entities.ProcessingMethod
	batch *entities.ProcessingBatch
}

func setup(t *testing.T) env {
	t.Helper()
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	rec := &recorder{}
	return env{db: db, svc: NewEvaluationService(db, catalog.Default(), rec), rec: rec, m: m, batch: b}
}

// drying scores 60: moisture (weight 0.4, required) fails, the rest pass.
func drying(batchID uint, result string) service.EvaluateInput {
	return service.EvaluateInput{
		BatchID:   batchID,
		StageCode: "Drying",
		Result:    result,
		Criteria: []scoring.Input{
			{CriteriaID: "DRY_MOISTURE", ActualValue: 13.5},
			{CriteriaID: "DRY_WATER_ACTIVITY", ActualValue: 0.6},
			{CriteriaID: "DRY_DURATION", ActualValue: 14},
		},
	}
}

func (e env) status(t *testing.T) string {
	t.Helper()
	var b entities.ProcessingBatch
	if err := e.db.First(&b, e.batch.ID).Error; err != nil {
		t.Fatal(err)
	}
	return b.Status
}

func TestEvaluateScoresAndStores(t *testing.T) {
	e := setup(t)
	res, err := e.svc.Evaluate(context.Background(), fixture.Expert, drying(e.batch.ID, "fail"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 60 || res.Verdict != scoring.Fail || res.Advisory != scoring.Fail || res.Diverges {
		t.Fatalf("result %+v", res)
	}
	got, err := e.svc.Get(context.Background(), fixture.Farmer, res.EvaluationID)
	if err != nil {
		t.Fatal(err)
	}
	if got.StageCode != "drying" || got.StageID == 0 || len(got.CriteriaResults) != 3 || got.EvaluatorID != fixture.Expert.ID {
		t.Fatalf("stored %+v", got)
	}
	if got.CriteriaResults[0].CriteriaID != "DRY_MOISTURE" || got.CriteriaResults[0].Pass {
		t.Fatalf("outcomes %+v", got.CriteriaResults)
	}
}

func TestEvaluateStatusMapping(t *testing.T) {
	cases := []struct {
		result  string
		status  string
		updated bool
	}{
		{"Pass", scoring.BatchCompleted, true},
		{"Fail", scoring.BatchInProgress, false},
		{"NeedsImprovement", scoring.BatchInProgress, false},
		{"Temporary", scoring.BatchInProgress, false},
	}
	for _, tc := range cases {
		t.Run(tc.result, func(t *testing.T) {
			e := setup(t)
			res, err := e.svc.Evaluate(context.Background(), fixture.Expert, drying(e.batch.ID, tc.result))
			if err != nil {
				t.Fatal(err)
			}
			if res.BatchStatus != tc.status || res.BatchStatusUpdated != tc.updated {
				t.Fatalf("got %s updated=%v", res.BatchStatus, res.BatchStatusUpdated)
			}
			if got := e.status(t); got != tc.status {
				t.Fatalf("stored status %s", got)
			}
			want := 0
			if tc.updated {
				want = 1
			}
			if e.rec.count() != want {
				t.Fatalf("notifications %d, want %d", e.rec.count(), want)
			}
		})
	}
}

func TestEvaluateFailReopensCompletedBatch(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	if _, err := e.svc.Evaluate(ctx, fixture.Expert, drying(e.batch.ID, "Pass")); err != nil {
		t.Fatal(err)
	}
	res, err := e.svc.Evaluate(ctx, fixture.Expert, drying(e.batch.ID, "Fail"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.BatchStatusUpdated || res.BatchStatus != scoring.BatchInProgress {
		t.Fatalf("result %+v", res)
	}
	if e.rec.count() != 2 || e.rec.events[1].FromStatus != scoring.BatchCompleted {
		t.Fatalf("events %+v", e.rec.events)
	}
}

func TestEvaluateDivergence(t *testing.T) {
	e := setup(t)
	res, err := e.svc.Evaluate(context.Background(), fixture.Expert, drying(e.batch.ID, "Pass"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Diverges || res.Verdict != scoring.Pass || res.Advisory != scoring.Fail {
		t.Fatalf("asserted verdict must win and divergence be flagged: %+v", res)
	}
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	in := drying(e.batch.ID, "Maybe")
	if _, err := e.svc.Evaluate(ctx, fixture.Expert, in); !errors.Is(err, apperr.ErrInvalidEvaluationResult) {
		t.Fatalf("result: %v", err)
	}
	in = drying(e.batch.ID, "Pass")
	in.StageCode = "dryng"
	if _, err := e.svc.Evaluate(ctx, fixture.Expert, in); !errors.Is(err, apperr.ErrUnknownStageCode) {
		t.Fatalf("stage: %v", err)
	}
	in = drying(e.batch.ID, "Pass")
	in.Criteria = append(in.Criteria, scoring.Input{CriteriaID: "HUL_BROKEN", ActualValue: 1})
	if _, err := e.svc.Evaluate(ctx, fixture.Expert, in); !errors.Is(err, apperr.ErrInvalidParameters) {
		t.Fatalf("foreign criterion: %v", err)
	}
	in = drying(e.batch.ID, "Pass")
	in.Failure = &failurecodec.Info{Details: "x"}
	if _, err := e.svc.Evaluate(ctx, fixture.Expert, in); !errors.Is(err, apperr.ErrInvalidParameters) {
		t.Fatalf("failure on pass: %v", err)
	}
	in = drying(9999, "Pass")
	if _, err := e.svc.Evaluate(ctx, fixture.Expert, in); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing batch: %v", err)
	}
	var n int64
	e.db.Model(&entities.ProcessingBatchEvaluation{}).Count(&n)
	if n != 0 {
		t.Fatalf("%d evaluations stored by rejected calls", n)
	}
}

func TestEvaluateAccess(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	for _, a := range []auth.Actor{fixture.Farmer, fixture.Outside} {
		if _, err := e.svc.Evaluate(ctx, a, drying(e.batch.ID, "Pass")); !errors.Is(err, apperr.ErrForbidden) {
			t.Fatalf("%s: %v", a.ID, err)
		}
	}
	if _, err := e.svc.Evaluate(ctx, fixture.Manager, drying(e.batch.ID, "Pass")); err != nil {
		t.Fatalf("manager: %v", err)
	}
}

func TestEvaluateImplicitStage(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	res, err := e.svc.Evaluate(ctx, fixture.Expert, service.EvaluateInput{BatchID: e.batch.ID, Result: "Temporary"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Evaluation.StageCode != "" || res.Score != 0 || len(res.Evaluation.CriteriaResults) != 0 {
		t.Fatalf("no progress should score against nothing: %+v", res.Evaluation)
	}

	for step := 1; step <= 5; step++ {
		fixture.Progress(t, e.db, e.batch, e.m, step, 100, "kg")
	}
	in := drying(e.batch.ID, "Pass")
	in.StageCode = ""
	res, err = e.svc.Evaluate(ctx, fixture.Expert, in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Evaluation.StageCode != "drying" || res.Evaluation.StageID != e.m.Stages[4].ID {
		t.Fatalf("latest stage not used: %+v", res.Evaluation)
	}
}

func TestEvaluateNonCatalogStage(t *testing.T) {
	e := setup(t)
	m := &entities.ProcessingMethod{Code: "REST", Name: "Rest", Stages: []entities.ProcessingStage{
		{Code: "resting", Name: "Resting", OrderIndex: 1, IsRequired: true},
	}}
	if err := e.db.Create(m).Error; err != nil {
		t.Fatal(err)
	}
	b := fixture.Batch(t, e.db, m.ID, fixture.Farmer)
	fixture.Progress(t, e.db, b, m, 1, 100, "kg")

	res, err := e.svc.Evaluate(context.Background(), fixture.Expert, service.EvaluateInput{BatchID: b.ID, Result: "Pass"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Evaluation.StageCode != "resting" || len(res.Evaluation.CriteriaResults) != 0 {
		t.Fatalf("stored %+v", res.Evaluation)
	}
}

func TestEvaluateDerivesFailure(t *testing.T) {
	e := setup(t)
	res, err := e.svc.Evaluate(context.Background(), fixture.Expert, drying(e.batch.ID, "Fail"))
	if err != nil {
		t.Fatal(err)
	}
	f := res.Evaluation.Failure
	if f == nil {
		t.Fatal("no failure derived")
	}
	if f.StageID != e.m.Stages[4].ID || f.StageName != "Drying" {
		t.Fatalf("failure stage %+v", f)
	}
	if !strings.Contains(f.Details, "Moisture content 13.5% outside 10..12") {
		t.Fatalf("details %q", f.Details)
	}
	if strings.Count(f.Recommendations, "check ") != 3 || !strings.Contains(f.Recommendations, "(TOO_WET)") {
		t.Fatalf("recommendations %q", f.Recommendations)
	}
}

func TestEvaluateKeepsSuppliedFailure(t *testing.T) {
	e := setup(t)
	in := drying(e.batch.ID, "Fail")
	in.Failure = &failurecodec.Info{StageID: 7, StageName: "<b>Drying</b>", Details: "rain on day 3"}
	in.Comments = "<p>rained</p>"
	res, err := e.svc.Evaluate(context.Background(), fixture.Expert, in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Evaluation.Failure.StageName != "Drying" || res.Evaluation.Failure.Details != "rain on day 3" {
		t.Fatalf("failure %+v", res.Evaluation.Failure)
	}
	if res.Evaluation.Comments != "rained" {
		t.Fatalf("comments %q", res.Evaluation.Comments)
	}
}

func TestUpdateResult(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	res, err := e.svc.Evaluate(ctx, fixture.Expert, drying(e.batch.ID, "Fail"))
	if err != nil {
		t.Fatal(err)
	}

	pass := "Pass"
	up, err := e.svc.Update(ctx, fixture.Expert, res.EvaluationID, service.EvaluationPatch{Result: &pass})
	if err != nil {
		t.Fatal(err)
	}
	if up.Evaluation.Failure != nil || up.BatchStatus != scoring.BatchCompleted || !up.BatchStatusUpdated {
		t.Fatalf("after pass %+v", up)
	}

	fail := "Fail"
	note := "re-check"
	up, err = e.svc.Update(ctx, fixture.Expert, res.EvaluationID, service.EvaluationPatch{Result: &fail, Comments: &note})
	if err != nil {
		t.Fatal(err)
	}
	if up.Evaluation.Failure == nil || !strings.Contains(up.Evaluation.Failure.Details, "Moisture content") {
		t.Fatalf("failure not derived from stored outcomes: %+v", up.Evaluation.Failure)
	}
	if up.Evaluation.Comments != "re-check" || e.status(t) != scoring.BatchInProgress {
		t.Fatalf("after fail %+v", up.Evaluation)
	}
	if e.rec.count() != 2 {
		t.Fatalf("notifications %d", e.rec.count())
	}

	bad := "Later"
	if _, err := e.svc.Update(ctx, fixture.Expert, res.EvaluationID, service.EvaluationPatch{Result: &bad}); !errors.Is(err, apperr.ErrInvalidEvaluationResult) {
		t.Fatalf("bad result: %v", err)
	}
	if _, err := e.svc.Update(ctx, fixture.Farmer, res.EvaluationID, service.EvaluationPatch{Comments: &note}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("farmer edit: %v", err)
	}
}

func TestListVisibility(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	other := fixture.Batch(t, e.db, e.m.ID, fixture.Other)
	for _, id := range []uint{e.batch.ID, other.ID} {
		if _, err := e.svc.Evaluate(ctx, fixture.Expert, drying(id, "Temporary")); err != nil {
			t.Fatal(err)
		}
	}

	mine, err := e.svc.List(ctx, fixture.Farmer, service.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].BatchID != e.batch.ID {
		t.Fatalf("farmer sees %+v", mine)
	}
	all, err := e.svc.List(ctx, fixture.Expert, service.ListFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expert sees %d (%v)", len(all), err)
	}
	none, err := e.svc.List(ctx, fixture.Outside, service.ListFilter{})
	if err != nil || len(none) != 0 {
		t.Fatalf("outside expert sees %d (%v)", len(none), err)
	}
	if _, err := e.svc.List(ctx, fixture.Expert, service.ListFilter{IncludeDeleted: true}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("deleted rows for expert: %v", err)
	}
	if _, err := e.svc.Get(ctx, fixture.Outside, all[0].ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("outside get: %v", err)
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	res, err := e.svc.Evaluate(ctx, fixture.Expert, drying(e.batch.ID, "Temporary"))
	if err != nil {
		t.Fatal(err)
	}
	id := res.EvaluationID

	if _, err := e.svc.Restore(ctx, fixture.Admin, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("restore of live row: %v", err)
	}
	if err := e.svc.SoftDelete(ctx, fixture.Farmer, id); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("farmer delete: %v", err)
	}
	if err := e.svc.SoftDelete(ctx, fixture.Expert, id); err != nil {
		t.Fatal(err)
	}
	if err := e.svc.SoftDelete(ctx, fixture.Expert, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := e.svc.Get(ctx, fixture.Expert, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("get deleted: %v", err)
	}
	withDeleted, err := e.svc.List(ctx, fixture.Manager, service.ListFilter{IncludeDeleted: true})
	if err != nil || len(withDeleted) != 1 {
		t.Fatalf("manager list with deleted: %d (%v)", len(withDeleted), err)
	}

	if _, err := e.svc.Restore(ctx, fixture.Expert, id); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expert restore: %v", err)
	}
	got, err := e.svc.Restore(ctx, fixture.Manager, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != id || got.DeletedAt.Valid {
		t.Fatalf("restored %+v", got)
	}
}

func TestHardDelete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	res, err := e.svc.Evaluate(ctx, fixture.Expert, drying(e.batch.ID, "Temporary"))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.svc.HardDelete(ctx, fixture.Manager, res.EvaluationID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("manager: %v", err)
	}
	if err := e.svc.SoftDelete(ctx, fixture.Expert, res.EvaluationID); err != nil {
		t.Fatal(err)
	}
	if err := e.svc.HardDelete(ctx, fixture.Admin, res.EvaluationID); err != nil {
		t.Fatalf("hard delete of soft-deleted row: %v", err)
	}
	if err := e.svc.HardDelete(ctx, fixture.Admin, res.EvaluationID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second hard delete: %v", err)
	}
	var audits []entities.AuditLog
	e.db.Where("action = ?", "evaluation.hard_delete").Find(&audits)
	if len(audits) != 1 || audits[0].TargetIDs[0] != res.EvaluationID || audits[0].ActorID != fixture.Admin.ID {
		t.Fatalf("audit %+v", audits)
	}
}

func TestBulkHardDelete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	var ids []uint
	for i := 0; i < 3; i++ {
		res, err := e.svc.Evaluate(ctx, fixture.Expert, drying(e.batch.ID, "Temporary"))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, res.EvaluationID)
	}

	if _, err := e.svc.BulkHardDelete(ctx, fixture.Manager, ids); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("manager: %v", err)
	}
	if _, err := e.svc.BulkHardDelete(ctx, fixture.Admin, nil); !errors.Is(err, apperr.ErrInvalidParameters) {
		t.Fatalf("empty: %v", err)
	}
	tooMany := make([]uint, service.MaxBulkDelete+1)
	if _, err := e.svc.BulkHardDelete(ctx, fixture.Admin, tooMany); !errors.Is(err, apperr.ErrInvalidParameters) {
		t.Fatalf("over cap: %v", err)
	}

	res, err := e.svc.BulkHardDelete(ctx, fixture.Admin, append(ids, 424242))
	if err != nil {
		t.Fatal(err)
	}
	if res.Requested != 4 || res.Deleted != 3 || res.Failed != 1 || res.OperationID == "" {
		t.Fatalf("result %+v", res)
	}
	if res.Items[3].ID != 424242 || res.Items[3].Status != "not_found" {
		t.Fatalf("items %+v", res.Items)
	}
	var n int64
	e.db.Unscoped().Model(&entities.ProcessingBatchEvaluation{}).Count(&n)
	if n != 0 {
		t.Fatalf("%d rows left", n)
	}
	var audit entities.AuditLog
	if err := e.db.Where("action = ?", "evaluation.bulk_hard_delete").First(&audit).Error; err != nil {
		t.Fatal(err)
	}
	if len(audit.TargetIDs) != 4 || !strings.Contains(audit.Detail, res.OperationID) {
		t.Fatalf("audit %+v", audit)
	}
}

func TestBulkHardDeleteCancelled(t *testing.T) {
	e := setup(t)
	res, err := e.svc.Evaluate(context.Background(), fixture.Expert, drying(e.batch.ID, "Temporary"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.svc.BulkHardDelete(ctx, fixture.Admin, []uint{res.EvaluationID}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	var n int64
	e.db.Model(&entities.ProcessingBatchEvaluation{}).Count(&n)
	if n != 1 {
		t.Fatalf("cancelled bulk delete removed rows: %d left", n)
	}
}

func TestFailureFallsBackToComments(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	legacy := failurecodec.Info{StageID: 5, StageName: "Drying", Details: "too wet", Recommendations: "dry longer"}
	row := &entities.ProcessingBatchEvaluation{
		BatchID:     e.batch.ID,
		EvaluatorID: fixture.Expert.ID,
		Result:      "Fail",
		Comments:    failurecodec.Encode(legacy),
	}
	if err := e.db.Omit("Batch").Create(row).Error; err != nil {
		t.Fatal(err)
	}

	v, err := e.svc.Failure(ctx, fixture.Farmer, row.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Source != "comments" || v.Failure == nil || *v.Failure != legacy {
		t.Fatalf("view %+v", v)
	}

	res, err := e.svc.Evaluate(ctx, fixture.Expert, drying(e.batch.ID, "Fail"))
	if err != nil {
		t.Fatal(err)
	}
	v, err = e.svc.Failure(ctx, fixture.Farmer, res.EvaluationID)
	if err != nil || v.Source != "column" {
		t.Fatalf("column view %+v (%v)", v, err)
	}

	if e.svc.DecodeFailure("plain comment") != nil {
		t.Fatal("plain text decoded as a failure")
	}
	if got := e.svc.DecodeFailure(failurecodec.Encode(legacy)); got == nil || got.Details != "too wet" {
		t.Fatalf("decode %+v", got)
	}
}
