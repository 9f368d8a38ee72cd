package serviceImp

import (
	"context"
	"errors"
	"testing"
	"time"

	"beanline/entities"
	"beanline/internal/fixture"
	"beanline/pkg/apperr"
	"beanline/pkg/progress/service"
)

func input(batchID uint, step int) service.RecordInput {
	return service.RecordInput{
		BatchID:        batchID,
		StepIndex:      step,
		OutputQuantity: 100,
		OutputUnit:     "kg",
		Parameters:     []service.ParameterInput{{Name: "temperature", Value: "24", Unit: "C"}},
	}
}

func TestRecordStepsInOrder(t *testing.T) {
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	svc := NewProgressService(db)
	ctx := context.Background()

	for step := 1; step <= len(m.Stages); step++ {
		p, err := svc.Record(ctx, fixture.Farmer, input(b.ID, step))
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if p.StageID != m.Stages[step-1].ID || p.CreatedBy != fixture.Farmer.ID {
			t.Fatalf("step %d stored as %+v", step, p)
		}
	}
	list, err := svc.List(ctx, fixture.Farmer, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != len(m.Stages) || list[0].Stage == nil || list[0].Stage.Code != "harvesting" {
		t.Fatalf("list %+v", list)
	}
}

func TestRecordRejectsOutOfOrder(t *testing.T) {
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	svc := NewProgressService(db)
	ctx := context.Background()

	if _, err := svc.Record(ctx, fixture.Farmer, input(b.ID, 3)); !errors.Is(err, apperr.ErrInvalidStageOrder) {
		t.Fatalf("skipping: %v", err)
	}
	first, err := svc.Record(ctx, fixture.Farmer, input(b.ID, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Record(ctx, fixture.Farmer, input(b.ID, 1)); !errors.Is(err, apperr.ErrInvalidStageOrder) {
		t.Fatalf("duplicate: %v", err)
	}
	if err := svc.Delete(ctx, fixture.Farmer, first.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Record(ctx, fixture.Farmer, input(b.ID, 1)); err != nil {
		t.Fatalf("re-record after soft delete: %v", err)
	}
}

func TestUniqueIndexBacksTheCheck(t *testing.T) {
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	fixture.Progress(t, db, b, m, 1, 10, "kg")

	err := db.Create(&entities.ProcessingBatchProgress{BatchID: b.ID, StageID: m.Stages[0].ID, StepIndex: 1}).Error
	if err == nil {
		t.Fatal("second live row for the same step was accepted")
	}
}

func TestParameterMerging(t *testing.T) {
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	svc := NewProgressService(db).(*progressSvc)
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	in := input(b.ID, 1)
	in.ParameterName, in.ParameterValue, in.ParameterUnit = "brix", "21", "Bx"
	p, err := svc.Record(context.Background(), fixture.Farmer, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Parameters) != 2 || p.Parameters[0].Name != "brix" || p.Parameters[1].Name != "temperature" {
		t.Fatalf("merged parameters %+v", p.Parameters)
	}
	if !p.Parameters[0].RecordedAt.Equal(fixed) {
		t.Fatalf("timestamp %v", p.Parameters[0].RecordedAt)
	}

	var stored entities.ProcessingBatchProgress
	if err := db.First(&stored, p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if len(stored.Parameters) != 2 {
		t.Fatalf("parameters did not survive the json column: %+v", stored.Parameters)
	}
}

func TestParameterValidation(t *testing.T) {
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	svc := NewProgressService(db)
	ctx := context.Background()

	in := input(b.ID, 1)
	in.ParameterName = "humidity"
	if _, err := svc.Record(ctx, fixture.Farmer, in); !errors.Is(err, apperr.ErrInvalidParameters) {
		t.Fatalf("half-filled triple: %v", err)
	}
	in = input(b.ID, 1)
	in.Parameters = append(in.Parameters, service.ParameterInput{Name: "ph", Value: "4.5"})
	if _, err := svc.Record(ctx, fixture.Farmer, in); !errors.Is(err, apperr.ErrInvalidParameters) {
		t.Fatalf("missing unit: %v", err)
	}
	in = input(b.ID, 1)
	in.OutputUnit = ""
	if _, err := svc.Record(ctx, fixture.Farmer, in); !errors.Is(err, apperr.ErrInvalidParameters) {
		t.Fatalf("missing output unit: %v", err)
	}
}

func TestRecordAccess(t *testing.T) {
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	svc := NewProgressService(db)
	ctx := context.Background()

	if _, err := svc.Record(ctx, fixture.Other, input(b.ID, 1)); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("other farmer: %v", err)
	}
	if _, err := svc.Record(ctx, fixture.Outside, input(b.ID, 1)); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expert of another scope: %v", err)
	}
	if _, err := svc.Record(ctx, fixture.Expert, input(b.ID, 1)); err != nil {
		t.Fatalf("expert in scope: %v", err)
	}
	if _, err := svc.Record(ctx, fixture.Farmer, input(404, 1)); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing batch: %v", err)
	}
}

func TestUpdateProgress(t *testing.T) {
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	svc := NewProgressService(db)
	ctx := context.Background()
	p, err := svc.Record(ctx, fixture.Farmer, input(b.ID, 1))
	if err != nil {
		t.Fatal(err)
	}

	qty := 90.5
	photos := []string{" https://img.local/1.jpg ", ""}
	out, err := svc.Update(ctx, fixture.Farmer, p.ID, service.ProgressPatch{OutputQuantity: &qty, PhotoURLs: &photos})
	if err != nil {
		t.Fatal(err)
	}
	if out.OutputQuantity != 90.5 || len(out.PhotoURLs) != 1 || out.PhotoURLs[0] != "https://img.local/1.jpg" {
		t.Fatalf("patched %+v", out)
	}
	if out.StepIndex != 1 || len(out.Parameters) != 1 {
		t.Fatalf("untouched fields changed %+v", out)
	}
	bad := []service.ParameterInput{{Name: "x"}}
	if _, err := svc.Update(ctx, fixture.Farmer, p.ID, service.ProgressPatch{Parameters: &bad}); !errors.Is(err, apperr.ErrInvalidParameters) {
		t.Fatalf("bad parameters: %v", err)
	}
}

func TestHardDeleteProgress(t *testing.T) {
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	p := fixture.Progress(t, db, b, m, 1, 100, "kg")
	if err := db.Create(&entities.ProcessingBatchWaste{ProgressID: p.ID, WasteType: "pulp", Quantity: 2, Unit: "kg"}).Error; err != nil {
		t.Fatal(err)
	}
	svc := NewProgressService(db)
	ctx := context.Background()

	if err := svc.HardDelete(ctx, fixture.Manager, p.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("manager hard delete: %v", err)
	}
	if err := svc.HardDelete(ctx, fixture.Admin, p.ID); err != nil {
		t.Fatal(err)
	}
	var n int64
	db.Unscoped().Model(&entities.ProcessingBatchWaste{}).Where("progress_id = ?", p.ID).Count(&n)
	if n != 0 {
		t.Fatalf("%d waste rows left behind", n)
	}
	if err := svc.HardDelete(ctx, fixture.Admin, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second hard delete: %v", err)
	}
	db.Model(&entities.AuditLog{}).Where("action = ?", "progress.hard_delete").Count(&n)
	if n != 1 {
		t.Fatalf("audit rows %d", n)
	}
}
