package serviceImp

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"beanline/internal/fixture"
	"beanline/pkg/apperr"
	"beanline/pkg/catalog"
	"beanline/pkg/waste/service"
)

func setup(t *testing.T) (service.WasteService, uint, uint) {
	t.Helper()
	db := fixture.DB(t)
	m := fixture.WashedMethod(t, db)
	b := fixture.Batch(t, db, m.ID, fixture.Farmer)
	for step := 1; step <= 4; step++ {
		fixture.Progress(t, db, b, m, step, 100, "kg")
	}
	drying := fixture.Progress(t, db, b, m, 5, 100, "kg")
	return NewWasteService(db, catalog.Default()), b.ID, drying.ID
}

func TestWasteAtLimitIsNotAWarning(t *testing.T) {
	svc, _, pid := setup(t)
	ctx := context.Background()

	res, err := svc.Record(ctx, fixture.Farmer, service.RecordWasteInput{ProgressID: pid, WasteType: "defects", Quantity: 10, Unit: "kg"})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExceedsThreshold || !res.ThresholdChecked || res.MaxPercent != 10 {
		t.Fatalf("10%% waste on drying: %+v", res)
	}
	if res.WastePercent == nil || *res.WastePercent != 10 {
		t.Fatalf("percent %v", res.WastePercent)
	}

	res, err = svc.Record(ctx, fixture.Farmer, service.RecordWasteInput{ProgressID: pid, WasteType: "defects", Quantity: 1, Unit: "kg"})
	if err != nil {
		t.Fatalf("exceeding must not block: %v", err)
	}
	if !res.ExceedsThreshold || res.Warning == "" || res.Waste == nil || res.Waste.ID == 0 {
		t.Fatalf("cumulative 11%% should warn: %+v", res)
	}
}

func TestWasteUnitHandling(t *testing.T) {
	svc, _, pid := setup(t)
	ctx := context.Background()

	res, err := svc.Record(ctx, fixture.Farmer, service.RecordWasteInput{ProgressID: pid, WasteType: "dust", Quantity: 500, Unit: "g"})
	if err != nil {
		t.Fatal(err)
	}
	if res.WastePercent == nil || *res.WastePercent != 0.5 {
		t.Fatalf("500 g of 100 kg: %v", res.WastePercent)
	}

	res, err = svc.Record(ctx, fixture.Farmer, service.RecordWasteInput{ProgressID: pid, WasteType: "sacks", Quantity: 2, Unit: "bags"})
	if err != nil {
		t.Fatal(err)
	}
	if res.ThresholdChecked || res.ExceedsThreshold {
		t.Fatalf("incomparable units must skip the check: %+v", res)
	}
}

func TestRecordWasteValidation(t *testing.T) {
	svc, _, pid := setup(t)
	ctx := context.Background()
	bad := []service.RecordWasteInput{
		{ProgressID: pid, Quantity: 1, Unit: "kg"},
		{ProgressID: pid, WasteType: "pulp", Quantity: 0, Unit: "kg"},
		{ProgressID: pid, WasteType: "pulp", Quantity: 1},
	}
	for i, in := range bad {
		if _, err := svc.Record(ctx, fixture.Farmer, in); !errors.Is(err, apperr.ErrInvalidParameters) {
			t.Errorf("case %d: %v", i, err)
		}
	}
	if _, err := svc.Record(ctx, fixture.Other, service.RecordWasteInput{ProgressID: pid, WasteType: "pulp", Quantity: 1, Unit: "kg"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("other farmer: %v", err)
	}
	if _, err := svc.Record(ctx, fixture.Farmer, service.RecordWasteInput{ProgressID: 999, WasteType: "pulp", Quantity: 1, Unit: "kg"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing progress: %v", err)
	}
}

func TestDisposeDeleteAndStats(t *testing.T) {
	svc, batchID, pid := setup(t)
	ctx := context.Background()

	a, err := svc.Record(ctx, fixture.Farmer, service.RecordWasteInput{ProgressID: pid, WasteType: "defects", Quantity: 3, Unit: "kg"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Record(ctx, fixture.Farmer, service.RecordWasteInput{ProgressID: pid, WasteType: "dust", Quantity: 1500, Unit: "g"}); err != nil {
		t.Fatal(err)
	}
	c, err := svc.Record(ctx, fixture.Farmer, service.RecordWasteInput{ProgressID: pid, WasteType: "defects", Quantity: 1, Unit: "kg"})
	if err != nil {
		t.Fatal(err)
	}

	w, err := svc.MarkDisposed(ctx, fixture.Farmer, a.Waste.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !w.IsDisposed || w.DisposedAt == nil {
		t.Fatalf("not disposed %+v", w)
	}
	first := *w.DisposedAt
	if w, _ = svc.MarkDisposed(ctx, fixture.Farmer, a.Waste.ID); !w.DisposedAt.Equal(first) {
		t.Fatal("second dispose moved the timestamp")
	}

	if err := svc.Delete(ctx, fixture.Farmer, c.Waste.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, fixture.Farmer, c.Waste.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}

	st, err := svc.Stats(ctx, fixture.Manager, batchID)
	if err != nil {
		t.Fatal(err)
	}
	if st.Records != 2 || st.Disposed != 1 || st.ByType["defects"] != 1 || st.ByUnit["g"] != 1500 {
		t.Fatalf("stats %+v", st)
	}
	if st.TotalKg != 4.5 {
		t.Fatalf("total kg %v", st.TotalKg)
	}
	if _, err := svc.Stats(ctx, fixture.Outside, batchID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("outside expert: %v", err)
	}

	list, err := svc.List(ctx, fixture.Farmer, pid)
	if err != nil || len(list) != 2 {
		t.Fatalf("list %d %v", len(list), err)
	}
}

func TestConvert(t *testing.T) {
	cases := []struct {
		q        string
		from, to string
		want     string
		ok       bool
	}{
		{"1", "t", "kg", "1000", true},
		{"2000", "g", "KG", "2", true},
		{"3", "Bags", "bags", "3", true},
		{"1", "kg", "litre", "0", false},
	}
	for _, tc := range cases {
		got, ok := convert(decimal.RequireFromString(tc.q), tc.from, tc.to)
		if ok != tc.ok || (ok && !got.Equal(decimal.RequireFromString(tc.want))) {
			t.Errorf("convert(%s %s -> %s) = %s %v", tc.q, tc.from, tc.to, got, ok)
		}
	}
}
