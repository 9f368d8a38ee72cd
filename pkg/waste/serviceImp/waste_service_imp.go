package serviceImp

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	batchRepoImp "beanline/pkg/batch/repositoryImp"
	"beanline/pkg/catalog"
	progRepoImp "beanline/pkg/progress/repositoryImp"
	repoImp "beanline/pkg/waste/repositoryImp"
	"beanline/pkg/waste/service"
)

type wasteSvc struct {
	db  *gorm.DB
	cat *catalog.Catalog
	now func() time.Time
}

func NewWasteService(db *gorm.DB, cat *catalog.Catalog) service.WasteService {
	return &wasteSvc{db: db, cat: cat, now: time.Now}
}

// progressFor loads a live progress entry with its batch. write selects the
// access rule: recording versus reading.
func progressFor(tx *gorm.DB, actor auth.Actor, progressID uint, write bool) (*entities.ProcessingBatchProgress, error) {
	p, err := progRepoImp.New(tx).FindByID(progressID)
	if err != nil {
		return nil, err
	}
	b, err := batchRepoImp.New(tx).FindAny(p.BatchID)
	if err != nil {
		return nil, err
	}
	ok := actor.CanSee(b.FarmerID, b.ScopeID)
	if write {
		ok = actor.CanWork(b.FarmerID, b.ScopeID)
	}
	if !ok {
		return nil, fmt.Errorf("progress %d: %w", progressID, apperr.ErrForbidden)
	}
	return p, nil
}

func (s *wasteSvc) Record(ctx context.Context, actor auth.Actor, in service.RecordWasteInput) (*service.RecordResult, error) {
	in.WasteType, in.Unit = strings.TrimSpace(in.WasteType), strings.TrimSpace(in.Unit)
	if in.WasteType == "" || in.Unit == "" {
		return nil, fmt.Errorf("waste_type and unit are required: %w", apperr.ErrInvalidParameters)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", apperr.ErrInvalidParameters)
	}

	var res *service.RecordResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := progressFor(tx, actor, in.ProgressID, true)
		if err != nil {
			return err
		}
		r := repoImp.New(tx)
		w := &entities.ProcessingBatchWaste{
			ProgressID: p.ID,
			WasteType:  in.WasteType,
			Quantity:   in.Quantity,
			Unit:       in.Unit,
			RecordedBy: actor.ID,
			Note:       strings.TrimSpace(in.Note),
		}
		if err := r.Create(w); err != nil {
			return err
		}
		all, err := r.ListByProgress(p.ID)
		if err != nil {
			return err
		}
		res = s.check(p, all)
		res.Waste = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Warning != "" {
		log.Printf("[waste] progress %d: %s", in.ProgressID, res.Warning)
	}
	return res, nil
}

// check compares all live waste of the entry against the stage limit.
// Exactly the limit passes.
func (s *wasteSvc) check(p *entities.ProcessingBatchProgress, all []entities.ProcessingBatchWaste) *service.RecordResult {
	stageName := ""
	if p.Stage != nil {
		stageName = p.Stage.Name
		if s.cat.MaxWastePercent(stageName) == catalog.DefaultMaxWastePercent {
			stageName = p.Stage.Code
		}
	}
	limit := s.cat.MaxWastePercent(stageName)
	res := &service.RecordResult{MaxPercent: limit}

	total := decimal.Zero
	for _, w := range all {
		q, ok := convert(decimal.NewFromFloat(w.Quantity), w.Unit, p.OutputUnit)
		if !ok {
			res.Warning = fmt.Sprintf("waste unit %q cannot be compared with output unit %q; threshold not checked", w.Unit, p.OutputUnit)
			return res
		}
		total = total.Add(q)
	}
	res.ThresholdChecked = true

	output := decimal.NewFromFloat(p.OutputQuantity)
	if !output.IsPositive() {
		res.ExceedsThreshold = total.IsPositive()
		if res.ExceedsThreshold {
			res.Warning = "output quantity is zero, any waste exceeds the limit"
		}
		return res
	}
	pct := total.Div(output).Mul(decimal.NewFromInt(100))
	v, _ := pct.Round(2).Float64()
	res.WastePercent = &v
	if pct.GreaterThan(decimal.NewFromFloat(limit)) {
		res.ExceedsThreshold = true
		res.Warning = fmt.Sprintf("waste is %.2f%% of output, above the %.2f%% limit for this stage", v, limit)
	}
	return res
}

func (s *wasteSvc) List(ctx context.Context, actor auth.Actor, progressID uint) ([]entities.ProcessingBatchWaste, error) {
	db := s.db.WithContext(ctx)
	if _, err := progressFor(db, actor, progressID, false); err != nil {
		return nil, err
	}
	return repoImp.New(db).ListByProgress(progressID)
}

// MarkDisposed is idempotent; a second call keeps the first timestamp.
func (s *wasteSvc) MarkDisposed(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatchWaste, error) {
	var out *entities.ProcessingBatchWaste
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repoImp.New(tx)
		w, err := r.FindByID(id)
		if err != nil {
			return err
		}
		if _, err := progressFor(tx, actor, w.ProgressID, true); err != nil {
			return err
		}
		if !w.IsDisposed {
			now := s.now()
			w.IsDisposed, w.DisposedAt = true, &now
			if err := r.Update(w); err != nil {
				return err
			}
		}
		out = w
		return nil
	})
	return out, err
}

func (s *wasteSvc) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repoImp.New(tx)
		w, err := r.FindByID(id)
		if err != nil {
			return err
		}
		if _, err := progressFor(tx, actor, w.ProgressID, true); err != nil {
			return err
		}
		return r.Delete(id)
	})
}

func (s *wasteSvc) Stats(ctx context.Context, actor auth.Actor, batchID uint) (*service.Stats, error) {
	db := s.db.WithContext(ctx)
	b, err := batchRepoImp.New(db).FindByID(batchID)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(b.FarmerID, b.ScopeID) {
		return nil, fmt.Errorf("batch %d: %w", batchID, apperr.ErrForbidden)
	}
	list, err := repoImp.New(db).ListByBatch(batchID)
	if err != nil {
		return nil, err
	}

	st := &service.Stats{BatchID: batchID, ByUnit: map[string]float64{}, ByType: map[string]int{}}
	byUnit := map[string]decimal.Decimal{}
	kg := decimal.Zero
	for _, w := range list {
		st.Records++
		if w.IsDisposed {
			st.Disposed++
		}
		st.ByType[w.WasteType]++
		q := decimal.NewFromFloat(w.Quantity)
		u := unitKey(w.Unit)
		byUnit[u] = byUnit[u].Add(q)
		if v, ok := toKg(q, u); ok {
			kg = kg.Add(v)
		}
	}
	for u, q := range byUnit {
		st.ByUnit[u], _ = q.Float64()
	}
	st.TotalKg, _ = kg.Round(3).Float64()
	return st, nil
}
