package serviceImp

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	batchRepoImp "beanline/pkg/batch/repositoryImp"
	repoImp "beanline/pkg/progress/repositoryImp"
	"beanline/pkg/progress/service"
	"beanline/pkg/stage"
)

type progressSvc struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProgressService(db *gorm.DB) service.ProgressService {
	return &progressSvc{db: db, now: time.Now}
}

func (s *progressSvc) Record(ctx context.Context, actor auth.Actor, in service.RecordInput) (*entities.ProcessingBatchProgress, error) {
	params, err := mergeParameters(in, s.now())
	if err != nil {
		return nil, err
	}
	if in.OutputQuantity < 0 {
		return nil, fmt.Errorf("output_quantity must not be negative: %w", apperr.ErrInvalidParameters)
	}
	if strings.TrimSpace(in.OutputUnit) == "" {
		return nil, fmt.Errorf("output_unit is required: %w", apperr.ErrInvalidParameters)
	}

	var out *entities.ProcessingBatchProgress
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := batchRepoImp.New(tx).FindByID(in.BatchID)
		if err != nil {
			return err
		}
		if !actor.CanWork(b.FarmerID, b.ScopeID) {
			return fmt.Errorf("batch %d: %w", b.ID, apperr.ErrForbidden)
		}
		st, err := stage.New(tx).ValidateNext(ctx, b, in.StageID, in.StepIndex)
		if err != nil {
			return err
		}
		p := &entities.ProcessingBatchProgress{
			BatchID:        b.ID,
			StageID:        st.ID,
			StepIndex:      st.OrderIndex,
			OutputQuantity: in.OutputQuantity,
			OutputUnit:     strings.TrimSpace(in.OutputUnit),
			Parameters:     params,
			PhotoURLs:      cleanURLs(in.PhotoURLs),
			VideoURLs:      cleanURLs(in.VideoURLs),
			CreatedBy:      actor.ID,
		}
		if err := repoImp.New(tx).Create(p); err != nil {
			return err
		}
		p.Stage = st
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[progress] batch %d step %d (%s) recorded by %s", out.BatchID, out.StepIndex, out.Stage.Code, actor.ID)
	return out, nil
}

// load returns the entry and its batch after checking that actor may see it.
func load(tx *gorm.DB, actor auth.Actor, id uint) (*entities.ProcessingBatchProgress, *entities.ProcessingBatch, error) {
	p, err := repoImp.New(tx).FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	b, err := batchRepoImp.New(tx).FindAny(p.BatchID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanSee(b.FarmerID, b.ScopeID) {
		return nil, nil, fmt.Errorf("progress %d: %w", id, apperr.ErrForbidden)
	}
	return p, b, nil
}

func (s *progressSvc) Get(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatchProgress, error) {
	p, _, err := load(s.db.WithContext(ctx), actor, id)
	return p, err
}

func (s *progressSvc) List(ctx context.Context, actor auth.Actor, batchID uint) ([]entities.ProcessingBatchProgress, error) {
	db := s.db.WithContext(ctx)
	b, err := batchRepoImp.New(db).FindByID(batchID)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(b.FarmerID, b.ScopeID) {
		return nil, fmt.Errorf("batch %d: %w", batchID, apperr.ErrForbidden)
	}
	return repoImp.New(db).ListByBatch(batchID)
}

// Update changes measurements and media. The step itself is fixed; to
// move an entry, delete it and record again.
func (s *progressSvc) Update(ctx context.Context, actor auth.Actor, id uint, patch service.ProgressPatch) (*entities.ProcessingBatchProgress, error) {
	var out *entities.ProcessingBatchProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, b, err := load(tx, actor, id)
		if err != nil {
			return err
		}
		if !actor.CanWork(b.FarmerID, b.ScopeID) {
			return fmt.Errorf("progress %d: %w", id, apperr.ErrForbidden)
		}
		if patch.OutputQuantity != nil {
			if *patch.OutputQuantity < 0 {
				return fmt.Errorf("output_quantity must not be negative: %w", apperr.ErrInvalidParameters)
			}
			p.OutputQuantity = *patch.OutputQuantity
		}
		if patch.OutputUnit != nil {
			u := strings.TrimSpace(*patch.OutputUnit)
			if u == "" {
				return fmt.Errorf("output_unit is required: %w", apperr.ErrInvalidParameters)
			}
			p.OutputUnit = u
		}
		if patch.Parameters != nil {
			params, err := buildParameters(*patch.Parameters, s.now())
			if err != nil {
				return err
			}
			p.Parameters = params
		}
		if patch.PhotoURLs != nil {
			p.PhotoURLs = cleanURLs(*patch.PhotoURLs)
		}
		if patch.VideoURLs != nil {
			p.VideoURLs = cleanURLs(*patch.VideoURLs)
		}
		if err := repoImp.New(tx).Update(p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (s *progressSvc) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, b, err := load(tx, actor, id)
		if err != nil {
			return err
		}
		if !actor.CanWork(b.FarmerID, b.ScopeID) {
			return fmt.Errorf("progress %d: %w", id, apperr.ErrForbidden)
		}
		return repoImp.New(tx).Delete(id)
	})
}

// HardDelete is admin only and also reaches soft-deleted entries.
func (s *progressSvc) HardDelete(ctx context.Context, actor auth.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repoImp.New(tx)
		p, err := r.FindAny(id)
		if err != nil {
			return err
		}
		if !actor.CanHardDelete() {
			return fmt.Errorf("progress %d: hard delete needs an admin: %w", id, apperr.ErrForbidden)
		}
		log.Printf("[audit] hard-delete progress %d (batch %d step %d) by %s at %s", id, p.BatchID, p.StepIndex, actor.ID, time.Now().Format(time.RFC3339))
		if err := tx.Create(&entities.AuditLog{Action: "progress.hard_delete", ActorID: actor.ID, TargetType: "progress", TargetIDs: []uint{id}}).Error; err != nil {
			return err
		}
		return r.HardDelete(id)
	})
}
