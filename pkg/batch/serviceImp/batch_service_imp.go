package serviceImp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	repoImp "beanline/pkg/batch/repositoryImp"
	"beanline/pkg/batch/service"
	"beanline/pkg/scoring"
	"beanline/pkg/stage"
)

type batchSvc struct{ db *gorm.DB }

func NewBatchService(db *gorm.DB) service.BatchService { return &batchSvc{db} }

func NewCode() string {
	return "PB-" + strings.ToUpper(uuid.New().String()[:8])
}

func (s *batchSvc) Create(ctx context.Context, actor auth.Actor, in service.CreateBatchInput) (*entities.ProcessingBatch, error) {
	f := actor.Flags()
	switch {
	case f.IsAdmin:
	case f.IsManagerOrExpert:
		if in.ScopeID != "" && in.ScopeID != actor.ScopeID {
			return nil, fmt.Errorf("scope %s is outside your scope: %w", in.ScopeID, apperr.ErrForbidden)
		}
		in.ScopeID = actor.ScopeID
	default:
		if in.FarmerID != "" && in.FarmerID != actor.ID {
			return nil, fmt.Errorf("farmers create batches for themselves only: %w", apperr.ErrForbidden)
		}
		in.FarmerID = actor.ID
		if in.ScopeID == "" {
			in.ScopeID = actor.ScopeID
		}
	}
	if strings.TrimSpace(in.FarmerID) == "" {
		return nil, fmt.Errorf("farmer_id is required: %w", apperr.ErrInvalidParameters)
	}
	if in.InputQuantity <= 0 || strings.TrimSpace(in.InputUnit) == "" {
		return nil, fmt.Errorf("input_quantity must be positive and input_unit set: %w", apperr.ErrInvalidParameters)
	}

	b := &entities.ProcessingBatch{
		Code:          strings.TrimSpace(in.Code),
		FarmerID:      in.FarmerID,
		ScopeID:       in.ScopeID,
		MethodID:      in.MethodID,
		InputQuantity: in.InputQuantity,
		InputUnit:     strings.TrimSpace(in.InputUnit),
		Status:        scoring.BatchInProgress,
	}
	if b.Code == "" {
		b.Code = NewCode()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&entities.ProcessingMethod{}).Where("id = ?", in.MethodID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("method %d does not exist: %w", in.MethodID, apperr.ErrInvalidParameters)
		}
		return repoImp.New(tx).Create(b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// visible loads a batch and checks read access: 404 when it does not
// exist, 403 when it does but the actor may not see it.
func visible(db *gorm.DB, actor auth.Actor, id uint) (*entities.ProcessingBatch, error) {
	b, err := repoImp.New(db).FindByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(b.FarmerID, b.ScopeID) {
		return nil, fmt.Errorf("batch %d: %w", id, apperr.ErrForbidden)
	}
	return b, nil
}

func (s *batchSvc) Get(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatch, error) {
	return visible(s.db.WithContext(ctx), actor, id)
}

func (s *batchSvc) List(ctx context.Context, actor auth.Actor) ([]entities.ProcessingBatch, error) {
	v, ok := repoImp.VisibilityFor(actor)
	if !ok {
		return []entities.ProcessingBatch{}, nil
	}
	return repoImp.New(s.db.WithContext(ctx)).List(v)
}

func (s *batchSvc) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repoImp.New(tx)
		b, err := r.FindByID(id)
		if err != nil {
			return err
		}
		if !actor.CanRestore(b.ScopeID) {
			return fmt.Errorf("batch %d: %w", id, apperr.ErrForbidden)
		}
		return r.Delete(id)
	})
}

func (s *batchSvc) Progression(ctx context.Context, actor auth.Actor, id uint) (*stage.Progression, error) {
	db := s.db.WithContext(ctx)
	if _, err := visible(db, actor, id); err != nil {
		return nil, err
	}
	return stage.New(db).Progression(ctx, id)
}
