// Package stage enforces the stage order of a processing method. Steps are
// recorded strictly in template order; a recorded step can only be redone by
// soft-deleting it first.
package stage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
)

type Progression struct {
	BatchID           uint                       `json:"batch_id"`
	MethodID          uint                       `json:"method_id"`
	NextStep          int                        `json:"next_step"` // 0 once every stage is recorded
	NextStage         *entities.ProcessingStage  `json:"next_stage,omitempty"`
	Recorded          []int                      `json:"recorded_steps"`
	RemainingRequired []entities.ProcessingStage `json:"remaining_required"`
	Complete          bool                       `json:"complete"` // all required stages recorded
}

type Validator interface {
	NextExpectedStep(ctx context.Context, batchID uint) (int, error)
	ValidateStep(ctx context.Context, methodID uint, stepIndex int) (*entities.ProcessingStage, error)
	// ValidateNext is the recorder's check. Either stageID or stepIndex may be
	// zero and is then taken from the other.
	ValidateNext(ctx context.Context, batch *entities.ProcessingBatch, stageID uint, stepIndex int) (*entities.ProcessingStage, error)
	Progression(ctx context.Context, batchID uint) (*Progression, error)
}

type validator struct{ db *gorm.DB }

// New binds the validator to db, which may be a transaction.
func New(db *gorm.DB) Validator { return &validator{db} }

func (v *validator) stages(ctx context.Context, methodID uint) ([]entities.ProcessingStage, error) {
	var out []entities.ProcessingStage
	err := v.db.WithContext(ctx).Where("method_id = ?", methodID).Order("order_index ASC").Find(&out).Error
	return out, err
}

func (v *validator) liveSteps(ctx context.Context, batchID uint) ([]int, error) {
	var out []int
	err := v.db.WithContext(ctx).Model(&entities.ProcessingBatchProgress{}).
		Where("batch_id = ?", batchID).
		Order("step_index ASC").
		Pluck("step_index", &out).Error
	return out, err
}

func (v *validator) batch(ctx context.Context, id uint) (*entities.ProcessingBatch, error) {
	var b entities.ProcessingBatch
	if err := v.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, fmt.Errorf("batch %d: %w", id, apperr.FromDB(err))
	}
	return &b, nil
}

// next is the first stage, in template order, with no live progress row.
func next(stages []entities.ProcessingStage, recorded []int) *entities.ProcessingStage {
	done := make(map[int]bool, len(recorded))
	for _, s := range recorded {
		done[s] = true
	}
	for i := range stages {
		if !done[stages[i].OrderIndex] {
			return &stages[i]
		}
	}
	return nil
}

func (v *validator) NextExpectedStep(ctx context.Context, batchID uint) (int, error) {
	b, err := v.batch(ctx, batchID)
	if err != nil {
		return 0, err
	}
	return v.nextFor(ctx, b)
}

func (v *validator) nextFor(ctx context.Context, b *entities.ProcessingBatch) (int, error) {
	stages, err := v.stages(ctx, b.MethodID)
	if err != nil {
		return 0, err
	}
	recorded, err := v.liveSteps(ctx, b.ID)
	if err != nil {
		return 0, err
	}
	if st := next(stages, recorded); st != nil {
		return st.OrderIndex, nil
	}
	return 0, nil
}

func (v *validator) ValidateStep(ctx context.Context, methodID uint, stepIndex int) (*entities.ProcessingStage, error) {
	var st entities.ProcessingStage
	err := v.db.WithContext(ctx).Where("method_id = ? AND order_index = ?", methodID, stepIndex).First(&st).Error
	if err != nil {
		if apperr.FromDB(err) == apperr.ErrNotFound {
			return nil, fmt.Errorf("method %d has no stage at step %d: %w", methodID, stepIndex, apperr.ErrInvalidStageOrder)
		}
		return nil, err
	}
	return &st, nil
}

func (v *validator) ValidateNext(ctx context.Context, b *entities.ProcessingBatch, stageID uint, stepIndex int) (*entities.ProcessingStage, error) {
	if stepIndex == 0 && stageID != 0 {
		var st entities.ProcessingStage
		if err := v.db.WithContext(ctx).Where("id = ? AND method_id = ?", stageID, b.MethodID).First(&st).Error; err != nil {
			if apperr.FromDB(err) == apperr.ErrNotFound {
				return nil, fmt.Errorf("stage %d is not part of method %d: %w", stageID, b.MethodID, apperr.ErrInvalidStageOrder)
			}
			return nil, err
		}
		stepIndex = st.OrderIndex
	}
	st, err := v.ValidateStep(ctx, b.MethodID, stepIndex)
	if err != nil {
		return nil, err
	}
	if stageID != 0 && st.ID != stageID {
		return nil, fmt.Errorf("stage %d is not at step %d: %w", stageID, stepIndex, apperr.ErrInvalidStageOrder)
	}
	want, err := v.nextFor(ctx, b)
	if err != nil {
		return nil, err
	}
	switch {
	case want == 0:
		return nil, fmt.Errorf("batch %d has every stage recorded: %w", b.ID, apperr.ErrInvalidStageOrder)
	case stepIndex != want:
		return nil, fmt.Errorf("batch %d expects step %d, got %d: %w", b.ID, want, stepIndex, apperr.ErrInvalidStageOrder)
	}
	return st, nil
}

func (v *validator) Progression(ctx context.Context, batchID uint) (*Progression, error) {
	b, err := v.batch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	stages, err := v.stages(ctx, b.MethodID)
	if err != nil {
		return nil, err
	}
	recorded, err := v.liveSteps(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	p := &Progression{
		BatchID:           b.ID,
		MethodID:          b.MethodID,
		Recorded:          recorded,
		RemainingRequired: []entities.ProcessingStage{},
	}
	if p.Recorded == nil {
		p.Recorded = []int{}
	}
	if st := next(stages, recorded); st != nil {
		p.NextStep, p.NextStage = st.OrderIndex, st
	}
	done := map[int]bool{}
	for _, s := range recorded {
		done[s] = true
	}
	for _, st := range stages {
		if st.IsRequired && !done[st.OrderIndex] {
			p.RemainingRequired = append(p.RemainingRequired, st)
		}
	}
	p.Complete = len(p.RemainingRequired) == 0
	return p, nil
}
