package repositoryImp

import (
	"fmt"

	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/evaluation/repository"
)

type evalRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.EvaluationRepository { return &evalRepo{db} }

func (r *evalRepo) Create(e *entities.ProcessingBatchEvaluation) error {
	return r.db.Omit("Batch").Create(e).Error
}

func (r *evalRepo) find(q *gorm.DB, id uint) (*entities.ProcessingBatchEvaluation, error) {
	var e entities.ProcessingBatchEvaluation
	if err := q.First(&e, id).Error; err != nil {
		return nil, fmt.Errorf("evaluation %d: %w", id, apperr.FromDB(err))
	}
	return &e, nil
}

func (r *evalRepo) FindByID(id uint) (*entities.ProcessingBatchEvaluation, error) {
	return r.find(r.db, id)
}

func (r *evalRepo) FindDeleted(id uint) (*entities.ProcessingBatchEvaluation, error) {
	return r.find(r.db.Unscoped().Where("deleted_at IS NOT NULL"), id)
}

func (r *evalRepo) FindAny(id uint) (*entities.ProcessingBatchEvaluation, error) {
	return r.find(r.db.Unscoped(), id)
}

func (r *evalRepo) List(f repository.Filter) ([]entities.ProcessingBatchEvaluation, error) {
	q := r.db.Model(&entities.ProcessingBatchEvaluation{}).
		Joins("JOIN processing_batches b ON b.id = processing_batch_evaluations.batch_id")
	if f.IncludeDeleted {
		q = q.Unscoped()
	}
	if f.BatchID != 0 {
		q = q.Where("processing_batch_evaluations.batch_id = ?", f.BatchID)
	}
	if f.FarmerID != "" {
		q = q.Where("b.farmer_id = ?", f.FarmerID)
	}
	if f.ScopeID != "" {
		q = q.Where("b.scope_id = ?", f.ScopeID)
	}
	var out []entities.ProcessingBatchEvaluation
	err := q.Order("processing_batch_evaluations.created_at DESC, processing_batch_evaluations.id DESC").Find(&out).Error
	return out, err
}

func (r *evalRepo) Update(e *entities.ProcessingBatchEvaluation) error {
	return r.db.Omit("Batch").Save(e).Error
}

func (r *evalRepo) SoftDelete(id uint) error {
	return r.db.Delete(&entities.ProcessingBatchEvaluation{}, id).Error
}

func (r *evalRepo) Restore(id uint) error {
	res := r.db.Unscoped().Model(&entities.ProcessingBatchEvaluation{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("evaluation %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *evalRepo) HardDelete(id uint) error {
	return r.db.Unscoped().Delete(&entities.ProcessingBatchEvaluation{}, id).Error
}
