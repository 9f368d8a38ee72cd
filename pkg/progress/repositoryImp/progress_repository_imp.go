package repositoryImp

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"beanline/database"
	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/progress/repository"
)

type progressRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ProgressRepository { return &progressRepo{db} }

func (r *progressRepo) Create(p *entities.ProcessingBatchProgress) error {
	if err := r.db.Omit("Stage").Create(p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("batch %d already has a live entry for step %d: %w", p.BatchID, p.StepIndex, apperr.ErrInvalidStageOrder)
		}
		return err
	}
	return nil
}

func (r *progressRepo) FindByID(id uint) (*entities.ProcessingBatchProgress, error) {
	var p entities.ProcessingBatchProgress
	if err := r.db.Preload("Stage").First(&p, id).Error; err != nil {
		return nil, fmt.Errorf("progress %d: %w", id, apperr.FromDB(err))
	}
	return &p, nil
}

func (r *progressRepo) FindAny(id uint) (*entities.ProcessingBatchProgress, error) {
	var p entities.ProcessingBatchProgress
	if err := r.db.Unscoped().First(&p, id).Error; err != nil {
		return nil, fmt.Errorf("progress %d: %w", id, apperr.FromDB(err))
	}
	return &p, nil
}

func (r *progressRepo) ListByBatch(batchID uint) ([]entities.ProcessingBatchProgress, error) {
	var out []entities.ProcessingBatchProgress
	err := r.db.Preload("Stage").Where("batch_id = ?", batchID).Order("step_index ASC").Find(&out).Error
	return out, err
}

func (r *progressRepo) Latest(batchID uint) (*entities.ProcessingBatchProgress, error) {
	var p entities.ProcessingBatchProgress
	err := r.db.Preload("Stage").Where("batch_id = ?", batchID).Order("step_index DESC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepo) Update(p *entities.ProcessingBatchProgress) error {
	return r.db.Omit("Stage").Save(p).Error
}

func (r *progressRepo) Delete(id uint) error {
	return r.db.Delete(&entities.ProcessingBatchProgress{}, id).Error
}

func (r *progressRepo) HardDelete(id uint) error {
	if err := r.db.Unscoped().Where("progress_id = ?", id).Delete(&entities.ProcessingBatchWaste{}).Error; err != nil {
		return err
	}
	return r.db.Unscoped().Delete(&entities.ProcessingBatchProgress{}, id).Error
}
