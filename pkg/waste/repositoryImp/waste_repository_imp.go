package repositoryImp

import (
	"fmt"

	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/waste/repository"
)

type wasteRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.WasteRepository { return &wasteRepo{db} }

func (r *wasteRepo) Create(w *entities.ProcessingBatchWaste) error { return r.db.Create(w).Error }

func (r *wasteRepo) FindByID(id uint) (*entities.ProcessingBatchWaste, error) {
	var w entities.ProcessingBatchWaste
	if err := r.db.First(&w, id).Error; err != nil {
		return nil, fmt.Errorf("waste %d: %w", id, apperr.FromDB(err))
	}
	return &w, nil
}

func (r *wasteRepo) ListByProgress(progressID uint) ([]entities.ProcessingBatchWaste, error) {
	var out []entities.ProcessingBatchWaste
	err := r.db.Where("progress_id = ?", progressID).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *wasteRepo) ListByBatch(batchID uint) ([]entities.ProcessingBatchWaste, error) {
	var out []entities.ProcessingBatchWaste
	err := r.db.
		Joins("JOIN processing_batch_progresses p ON p.id = processing_batch_wastes.progress_id AND p.deleted_at IS NULL").
		Where("p.batch_id = ?", batchID).
		Order("processing_batch_wastes.id ASC").
		Find(&out).Error
	return out, err
}

func (r *wasteRepo) Update(w *entities.ProcessingBatchWaste) error { return r.db.Save(w).Error }

func (r *wasteRepo) Delete(id uint) error {
	return r.db.Delete(&entities.ProcessingBatchWaste{}, id).Error
}
