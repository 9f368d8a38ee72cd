package repositoryImp

import (
	"fmt"

	"gorm.io/gorm"

	"beanline/database"
	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/batch/repository"
)

type batchRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.BatchRepository { return &batchRepo{db} }

func (r *batchRepo) Create(b *entities.ProcessingBatch) error {
	if err := r.db.Create(b).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("batch code %q already exists: %w", b.Code, apperr.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *batchRepo) FindByID(id uint) (*entities.ProcessingBatch, error) {
	var b entities.ProcessingBatch
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, fmt.Errorf("batch %d: %w", id, apperr.FromDB(err))
	}
	return &b, nil
}

func (r *batchRepo) FindAny(id uint) (*entities.ProcessingBatch, error) {
	var b entities.ProcessingBatch
	if err := r.db.Unscoped().First(&b, id).Error; err != nil {
		return nil, fmt.Errorf("batch %d: %w", id, apperr.FromDB(err))
	}
	return &b, nil
}

func (r *batchRepo) List(v repository.Visibility) ([]entities.ProcessingBatch, error) {
	q := r.db.Model(&entities.ProcessingBatch{})
	if v.FarmerID != "" {
		q = q.Where("farmer_id = ?", v.FarmerID)
	}
	if v.ScopeID != "" {
		q = q.Where("scope_id = ?", v.ScopeID)
	}
	var out []entities.ProcessingBatch
	return out, q.Order("id DESC").Find(&out).Error
}

func (r *batchRepo) UpdateStatus(id uint, status string) error {
	return r.db.Model(&entities.ProcessingBatch{}).Where("id = ?", id).Update("status", status).Error
}

func (r *batchRepo) Delete(id uint) error {
	return r.db.Delete(&entities.ProcessingBatch{}, id).Error
}
