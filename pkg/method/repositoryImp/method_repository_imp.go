package repositoryImp

import (
	"fmt"

	"gorm.io/gorm"

	"beanline/database"
	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/method/repository"
)

type methodRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.MethodRepository { return &methodRepo{db} }

func byOrder(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }

func (r *methodRepo) Create(m *entities.ProcessingMethod) error {
	if err := r.db.Create(m).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("method code %q already exists: %w", m.Code, apperr.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *methodRepo) FindByID(id uint) (*entities.ProcessingMethod, error) {
	var m entities.ProcessingMethod
	if err := r.db.Preload("Stages", byOrder).First(&m, id).Error; err != nil {
		return nil, fmt.Errorf("method %d: %w", id, apperr.FromDB(err))
	}
	return &m, nil
}

func (r *methodRepo) List() ([]entities.ProcessingMethod, error) {
	var out []entities.ProcessingMethod
	if err := r.db.Preload("Stages", byOrder).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *methodRepo) CountBatches(methodID uint) (int64, error) {
	var n int64
	err := r.db.Model(&entities.ProcessingBatch{}).Where("method_id = ?", methodID).Count(&n).Error
	return n, err
}

// Delete soft-deletes the method together with its stages.
func (r *methodRepo) Delete(id uint) error {
	if err := r.db.Where("method_id = ?", id).Delete(&entities.ProcessingStage{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&entities.ProcessingMethod{}, id).Error
}
