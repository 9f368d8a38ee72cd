package repository

import "beanline/entities"

type ProgressRepository interface {
	Create(p *entities.ProcessingBatchProgress) error
	FindByID(id uint) (*entities.ProcessingBatchProgress, error)
	FindAny(id uint) (*entities.ProcessingBatchProgress, error)
	ListByBatch(batchID uint) ([]entities.ProcessingBatchProgress, error)
	// Latest is the live entry with the highest step, nil when there is none.
	Latest(batchID uint) (*entities.ProcessingBatchProgress, error)
	Update(p *entities.ProcessingBatchProgress) error
	Delete(id uint) error
	// HardDelete removes the entry and every waste row attached to it.
	HardDelete(id uint) error
}
