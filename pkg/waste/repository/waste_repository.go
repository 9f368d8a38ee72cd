package repository

import "beanline/entities"

type WasteRepository interface {
	Create(w *entities.ProcessingBatchWaste) error
	FindByID(id uint) (*entities.ProcessingBatchWaste, error)
	ListByProgress(progressID uint) ([]entities.ProcessingBatchWaste, error)
	// ListByBatch returns live waste hanging off live progress entries.
	ListByBatch(batchID uint) ([]entities.ProcessingBatchWaste, error)
	Update(w *entities.ProcessingBatchWaste) error
	Delete(id uint) error
}
