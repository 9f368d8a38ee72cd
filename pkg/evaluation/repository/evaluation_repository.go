package repository

import "beanline/entities"

type Filter struct {
	BatchID        uint
	FarmerID       string
	ScopeID        string
	IncludeDeleted bool
}

type EvaluationRepository interface {
	Create(e *entities.ProcessingBatchEvaluation) error
	FindByID(id uint) (*entities.ProcessingBatchEvaluation, error)
	// FindDeleted only matches soft-deleted rows.
	FindDeleted(id uint) (*entities.ProcessingBatchEvaluation, error)
	FindAny(id uint) (*entities.ProcessingBatchEvaluation, error)
	List(f Filter) ([]entities.ProcessingBatchEvaluation, error)
	Update(e *entities.ProcessingBatchEvaluation) error
	SoftDelete(id uint) error
	Restore(id uint) error
	HardDelete(id uint) error
}
