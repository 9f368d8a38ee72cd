package repository

import "beanline/entities"

// Visibility narrows list queries to what an actor may see. A zero value
// means no restriction.
type Visibility struct {
	FarmerID string
	ScopeID  string
}

type BatchRepository interface {
	Create(b *entities.ProcessingBatch) error
	FindByID(id uint) (*entities.ProcessingBatch, error)
	// FindAny also returns soft-deleted batches; used to authorise access to
	// rows that outlive their batch.
	FindAny(id uint) (*entities.ProcessingBatch, error)
	List(v Visibility) ([]entities.ProcessingBatch, error)
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
}
