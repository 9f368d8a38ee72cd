package repository

import "beanline/entities"

type MethodRepository interface {
	Create(m *entities.ProcessingMethod) error
	FindByID(id uint) (*entities.ProcessingMethod, error)
	List() ([]entities.ProcessingMethod, error)
	CountBatches(methodID uint) (int64, error)
	Delete(id uint) error
}
