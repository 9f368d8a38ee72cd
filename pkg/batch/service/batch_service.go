package service

import (
	"context"

	"beanline/entities"
	"beanline/pkg/auth"
	"beanline/pkg/stage"
)

type CreateBatchInput struct {
	Code          string  `json:"code"`
	FarmerID      string  `json:"farmer_id"`
	ScopeID       string  `json:"scope_id"`
	MethodID      uint    `json:"method_id"`
	InputQuantity float64 `json:"input_quantity"`
	InputUnit     string  `json:"input_unit"`
}

type BatchService interface {
	Create(ctx context.Context, actor auth.Actor, in CreateBatchInput) (*entities.ProcessingBatch, error)
	Get(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatch, error)
	List(ctx context.Context, actor auth.Actor) ([]entities.ProcessingBatch, error)
	Delete(ctx context.Context, actor auth.Actor, id uint) error
	Progression(ctx context.Context, actor auth.Actor, id uint) (*stage.Progression, error)
}
