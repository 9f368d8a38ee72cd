package service

import (
	"context"

	"beanline/entities"
	"beanline/pkg/auth"
)

type StageInput struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
	IsRequired bool   `json:"is_required"`
}

type CreateMethodInput struct {
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Stages []StageInput `json:"stages"`
}

type MethodService interface {
	Create(ctx context.Context, actor auth.Actor, in CreateMethodInput) (*entities.ProcessingMethod, error)
	Get(ctx context.Context, id uint) (*entities.ProcessingMethod, error)
	List(ctx context.Context) ([]entities.ProcessingMethod, error)
	Delete(ctx context.Context, actor auth.Actor, id uint) error
}
