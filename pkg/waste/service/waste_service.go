package service

import (
	"context"

	"beanline/entities"
	"beanline/pkg/auth"
)

type RecordWasteInput struct {
	ProgressID uint    `json:"-"`
	WasteType  string  `json:"waste_type"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Note       string  `json:"note"`
}

// RecordResult carries the stored row and the threshold warning. Exceeding
// the limit never blocks the write. ThresholdChecked is false when the waste
// and output units cannot be compared.
type RecordResult struct {
	Waste            *entities.ProcessingBatchWaste `json:"waste"`
	ExceedsThreshold bool                           `json:"exceeds_threshold"`
	ThresholdChecked bool                           `json:"threshold_checked"`
	WastePercent     *float64                       `json:"waste_percent,omitempty"`
	MaxPercent       float64                        `json:"max_percent"`
	Warning          string                         `json:"warning,omitempty"`
}

type Stats struct {
	BatchID  uint               `json:"batch_id"`
	Records  int                `json:"records"`
	Disposed int                `json:"disposed"`
	ByUnit   map[string]float64 `json:"by_unit"`
	ByType   map[string]int     `json:"by_type"`
	TotalKg  float64            `json:"total_kg"` // mass units only
}

type WasteService interface {
	Record(ctx context.Context, actor auth.Actor, in RecordWasteInput) (*RecordResult, error)
	List(ctx context.Context, actor auth.Actor, progressID uint) ([]entities.ProcessingBatchWaste, error)
	MarkDisposed(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatchWaste, error)
	Delete(ctx context.Context, actor auth.Actor, id uint) error
	Stats(ctx context.Context, actor auth.Actor, batchID uint) (*Stats, error)
}
