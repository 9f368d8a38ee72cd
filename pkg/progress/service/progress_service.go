package service

import (
	"context"
	"time"

	"beanline/entities"
	"beanline/pkg/auth"
)

type ParameterInput struct {
	Name       string     `json:"name"`
	Value      string     `json:"value"`
	Unit       string     `json:"unit"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// RecordInput accepts parameters as a list. The single name/value/unit
// fields are kept for older clients and are merged in front of the list.
type RecordInput struct {
	BatchID        uint             `json:"-"`
	StageID        uint             `json:"stage_id"`
	StepIndex      int              `json:"step_index"`
	OutputQuantity float64          `json:"output_quantity"`
	OutputUnit     string           `json:"output_unit"`
	ParameterName  string           `json:"parameter_name"`
	ParameterValue string           `json:"parameter_value"`
	ParameterUnit  string           `json:"parameter_unit"`
	Parameters     []ParameterInput `json:"parameters"`
	PhotoURLs      []string         `json:"photo_urls"`
	VideoURLs      []string         `json:"video_urls"`
}

type ProgressPatch struct {
	OutputQuantity *float64          `json:"output_quantity"`
	OutputUnit     *string           `json:"output_unit"`
	Parameters     *[]ParameterInput `json:"parameters"`
	PhotoURLs      *[]string         `json:"photo_urls"`
	VideoURLs      *[]string         `json:"video_urls"`
}

type ProgressService interface {
	Record(ctx context.Context, actor auth.Actor, in RecordInput) (*entities.ProcessingBatchProgress, error)
	Get(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatchProgress, error)
	List(ctx context.Context, actor auth.Actor, batchID uint) ([]entities.ProcessingBatchProgress, error)
	Update(ctx context.Context, actor auth.Actor, id uint, patch ProgressPatch) (*entities.ProcessingBatchProgress, error)
	Delete(ctx context.Context, actor auth.Actor, id uint) error
	HardDelete(ctx context.Context, actor auth.Actor, id uint) error
}
