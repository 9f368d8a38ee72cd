package service

import (
	"context"

	"beanline/entities"
	"beanline/pkg/auth"
	"beanline/pkg/failurecodec"
	"beanline/pkg/scoring"
)

// MaxBulkDelete caps BulkHardDelete.
const MaxBulkDelete = 100

type EvaluateInput struct {
	BatchID   uint               `json:"-"`
	StageCode string             `json:"stage_code"` // empty: stage of the latest progress entry
	Criteria  []scoring.Input    `json:"criteria"`
	Result    string             `json:"result"`
	Comments  string             `json:"comments"`
	Failure   *failurecodec.Info `json:"failure"`
}

type EvaluateResult struct {
	EvaluationID       uint                                `json:"evaluation_id"`
	Evaluation         *entities.ProcessingBatchEvaluation `json:"evaluation"`
	Score              float64                             `json:"score"`
	Verdict            scoring.Result                      `json:"verdict"`
	Advisory           scoring.Result                      `json:"advisory"`
	Diverges           bool                                `json:"diverges"`
	BatchStatus        string                              `json:"batch_status"`
	BatchStatusUpdated bool                                `json:"batch_status_updated"`
}

type EvaluationPatch struct {
	Result   *string            `json:"result"`
	Comments *string            `json:"comments"`
	Failure  *failurecodec.Info `json:"failure"`
}

type ListFilter struct {
	BatchID        uint
	IncludeDeleted bool
}

type BulkItem struct {
	ID     uint   `json:"id"`
	Status string `json:"status"` // deleted | not_found | failed
	Error  string `json:"error,omitempty"`
}

type BulkResult struct {
	OperationID string     `json:"operation_id"`
	Requested   int        `json:"requested"`
	Deleted     int        `json:"deleted"`
	Failed      int        `json:"failed"`
	Items       []BulkItem `json:"items"`
}

type FailureView struct {
	EvaluationID uint               `json:"evaluation_id"`
	Source       string             `json:"source,omitempty"` // column | comments
	Failure      *failurecodec.Info `json:"failure"`
}

type EvaluationService interface {
	Evaluate(ctx context.Context, actor auth.Actor, in EvaluateInput) (*EvaluateResult, error)
	Get(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatchEvaluation, error)
	List(ctx context.Context, actor auth.Actor, f ListFilter) ([]entities.ProcessingBatchEvaluation, error)
	Update(ctx context.Context, actor auth.Actor, id uint, patch EvaluationPatch) (*EvaluateResult, error)
	SoftDelete(ctx context.Context, actor auth.Actor, id uint) error
	Restore(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatchEvaluation, error)
	HardDelete(ctx context.Context, actor auth.Actor, id uint) error
	BulkHardDelete(ctx context.Context, actor auth.Actor, ids []uint) (*BulkResult, error)
	Failure(ctx context.Context, actor auth.Actor, id uint) (*FailureView, error)
	// DecodeFailure parses legacy comment text; nil when it holds no record.
	DecodeFailure(text string) *failurecodec.Info
}
