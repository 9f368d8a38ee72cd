package entities

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"beanline/pkg/failurecodec"
	"beanline/pkg/scoring"
)

type ProcessingBatchEvaluation struct {
	gorm.Model
	BatchID         uint                                `json:"batch_id" gorm:"index"`
	EvaluatorID     string                              `json:"evaluator_id"`
	StageID         uint                                `json:"stage_id"`
	StageCode       string                              `json:"stage_code"`
	Result          string                              `json:"result"`          // asserted by the evaluator
	AdvisoryResult  string                              `json:"advisory_result"` // what the score alone would say
	TotalScore      float64                             `json:"total_score"`
	Comments        string                              `json:"comments"`
	Failure         *failurecodec.Info                  `json:"failure,omitempty" gorm:"serializer:json"`
	CriteriaResults datatypes.JSONSlice[scoring.Outcome] `json:"criteria_results"`

	Batch *ProcessingBatch `json:"-" gorm:"foreignKey:BatchID"`
}
