package entities

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProcessingBatch struct {
	gorm.Model
	Code          string  `json:"code" gorm:"uniqueIndex"`
	FarmerID      string  `json:"farmer_id" gorm:"index"`
	ScopeID       string  `json:"scope_id" gorm:"index"` // cooperative / region the batch belongs to
	MethodID      uint    `json:"method_id" gorm:"index"`
	InputQuantity float64 `json:"input_quantity"`
	InputUnit     string  `json:"input_unit"`
	Status        string  `json:"status" gorm:"index;default:InProgress"` // InProgress|Completed

	Method *ProcessingMethod `json:"method,omitempty" gorm:"foreignKey:MethodID"`
}

type ProgressParameter struct {
	Name       string    `json:"name"`
	Value      string    `json:"value"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ProcessingBatchProgress records one stage execution. At most one live row
// may exist per (batch, step index); the partial unique index created in
// database.OpenSQLite enforces it.
type ProcessingBatchProgress struct {
	gorm.Model
	BatchID        uint                                  `json:"batch_id" gorm:"index"`
	StageID        uint                                  `json:"stage_id" gorm:"index"`
	StepIndex      int                                   `json:"step_index"`
	OutputQuantity float64                               `json:"output_quantity"`
	OutputUnit     string                                `json:"output_unit"`
	Parameters     datatypes.JSONSlice[ProgressParameter] `json:"parameters"`
	PhotoURLs      []string                              `json:"photo_urls" gorm:"serializer:json"`
	VideoURLs      []string                              `json:"video_urls" gorm:"serializer:json"`
	CreatedBy      string                                `json:"created_by"`

	Stage *ProcessingStage `json:"stage,omitempty" gorm:"foreignKey:StageID"`
}

type ProcessingBatchWaste struct {
	gorm.Model
	ProgressID uint       `json:"progress_id" gorm:"index;not null"`
	WasteType  string     `json:"waste_type"`
	Quantity   float64    `json:"quantity"`
	Unit       string     `json:"unit"`
	IsDisposed bool       `json:"is_disposed"`
	DisposedAt *time.Time `json:"disposed_at"`
	RecordedBy string     `json:"recorded_by"`
	Note       string     `json:"note"`
}
