package entities

import "gorm.io/gorm"

type ProcessingMethod struct {
	gorm.Model
	Code   string            `json:"code" gorm:"uniqueIndex"`
	Name   string            `json:"name"`
	Stages []ProcessingStage `json:"stages" gorm:"foreignKey:MethodID"`
}

// ProcessingStage is one step of a method. OrderIndex starts at 1 and is
// unique within the method.
type ProcessingStage struct {
	gorm.Model
	MethodID   uint   `json:"method_id" gorm:"uniqueIndex:idx_stage_method_order"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index" gorm:"uniqueIndex:idx_stage_method_order"`
	IsRequired bool   `json:"is_required"`
}
