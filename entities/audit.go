package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Action     string    `json:"action" gorm:"index"`
	ActorID    string    `json:"actor_id"`
	TargetType string    `json:"target_type"`
	TargetIDs  []uint    `json:"target_ids" gorm:"serializer:json"`
	Detail     string    `json:"detail"`
	At         time.Time `json:"at" gorm:"index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.At.IsZero() {
		a.At = time.Now()
	}
	return nil
}
