package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookEvent keeps every gateway notification that passed signature
// verification, for replay forensics. The gateway delivers at-least-once, so
// duplicates are expected and stored as separate rows.
type WebhookEvent struct {
	gorm.Model
	EventID         string         `json:"event_id" gorm:"size:36;not null;uniqueIndex"`
	OrderID         string         `json:"order_id" gorm:"size:100;not null;index"`
	EventType       string         `json:"event_type" gorm:"size:50;not null"` // gateway transaction_status
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	SignatureValid  bool           `json:"signature_valid" gorm:"default:false"`
	ProcessedAt     *time.Time     `json:"processed_at"`
	ProcessingError string         `json:"processing_error" gorm:"type:text"`
}
