package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Outcome is the recorded result of handling one notification event.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
)

// EventRecord is the idempotency log entry for a received notification event.
type EventRecord struct {
	ID               snowflake.ID   `json:"id" gorm:"primaryKey"`
	EventKey         string         `json:"event_key" gorm:"size:64;not null;uniqueIndex"`
	MerchantID       int64          `json:"merchant_id" gorm:"not null"`
	EventName        string         `json:"event_name" gorm:"type:text;not null"`
	OrderIncrementID string         `json:"order_increment_id" gorm:"size:191;index"`
	TransactionID    string         `json:"transaction_id" gorm:"type:text"`
	OldValue         string         `json:"old_value" gorm:"type:text"`
	NewValue         string         `json:"new_value" gorm:"type:text"`
	Payload          datatypes.JSON `json:"payload" gorm:"not null"`
	Outcome          string         `json:"outcome" gorm:"type:text"`
	ReceivedAt       time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt      *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "fraud_review_events" }

type Repository interface {
	InsertEvent(ctx context.Context, db *gorm.DB, record *EventRecord) (bool, error)
	FindEvent(ctx context.Context, db *gorm.DB, eventKey string) (*EventRecord, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, outcome Outcome, processedAt time.Time) error
}
