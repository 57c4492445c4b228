package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/domain"
	pkgdb "github.com/smallbiznis/fraudreview/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// InsertEvent records a received event. It reports false when the event key
// is already present.
func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, record *domain.EventRecord) (bool, error) {
	query := pkgdb.InsertIgnoringConflict(db,
		`INSERT INTO fraud_review_events (
			id, event_key, merchant_id, event_name, order_increment_id, transaction_id,
			old_value, new_value, payload, outcome, received_at, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"event_key",
	)
	result := db.WithContext(ctx).Exec(
		query,
		record.ID,
		record.EventKey,
		record.MerchantID,
		record.EventName,
		record.OrderIncrementID,
		record.TransactionID,
		record.OldValue,
		record.NewValue,
		record.Payload,
		record.Outcome,
		record.ReceivedAt,
		record.ProcessedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindEvent(ctx context.Context, db *gorm.DB, eventKey string) (*domain.EventRecord, error) {
	var item domain.EventRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, event_key, merchant_id, event_name, order_increment_id, transaction_id,
			old_value, new_value, payload, outcome, received_at, processed_at
		 FROM fraud_review_events
		 WHERE event_key = ?
		 LIMIT 1`,
		eventKey,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, outcome domain.Outcome, processedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE fraud_review_events
		 SET outcome = ?, processed_at = ?
		 WHERE id = ?`,
		string(outcome),
		processedAt,
		id,
	).Error
}
