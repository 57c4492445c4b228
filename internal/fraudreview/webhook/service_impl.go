// Package webhook ingests Kount ENS deliveries: it authenticates the sender,
// deduplicates events and hands each one to the review processor.
package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fraudreview/internal/clock"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/domain"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/ens"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/guard"
	"github.com/smallbiznis/fraudreview/internal/lock"
	obslogger "github.com/smallbiznis/fraudreview/internal/observability/logger"
	"github.com/smallbiznis/fraudreview/internal/observability/metrics"
	"github.com/smallbiznis/fraudreview/internal/observability/tracing"
	"github.com/smallbiznis/fraudreview/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventProcessor applies one review event to its order.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event domain.ReviewEvent) (bool, error)
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Guard     *guard.Guard
	Processor EventProcessor
	Locker    *lock.OrderLocker
	Clock     clock.Clock
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	guard     *guard.Guard
	processor EventProcessor
	locker    *lock.OrderLocker
	clock     clock.Clock
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Result summarizes one delivery.
type Result struct {
	Received   int  `json:"received"`
	Applied    int  `json:"applied"`
	Skipped    int  `json:"skipped"`
	Duplicates int  `json:"duplicates"`
	Sandbox    bool `json:"sandbox"`
}

func NewService(p Params) *Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("fraudreview.webhook"),
		genID:     p.GenID,
		repo:      p.Repo,
		guard:     p.Guard,
		processor: p.Processor,
		locker:    p.Locker,
		clock:     p.Clock,
		metrics:   p.Metrics,
		tracer:    otel.Tracer("fraudreview.webhook"),
	}
}

// IngestNotification handles one ENS POST body from remoteAddr.
func (s *Service) IngestNotification(ctx context.Context, remoteAddr string, payload []byte) (*Result, error) {
	ctx, _ = correlation.EnsureCorrelationID(ctx)
	ctx, span := s.tracer.Start(ctx, "fraudreview.ingest_notification")
	defer span.End()

	result, err := s.ingest(ctx, remoteAddr, payload)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "notification rejected")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("ens.received", result.Received),
		attribute.Int("ens.applied", result.Applied),
		attribute.Int("ens.duplicates", result.Duplicates),
	)
	return result, nil
}

func (s *Service) ingest(ctx context.Context, remoteAddr string, payload []byte) (*Result, error) {
	log := obslogger.WithContext(ctx, s.log)

	if !s.guard.IsAllowed(remoteAddr) {
		s.metrics.RecordNotificationRejected(ctx, "forbidden_address")
		log.Warn("notification from address outside allow-list", zap.String("remote_addr", remoteAddr))
		return nil, domain.ErrForbiddenAddress
	}

	batch, err := ens.Parse(payload)
	if err != nil {
		s.metrics.RecordNotificationRejected(ctx, "invalid_payload")
		return nil, err
	}

	merchantID := guard.LenientInt(batch.Merchant)
	valid, err := s.guard.ValidateMerchantID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("validate merchant: %w", err)
	}
	if !valid {
		s.metrics.RecordNotificationRejected(ctx, "invalid_merchant")
		log.Warn("notification for unknown merchant", zap.String("merchant", batch.Merchant))
		return nil, domain.ErrInvalidMerchant
	}

	result := &Result{Received: len(batch.Events), Sandbox: s.guard.IsSandbox()}
	for _, event := range batch.Events {
		started := s.clock.Now()
		outcome, err := s.handleEvent(ctx, merchantID, event)
		if err != nil {
			s.metrics.RecordEventDuration(ctx, "error", s.clock.Now().Sub(started))
			return nil, err
		}
		switch outcome {
		case outcomeApplied:
			result.Applied++
		case outcomeSkipped:
			result.Skipped++
		case outcomeDuplicate:
			result.Duplicates++
		}
		s.metrics.RecordReviewEvent(ctx, string(event.Review.Name), string(outcome), result.Sandbox)
		s.metrics.RecordEventDuration(ctx, string(outcome), s.clock.Now().Sub(started))
	}

	log.Info("notification processed",
		zap.Int64("merchant_id", merchantID),
		zap.Int("received", result.Received),
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.Skipped),
		zap.Int("duplicates", result.Duplicates),
		zap.Bool("sandbox", result.Sandbox),
	)
	return result, nil
}

type eventOutcome string

const (
	outcomeApplied   eventOutcome = eventOutcome(domain.OutcomeApplied)
	outcomeSkipped   eventOutcome = eventOutcome(domain.OutcomeSkipped)
	outcomeDuplicate eventOutcome = "duplicate"
)

func (s *Service) handleEvent(ctx context.Context, merchantID int64, event ens.Event) (eventOutcome, error) {
	review := event.Review
	record, err := s.recordEvent(ctx, merchantID, event)
	if err != nil {
		if errors.Is(err, domain.ErrEventAlreadyProcessed) {
			return outcomeDuplicate, nil
		}
		return "", err
	}

	if review.OrderIncrementID != "" {
		release, ok, err := s.locker.Acquire(ctx, review.OrderIncrementID)
		if err != nil {
			return "", fmt.Errorf("lock order %s: %w", review.OrderIncrementID, err)
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", domain.ErrOrderBusy, review.OrderIncrementID)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("release order lock failed", zap.String("order_increment_id", review.OrderIncrementID), zap.Error(err))
			}
		}()
	}

	applied, err := s.processor.ProcessEvent(ctx, review)
	if err != nil {
		return "", fmt.Errorf("process event %s: %w", record.EventKey, err)
	}

	outcome := domain.OutcomeSkipped
	if applied {
		outcome = domain.OutcomeApplied
	} else {
		obslogger.WithContext(ctx, s.log).Debug("event skipped",
			zap.String("event_name", string(review.Name)),
			zap.String("event_key", record.EventKey),
			zap.Bool("has_order_number", event.Raw.HasOrder),
			zap.String("order_increment_id", review.OrderIncrementID),
		)
	}
	if err := s.repo.MarkProcessed(ctx, s.db, record.ID, outcome, s.clock.Now()); err != nil {
		return "", fmt.Errorf("mark event %s processed: %w", record.EventKey, err)
	}
	return eventOutcome(outcome), nil
}

// recordEvent stores the event, or loads the stored one when it was received
// before. Events already processed yield ErrEventAlreadyProcessed.
func (s *Service) recordEvent(ctx context.Context, merchantID int64, event ens.Event) (*domain.EventRecord, error) {
	key := EventKey(merchantID, event.Raw)
	body, err := json.Marshal(event.Raw)
	if err != nil {
		return nil, err
	}

	record := &domain.EventRecord{
		ID:               s.genID.Generate(),
		EventKey:         key,
		MerchantID:       merchantID,
		EventName:        string(event.Review.Name),
		OrderIncrementID: event.Review.OrderIncrementID,
		TransactionID:    event.Review.ReviewTransactionID,
		OldValue:         strings.TrimSpace(event.Raw.OldValue),
		NewValue:         strings.TrimSpace(event.Raw.NewValue),
		Payload:          datatypes.JSON(body),
		ReceivedAt:       s.clock.Now(),
	}
	inserted, err := s.repo.InsertEvent(ctx, s.db, record)
	if err != nil {
		return nil, fmt.Errorf("record event %s: %w", key, err)
	}
	if inserted {
		return record, nil
	}

	existing, err := s.repo.FindEvent(ctx, s.db, key)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", key, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("event %s vanished after conflict", key)
	}
	if existing.ProcessedAt != nil {
		return nil, domain.ErrEventAlreadyProcessed
	}
	return existing, nil
}

// EventKey identifies an event across redeliveries.
func EventKey(merchantID int64, raw ens.RawEvent) string {
	parts := []string{
		fmt.Sprintf("%d", merchantID),
		strings.TrimSpace(raw.Name),
		strings.TrimSpace(raw.Key),
		strings.TrimSpace(raw.OrderNumber),
		strings.TrimSpace(raw.OldValue),
		strings.TrimSpace(raw.NewValue),
		strings.TrimSpace(raw.Occurred),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
