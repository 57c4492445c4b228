package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fraudreview/internal/clock"
	"github.com/smallbiznis/fraudreview/internal/order/domain"
	pkgdb "github.com/smallbiznis/fraudreview/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

// Service loads and persists the order aggregate.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func NewService(p Params) *Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: clk,
	}
}

// LoadByIncrementID returns the order with its payment and invoices, or nil when
// no order carries the increment id.
func (s *Service) LoadByIncrementID(ctx context.Context, incrementID string) (*domain.Order, error) {
	incrementID = strings.TrimSpace(incrementID)
	if incrementID == "" {
		return nil, nil
	}

	order, err := s.repo.FindByIncrementID(ctx, s.db, incrementID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", incrementID, err)
	}
	if order == nil {
		return nil, nil
	}

	payment, err := s.repo.FindPayment(ctx, s.db, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load payment for order %s: %w", incrementID, err)
	}
	order.Payment = payment

	invoices, err := s.repo.ListInvoices(ctx, s.db, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load invoices for order %s: %w", incrementID, err)
	}
	for _, inv := range invoices {
		inv.Order = order
	}
	order.Invoices = invoices

	return order, nil
}

// Save persists the order, its payment and any new status history in one transaction.
func (s *Service) Save(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.saveOrder(ctx, tx, order)
	})
}

// Create inserts a new order together with its payment and invoices.
func (s *Service) Create(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return nil
	}
	now := s.clock.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.ID == 0 {
			order.ID = s.genID.Generate()
		}
		stampCreated(&order.CreatedAt, &order.UpdatedAt, now)
		if err := s.repo.InsertOrder(ctx, tx, order); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return fmt.Errorf("%w: %s", domain.ErrOrderExists, order.IncrementID)
			}
			return err
		}
		if order.Payment != nil {
			if order.Payment.ID == 0 {
				order.Payment.ID = s.genID.Generate()
			}
			order.Payment.OrderID = order.ID
			if order.Payment.ReviewState == "" {
				order.Payment.ReviewState = domain.PaymentReviewNone
			}
			stampCreated(&order.Payment.CreatedAt, &order.Payment.UpdatedAt, now)
			if err := s.repo.InsertPayment(ctx, tx, order.Payment); err != nil {
				return err
			}
		}
		for _, inv := range order.Invoices {
			if inv.ID == 0 {
				inv.ID = s.genID.Generate()
			}
			inv.OrderID = order.ID
			inv.Order = order
			stampCreated(&inv.CreatedAt, &inv.UpdatedAt, now)
			if err := s.repo.InsertInvoice(ctx, tx, inv); err != nil {
				return err
			}
		}
		return s.flushHistory(ctx, tx, order)
	})
}

// NewUnitOfWork starts an empty unit of work bound to this service's database.
func (s *Service) NewUnitOfWork() domain.UnitOfWork {
	return &unitOfWork{svc: s}
}

func (s *Service) saveOrder(ctx context.Context, tx *gorm.DB, order *domain.Order) error {
	if err := s.repo.UpdateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("update order %s: %w", order.IncrementID, err)
	}
	if order.Payment != nil {
		if err := s.repo.UpdatePayment(ctx, tx, order.Payment); err != nil {
			return fmt.Errorf("update payment for order %s: %w", order.IncrementID, err)
		}
	}
	return s.flushHistory(ctx, tx, order)
}

func (s *Service) flushHistory(ctx context.Context, tx *gorm.DB, order *domain.Order) error {
	for _, entry := range order.History {
		if entry.ID != 0 {
			continue
		}
		entry.ID = s.genID.Generate()
		entry.OrderID = order.ID
		if err := s.repo.InsertStatusHistory(ctx, tx, entry); err != nil {
			entry.ID = 0
			return fmt.Errorf("insert status history for order %s: %w", order.IncrementID, err)
		}
	}
	return nil
}

func stampCreated(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}
