// Package creditmemo creates credit memos from paid invoices and refunds them online.
package creditmemo

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/fraudreview/internal/clock"
	"github.com/smallbiznis/fraudreview/internal/order/domain"
	"github.com/smallbiznis/fraudreview/internal/payment/gateway"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const partialRefundComment = "Order partially refunded after fraud review. Remaining invoices need manual review."

type UnitOfWorkFactory interface {
	NewUnitOfWork() domain.UnitOfWork
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Gateway gateway.Client
	Orders  UnitOfWorkFactory
	Clock   clock.Clock
}

type Factory struct {
	clock clock.Clock
}

func NewFactory(p Params) *Factory {
	return &Factory{clock: p.Clock}
}

// CreateByInvoice prepares an open credit memo for the invoice's refundable remainder.
func (f *Factory) CreateByInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.CreditMemo, error) {
	if invoice == nil {
		return nil, domain.ErrInvalidInvoice
	}
	amount := invoice.RefundableAmount()
	if amount <= 0 {
		return nil, domain.ErrInvoiceNotRefundable
	}

	currency := ""
	if invoice.Order != nil {
		currency = invoice.Order.Currency
	}
	now := f.clock.Now()
	return &domain.CreditMemo{
		OrderID:   invoice.OrderID,
		InvoiceID: invoice.ID,
		Reference: ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		State:     domain.CreditMemoStateOpen,
		Amount:    amount,
		Currency:  currency,
		CreatedAt: now,
		Invoice:   invoice,
	}, nil
}

type Service struct {
	log     *zap.Logger
	gateway gateway.Client
	orders  UnitOfWorkFactory
	clock   clock.Clock
}

func NewService(p Params) *Service {
	return &Service{
		log:     p.Log.Named("order.creditmemo"),
		gateway: p.Gateway,
		orders:  p.Orders,
		clock:   p.Clock,
	}
}

// Refund refunds the memo amount against the captured transaction and persists
// memo, invoice and order together.
func (s *Service) Refund(ctx context.Context, memo *domain.CreditMemo) error {
	if memo == nil || memo.Invoice == nil {
		return domain.ErrInvalidCreditMemo
	}
	if memo.State == domain.CreditMemoStateRefunded {
		return nil
	}
	if memo.Amount <= 0 {
		return domain.ErrInvoiceNotRefundable
	}

	invoice := memo.Invoice
	order := invoice.Order
	txnID := strings.TrimSpace(invoice.TransactionID)
	if txnID == "" && order != nil && order.Payment != nil {
		txnID = strings.TrimSpace(order.Payment.GatewayTransactionID)
	}
	if txnID == "" {
		return domain.ErrMissingTransaction
	}

	refund, err := s.gateway.Refund(ctx, txnID, memo.Amount)
	if err != nil {
		return fmt.Errorf("refund credit memo %s: %w", memo.Reference, err)
	}

	now := s.clock.Now()
	memo.MarkRefunded(refund.ID, now)
	invoice.RefundedAmount += memo.Amount
	invoice.UpdatedAt = now

	uow := s.orders.NewUnitOfWork().Add(memo).Add(invoice)
	if order != nil {
		if order.Payment != nil {
			order.Payment.AmountRefunded += memo.Amount
			order.Payment.UpdatedAt = now
		}
		partial := false
		switch {
		case order.FullyRefunded():
			order.SetStatus(domain.OrderStatusClosed, now)
		case order.Status.UnderReview():
			// A balance is left on other invoices; hold the order so it
			// leaves the review queue flagged for manual follow-up.
			order.SetStatus(domain.OrderStatusHolded, now)
			partial = true
		}
		order.AddComment(fmt.Sprintf("Refunded amount of %s %s online. Transaction ID: %q",
			gateway.FormatAmount(memo.Amount), memo.Currency, refund.ID), now)
		if partial {
			order.AddComment(partialRefundComment, now)
		}
		uow.Add(order)
	}

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("persist credit memo %s: %w", memo.Reference, err)
	}

	s.log.Info("credit memo refunded",
		zap.String("reference", memo.Reference),
		zap.String("transaction_id", txnID),
		zap.String("refund_id", refund.ID),
		zap.Int64("amount", memo.Amount),
	)
	return nil
}
