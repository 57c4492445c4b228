// Package service applies Kount review decisions to orders.
package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/fraudreview/internal/clock"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/domain"
	obslogger "github.com/smallbiznis/fraudreview/internal/observability/logger"
	"github.com/smallbiznis/fraudreview/internal/observability/metrics"
	"github.com/smallbiznis/fraudreview/internal/observability/tracing"
	orderdomain "github.com/smallbiznis/fraudreview/internal/order/domain"
	"github.com/smallbiznis/fraudreview/internal/payment/gateway"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const voidComment = "Order declined through fraud review, order voided."

type Params struct {
	fx.In

	Log          *zap.Logger
	Orders       domain.OrderStore
	Repository   domain.OrderRepository
	UnitOfWork   domain.UnitOfWorkFactory
	Transactions domain.TransactionFinder
	MemoFactory  domain.CreditMemoFactory
	Memos        domain.CreditMemoService
	Clock        clock.Clock
	Metrics      *metrics.Metrics `optional:"true"`
}

type Processor struct {
	log          *zap.Logger
	orders       domain.OrderStore
	repository   domain.OrderRepository
	unitOfWork   domain.UnitOfWorkFactory
	transactions domain.TransactionFinder
	memoFactory  domain.CreditMemoFactory
	memos        domain.CreditMemoService
	clock        clock.Clock
	metrics      *metrics.Metrics
	tracer       trace.Tracer
}

func NewProcessor(p Params) *Processor {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Processor{
		log:          p.Log.Named("fraudreview.processor"),
		orders:       p.Orders,
		repository:   p.Repository,
		unitOfWork:   p.UnitOfWork,
		transactions: p.Transactions,
		memoFactory:  p.MemoFactory,
		memos:        p.Memos,
		clock:        clk,
		metrics:      p.Metrics,
		tracer:       otel.Tracer("fraudreview.processor"),
	}
}

// ProcessEvent applies an ENS event. Only workflow status edits act on orders;
// every other event reports false without side effects.
func (p *Processor) ProcessEvent(ctx context.Context, event domain.ReviewEvent) (bool, error) {
	if event.Name != domain.EventWorkflowStatusEdit {
		return false, nil
	}
	return p.WorkflowStatusEdit(ctx, event)
}

// WorkflowStatusEdit moves an order out of review when Kount approves or
// declines it. Guard failures report false; collaborator failures are returned.
func (p *Processor) WorkflowStatusEdit(ctx context.Context, event domain.ReviewEvent) (bool, error) {
	ctx, span := p.tracer.Start(ctx, "fraudreview.workflow_status_edit",
		trace.WithAttributes(tracing.SafeAttributes(
			attribute.String("order.increment_id", event.OrderIncrementID),
			attribute.String("review.previous_status", string(event.PreviousStatus)),
			attribute.String("review.new_status", string(event.NewStatus)),
		)...),
	)
	defer span.End()

	action, applied, err := p.workflowStatusEdit(ctx, event)
	span.SetAttributes(attribute.String("review.action", string(action)), attribute.Bool("review.applied", applied))
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "review decision failed")
		return false, err
	}
	if applied {
		p.metrics.RecordReviewAction(ctx, string(action))
	}
	return applied, nil
}

func (p *Processor) workflowStatusEdit(ctx context.Context, event domain.ReviewEvent) (domain.Action, bool, error) {
	if event.OrderIncrementID == "" || event.ReviewTransactionID == "" {
		return domain.ActionNone, false, nil
	}

	log := obslogger.WithOrder(obslogger.WithContext(ctx, p.log), event.OrderIncrementID)

	order, err := p.orders.LoadByIncrementID(ctx, event.OrderIncrementID)
	if err != nil {
		return domain.ActionNone, false, fmt.Errorf("load order %s: %w", event.OrderIncrementID, err)
	}
	if order == nil {
		log.Debug("order not found")
		return domain.ActionNone, false, nil
	}
	if order.Payment == nil || order.Payment.RiskCheckID != event.ReviewTransactionID {
		log.Info("review transaction does not match payment", zap.String("review_transaction_id", event.ReviewTransactionID))
		return domain.ActionNone, false, nil
	}
	if !event.PreviousStatus.Pending() {
		return domain.ActionNone, false, nil
	}

	switch event.NewStatus {
	case domain.ReviewStatusApprove:
		return p.approveOrder(ctx, log, order)
	case domain.ReviewStatusDecline:
		return p.declineOrder(ctx, log, order)
	case domain.ReviewStatusReview, domain.ReviewStatusEscalate, domain.ReviewStatusUnknown:
		return domain.ActionNone, false, nil
	default:
		return domain.ActionNone, false, nil
	}
}

func (p *Processor) approveOrder(ctx context.Context, log *zap.Logger, order *orderdomain.Order) (domain.Action, bool, error) {
	if !order.Status.UnderReview() {
		return domain.ActionNone, false, nil
	}
	if err := order.AcceptPayment(p.clock.Now()); err != nil {
		return domain.ActionApprove, false, err
	}
	if err := p.repository.Save(ctx, order); err != nil {
		return domain.ActionApprove, false, fmt.Errorf("save approved order %s: %w", order.IncrementID, err)
	}
	log.Info("order approved after fraud review")
	return domain.ActionApprove, true, nil
}

func (p *Processor) declineOrder(ctx context.Context, log *zap.Logger, order *orderdomain.Order) (domain.Action, bool, error) {
	if !order.Status.UnderReview() {
		return domain.ActionNone, false, nil
	}

	txnID := order.Payment.GatewayTransactionID
	txn, err := p.transactions.FindTransaction(ctx, txnID)
	if err != nil {
		return domain.ActionNone, false, fmt.Errorf("find transaction %s: %w", txnID, err)
	}
	if txn == nil {
		log.Info("gateway transaction not found", zap.String("transaction_id", txnID))
		return domain.ActionNone, false, nil
	}

	switch txn.Status {
	case gateway.StatusAuthorized, gateway.StatusSubmittedForSettlement:
		return p.voidOrder(ctx, log, order)
	case gateway.StatusSettled:
		return p.refundOrder(ctx, log, order)
	default:
		log.Info("transaction status not remediable", zap.String("transaction_status", string(txn.Status)))
		return domain.ActionNone, false, nil
	}
}

// voidOrder voids every invoice, committing each with the order separately.
// Without invoices the payment is denied instead.
func (p *Processor) voidOrder(ctx context.Context, log *zap.Logger, order *orderdomain.Order) (domain.Action, bool, error) {
	if len(order.Invoices) == 0 {
		if err := order.DenyPayment(p.clock.Now()); err != nil {
			return domain.ActionDeny, false, err
		}
		if err := p.repository.Save(ctx, order); err != nil {
			return domain.ActionDeny, false, fmt.Errorf("save denied order %s: %w", order.IncrementID, err)
		}
		log.Info("payment denied after fraud review")
		return domain.ActionDeny, true, nil
	}

	for _, invoice := range order.Invoices {
		now := p.clock.Now()
		invoice.Void(now)
		owner := invoice.Order
		if owner == nil {
			owner = order
		}
		owner.SetStatus(orderdomain.OrderStatusCanceled, now)
		owner.AddComment(voidComment, now)

		if err := p.unitOfWork.NewUnitOfWork().Add(invoice).Add(owner).Commit(ctx); err != nil {
			return domain.ActionVoid, false, fmt.Errorf("void invoice %s: %w", invoice.IncrementID, err)
		}
	}
	log.Info("invoices voided after fraud review", zap.Int("invoices", len(order.Invoices)))
	return domain.ActionVoid, true, nil
}

// refundOrder only considers the first invoice.
func (p *Processor) refundOrder(ctx context.Context, log *zap.Logger, order *orderdomain.Order) (domain.Action, bool, error) {
	if len(order.Invoices) == 0 {
		return domain.ActionNone, false, nil
	}
	invoice := order.Invoices[0]
	if !invoice.IsPaid() {
		invoice.Pay(p.clock.Now())
	}
	if !invoice.CanRefund() {
		log.Info("first invoice not refundable", zap.String("invoice", invoice.IncrementID))
		return domain.ActionNone, false, nil
	}
	if invoice.Order == nil {
		invoice.Order = order
	}

	memo, err := p.memoFactory.CreateByInvoice(ctx, invoice)
	if err != nil {
		return domain.ActionRefund, false, fmt.Errorf("create credit memo for invoice %s: %w", invoice.IncrementID, err)
	}
	memo.Invoice = invoice
	if err := p.memos.Refund(ctx, memo); err != nil {
		return domain.ActionRefund, false, fmt.Errorf("refund invoice %s: %w", invoice.IncrementID, err)
	}
	log.Info("invoice refunded after fraud review", zap.String("invoice", invoice.IncrementID), zap.String("credit_memo", memo.Reference))
	return domain.ActionRefund, true, nil
}
