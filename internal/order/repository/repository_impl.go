package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fraudreview/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByIncrementID(ctx context.Context, db *gorm.DB, incrementID string) (*domain.Order, error) {
	var item domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, store_id, increment_id, status, currency, grand_total, created_at, updated_at
		 FROM sales_orders
		 WHERE increment_id = ?
		 LIMIT 1`,
		incrementID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindPayment(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, method, gateway_transaction_id, risk_check_id, review_state,
			amount_authorized, amount_paid, amount_refunded, created_at, updated_at
		 FROM sales_order_payments
		 WHERE order_id = ?
		 LIMIT 1`,
		orderID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]*domain.Invoice, error) {
	var items []*domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, increment_id, state, grand_total, refunded_amount, transaction_id,
			paid_at, created_at, updated_at
		 FROM sales_invoices
		 WHERE order_id = ?
		 ORDER BY created_at ASC, id ASC`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertOrder(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_orders (
			id, store_id, increment_id, status, currency, grand_total, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.StoreID,
		order.IncrementID,
		order.Status,
		order.Currency,
		order.GrandTotal,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_order_payments (
			id, order_id, method, gateway_transaction_id, risk_check_id, review_state,
			amount_authorized, amount_paid, amount_refunded, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.OrderID,
		payment.Method,
		payment.GatewayTransactionID,
		payment.RiskCheckID,
		payment.ReviewState,
		payment.AmountAuthorized,
		payment.AmountPaid,
		payment.AmountRefunded,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_invoices (
			id, order_id, increment_id, state, grand_total, refunded_amount, transaction_id,
			paid_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.OrderID,
		invoice.IncrementID,
		invoice.State,
		invoice.GrandTotal,
		invoice.RefundedAmount,
		invoice.TransactionID,
		invoice.PaidAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) InsertStatusHistory(ctx context.Context, db *gorm.DB, entry *domain.StatusHistory) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_order_status_history (id, order_id, status, comment, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.OrderID,
		entry.Status,
		entry.Comment,
		entry.CreatedAt,
	).Error
}

func (r *repo) InsertCreditMemo(ctx context.Context, db *gorm.DB, memo *domain.CreditMemo) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_creditmemos (
			id, order_id, invoice_id, reference, state, amount, currency, transaction_id,
			refunded_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		memo.ID,
		memo.OrderID,
		memo.InvoiceID,
		memo.Reference,
		memo.State,
		memo.Amount,
		memo.Currency,
		memo.TransactionID,
		memo.RefundedAt,
		memo.CreatedAt,
	).Error
}

func (r *repo) UpdateOrder(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sales_orders
		 SET status = ?, grand_total = ?, updated_at = ?
		 WHERE id = ?`,
		order.Status,
		order.GrandTotal,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sales_order_payments
		 SET review_state = ?, amount_paid = ?, amount_refunded = ?, updated_at = ?
		 WHERE id = ?`,
		payment.ReviewState,
		payment.AmountPaid,
		payment.AmountRefunded,
		payment.UpdatedAt,
		payment.ID,
	).Error
}

func (r *repo) UpdateInvoice(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sales_invoices
		 SET state = ?, refunded_amount = ?, paid_at = ?, updated_at = ?
		 WHERE id = ?`,
		invoice.State,
		invoice.RefundedAmount,
		invoice.PaidAt,
		invoice.UpdatedAt,
		invoice.ID,
	).Error
}

func (r *repo) UpdateCreditMemo(ctx context.Context, db *gorm.DB, memo *domain.CreditMemo) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sales_creditmemos
		 SET state = ?, transaction_id = ?, refunded_at = ?
		 WHERE id = ?`,
		memo.State,
		memo.TransactionID,
		memo.RefundedAt,
		memo.ID,
	).Error
}
