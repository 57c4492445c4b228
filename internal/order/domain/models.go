// Package domain holds the sales order aggregate touched by fraud decisions:
// the order, its payment, invoices, credit memos and status history.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Entity is implemented by every aggregate part a UnitOfWork can persist.
type Entity interface {
	entity()
}

type Order struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	StoreID     int64        `gorm:"not null;index"`
	IncrementID string       `gorm:"size:191;not null;uniqueIndex"`
	Status      OrderStatus  `gorm:"type:text;not null"`
	Currency    string       `gorm:"type:text;not null"`
	GrandTotal  int64        `gorm:"not null;default:0"`
	CreatedAt   time.Time    `gorm:"not null"`
	UpdatedAt   time.Time    `gorm:"not null"`

	Payment  *Payment   `gorm:"-"`
	Invoices []*Invoice `gorm:"-"`
	// History holds comments appended since the order was loaded.
	History []*StatusHistory `gorm:"-"`
}

func (Order) TableName() string { return "sales_orders" }

func (*Order) entity() {}

// SetStatus changes the order status without recording a comment.
func (o *Order) SetStatus(status OrderStatus, now time.Time) {
	o.Status = status
	o.UpdatedAt = now
}

// AddComment appends a status history entry carrying the current status.
func (o *Order) AddComment(comment string, now time.Time) {
	o.History = append(o.History, &StatusHistory{
		OrderID:   o.ID,
		Status:    o.Status,
		Comment:   comment,
		CreatedAt: now,
	})
}

// AcceptPayment releases an order held for payment review.
func (o *Order) AcceptPayment(now time.Time) error {
	if o.Payment == nil {
		return ErrPaymentMissing
	}
	o.Payment.ReviewState = PaymentReviewAccepted
	o.Payment.UpdatedAt = now
	o.SetStatus(OrderStatusProcessing, now)
	o.AddComment("Approved the payment online.", now)
	return nil
}

// DenyPayment rejects the payment under review and cancels the order.
func (o *Order) DenyPayment(now time.Time) error {
	if o.Payment == nil {
		return ErrPaymentMissing
	}
	o.Payment.ReviewState = PaymentReviewDenied
	o.Payment.UpdatedAt = now
	o.SetStatus(OrderStatusCanceled, now)
	o.AddComment("Denied the payment online.", now)
	return nil
}

// FullyRefunded reports whether every live invoice has been refunded in full.
func (o *Order) FullyRefunded() bool {
	live := 0
	for _, inv := range o.Invoices {
		if inv.State == InvoiceStateCanceled {
			continue
		}
		live++
		if inv.RefundableAmount() > 0 {
			return false
		}
	}
	return live > 0
}

type Payment struct {
	ID                   snowflake.ID       `gorm:"primaryKey"`
	OrderID              snowflake.ID       `gorm:"not null;uniqueIndex"`
	Method               string             `gorm:"type:text;not null"`
	GatewayTransactionID string             `gorm:"type:text"`
	RiskCheckID          string             `gorm:"type:text"`
	ReviewState          PaymentReviewState `gorm:"type:text;not null"`
	AmountAuthorized     int64              `gorm:"not null;default:0"`
	AmountPaid           int64              `gorm:"not null;default:0"`
	AmountRefunded       int64              `gorm:"not null;default:0"`
	CreatedAt            time.Time          `gorm:"not null"`
	UpdatedAt            time.Time          `gorm:"not null"`
}

func (Payment) TableName() string { return "sales_order_payments" }

func (*Payment) entity() {}

type Invoice struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	OrderID        snowflake.ID `gorm:"not null;index"`
	IncrementID    string       `gorm:"type:text;not null"`
	State          InvoiceState `gorm:"type:text;not null"`
	GrandTotal     int64        `gorm:"not null;default:0"`
	RefundedAmount int64        `gorm:"not null;default:0"`
	TransactionID  string       `gorm:"type:text"`
	PaidAt         *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`

	// Order is the owning order, set when invoices are loaded with it.
	Order *Order `gorm:"-"`
}

func (Invoice) TableName() string { return "sales_invoices" }

func (*Invoice) entity() {}

func (i *Invoice) IsPaid() bool {
	return i.State == InvoiceStatePaid
}

// Void cancels the invoice. Voiding an already canceled invoice is a no-op.
func (i *Invoice) Void(now time.Time) {
	if i.State == InvoiceStateCanceled {
		return
	}
	i.State = InvoiceStateCanceled
	i.UpdatedAt = now
}

// Pay marks the invoice as captured.
func (i *Invoice) Pay(now time.Time) {
	if i.State == InvoiceStatePaid {
		return
	}
	i.State = InvoiceStatePaid
	i.PaidAt = &now
	i.UpdatedAt = now
}

func (i *Invoice) RefundableAmount() int64 {
	remaining := i.GrandTotal - i.RefundedAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanRefund reports whether a credit memo may be created against the invoice.
func (i *Invoice) CanRefund() bool {
	return i.State == InvoiceStatePaid && i.RefundableAmount() > 0
}

type CreditMemo struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	OrderID       snowflake.ID    `gorm:"not null;index"`
	InvoiceID     snowflake.ID    `gorm:"not null;index"`
	Reference     string          `gorm:"size:191;not null;uniqueIndex"`
	State         CreditMemoState `gorm:"type:text;not null"`
	Amount        int64           `gorm:"not null"`
	Currency      string          `gorm:"type:text;not null"`
	TransactionID string          `gorm:"type:text"`
	RefundedAt    *time.Time
	CreatedAt     time.Time `gorm:"not null"`

	Invoice *Invoice `gorm:"-"`
}

func (CreditMemo) TableName() string { return "sales_creditmemos" }

func (*CreditMemo) entity() {}

func (m *CreditMemo) MarkRefunded(transactionID string, now time.Time) {
	m.State = CreditMemoStateRefunded
	m.TransactionID = transactionID
	m.RefundedAt = &now
}

type StatusHistory struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	OrderID   snowflake.ID `gorm:"not null;index"`
	Status    OrderStatus  `gorm:"type:text;not null"`
	Comment   string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null"`
}

func (StatusHistory) TableName() string { return "sales_order_status_history" }
