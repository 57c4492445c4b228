package domain

import "strings"

// OrderStatus is the sales order status code.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaymentReview  OrderStatus = "payment_review"
	OrderStatusFraud          OrderStatus = "fraud"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusComplete       OrderStatus = "complete"
	OrderStatusCanceled       OrderStatus = "canceled"
	OrderStatusClosed         OrderStatus = "closed"
	OrderStatusHolded         OrderStatus = "holded"
)

func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case OrderStatusPending,
		OrderStatusPendingPayment,
		OrderStatusPaymentReview,
		OrderStatusFraud,
		OrderStatusProcessing,
		OrderStatusComplete,
		OrderStatusCanceled,
		OrderStatusClosed,
		OrderStatusHolded:
		return status, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

// UnderReview reports whether a fraud decision may still act on the order.
func (s OrderStatus) UnderReview() bool {
	switch s {
	case OrderStatusFraud, OrderStatusPaymentReview:
		return true
	case OrderStatusPending,
		OrderStatusPendingPayment,
		OrderStatusProcessing,
		OrderStatusComplete,
		OrderStatusCanceled,
		OrderStatusClosed,
		OrderStatusHolded:
		return false
	default:
		return false
	}
}

// PaymentReviewState records the outcome of a manual or third-party payment review.
type PaymentReviewState string

const (
	PaymentReviewNone     PaymentReviewState = "none"
	PaymentReviewAccepted PaymentReviewState = "accepted"
	PaymentReviewDenied   PaymentReviewState = "denied"
)

// InvoiceState mirrors the invoice lifecycle: open until captured, paid, or canceled by a void.
type InvoiceState string

const (
	InvoiceStateOpen     InvoiceState = "open"
	InvoiceStatePaid     InvoiceState = "paid"
	InvoiceStateCanceled InvoiceState = "canceled"
)

type CreditMemoState string

const (
	CreditMemoStateOpen     CreditMemoState = "open"
	CreditMemoStateRefunded CreditMemoState = "refunded"
)
