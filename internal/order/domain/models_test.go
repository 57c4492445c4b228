package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func TestUnderReviewOnlyForFraudAndPaymentReview(t *testing.T) {
	for _, status := range []OrderStatus{
		OrderStatusPending, OrderStatusPendingPayment, OrderStatusPaymentReview, OrderStatusFraud,
		OrderStatusProcessing, OrderStatusComplete, OrderStatusCanceled, OrderStatusClosed, OrderStatusHolded,
	} {
		want := status == OrderStatusFraud || status == OrderStatusPaymentReview
		assert.Equal(t, want, status.UnderReview(), string(status))
	}
	assert.False(t, OrderStatus("bogus").UnderReview())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus(" Payment_Review ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPaymentReview, status)

	_, err = ParseOrderStatus("suspected_fraud")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestAcceptPayment(t *testing.T) {
	order := &Order{ID: 1, Status: OrderStatusFraud, Payment: &Payment{ID: 2, OrderID: 1}}

	require.NoError(t, order.AcceptPayment(testNow))

	assert.Equal(t, OrderStatusProcessing, order.Status)
	assert.Equal(t, PaymentReviewAccepted, order.Payment.ReviewState)
	require.Len(t, order.History, 1)
	assert.Equal(t, OrderStatusProcessing, order.History[0].Status)
	assert.Equal(t, testNow, order.History[0].CreatedAt)
}

func TestDenyPayment(t *testing.T) {
	order := &Order{ID: 1, Status: OrderStatusPaymentReview, Payment: &Payment{ID: 2, OrderID: 1}}

	require.NoError(t, order.DenyPayment(testNow))

	assert.Equal(t, OrderStatusCanceled, order.Status)
	assert.Equal(t, PaymentReviewDenied, order.Payment.ReviewState)
	require.Len(t, order.History, 1)
}

func TestPaymentTransitionsRequirePayment(t *testing.T) {
	order := &Order{Status: OrderStatusFraud}
	assert.ErrorIs(t, order.AcceptPayment(testNow), ErrPaymentMissing)
	assert.ErrorIs(t, order.DenyPayment(testNow), ErrPaymentMissing)
	assert.Equal(t, OrderStatusFraud, order.Status)
}

func TestInvoiceLifecycle(t *testing.T) {
	inv := &Invoice{State: InvoiceStateOpen, GrandTotal: 5000}
	assert.False(t, inv.CanRefund(), "open invoices are not refundable")

	inv.Pay(testNow)
	assert.True(t, inv.IsPaid())
	require.NotNil(t, inv.PaidAt)
	assert.True(t, inv.CanRefund())

	inv.RefundedAmount = 5000
	assert.Equal(t, int64(0), inv.RefundableAmount())
	assert.False(t, inv.CanRefund())

	inv.Void(testNow)
	assert.Equal(t, InvoiceStateCanceled, inv.State)
	inv.Void(testNow.Add(time.Hour))
	assert.Equal(t, testNow, inv.UpdatedAt, "voiding twice keeps the first timestamp")
}

func TestFullyRefunded(t *testing.T) {
	order := &Order{}
	assert.False(t, order.FullyRefunded(), "orders without invoices are not refunded")

	order.Invoices = []*Invoice{
		{State: InvoiceStatePaid, GrandTotal: 1000, RefundedAmount: 1000},
		{State: InvoiceStateCanceled, GrandTotal: 300},
	}
	assert.True(t, order.FullyRefunded())

	order.Invoices = append(order.Invoices, &Invoice{State: InvoiceStatePaid, GrandTotal: 200, RefundedAmount: 100})
	assert.False(t, order.FullyRefunded())
}

func TestCreditMemoMarkRefunded(t *testing.T) {
	memo := &CreditMemo{State: CreditMemoStateOpen}
	memo.MarkRefunded("refund_1", testNow)

	assert.Equal(t, CreditMemoStateRefunded, memo.State)
	assert.Equal(t, "refund_1", memo.TransactionID)
	require.NotNil(t, memo.RefundedAt)
}
