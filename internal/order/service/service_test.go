package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/fraudreview/internal/clock"
	"github.com/smallbiznis/fraudreview/internal/migration"
	"github.com/smallbiznis/fraudreview/internal/order/domain"
	"github.com/smallbiznis/fraudreview/internal/order/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	conn := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(testNow),
	}), conn
}

func seedOrder(t *testing.T, svc *Service, incrementID string, invoices ...*domain.Invoice) *domain.Order {
	t.Helper()
	order := &domain.Order{
		StoreID:     1,
		IncrementID: incrementID,
		Status:      domain.OrderStatusFraud,
		Currency:    "USD",
		GrandTotal:  5000,
		Payment: &domain.Payment{
			Method:               "braintree",
			GatewayTransactionID: "bt_" + incrementID,
			RiskCheckID:          "KTX_" + incrementID,
			AmountAuthorized:     5000,
		},
		Invoices: invoices,
	}
	require.NoError(t, svc.Create(context.Background(), order))
	return order
}

func TestLoadByIncrementID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seeded := seedOrder(t, svc, "100000001", &domain.Invoice{
		IncrementID: "INV-1",
		State:       domain.InvoiceStateOpen,
		GrandTotal:  5000,
	})

	order, err := svc.LoadByIncrementID(ctx, " 100000001 ")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, seeded.ID, order.ID)
	assert.Equal(t, domain.OrderStatusFraud, order.Status)
	require.NotNil(t, order.Payment)
	assert.Equal(t, "KTX_100000001", order.Payment.RiskCheckID)
	assert.Equal(t, domain.PaymentReviewNone, order.Payment.ReviewState)
	require.Len(t, order.Invoices, 1)
	assert.Same(t, order, order.Invoices[0].Order)
	assert.True(t, order.CreatedAt.Equal(testNow))
}

func TestLoadByIncrementIDMissing(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.LoadByIncrementID(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, order)

	order, err = svc.LoadByIncrementID(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func statusHistory(t *testing.T, conn *gorm.DB, orderID snowflake.ID) []*domain.StatusHistory {
	t.Helper()
	var history []*domain.StatusHistory
	require.NoError(t, conn.Where("order_id = ?", orderID).Order("created_at, id").Find(&history).Error)
	return history
}

func TestSavePersistsPaymentAndHistory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedOrder(t, svc, "100000002")

	order, err := svc.LoadByIncrementID(ctx, "100000002")
	require.NoError(t, err)
	require.NoError(t, order.AcceptPayment(testNow))
	require.NoError(t, svc.Save(ctx, order))

	reloaded, err := svc.LoadByIncrementID(ctx, "100000002")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, reloaded.Status)
	assert.Equal(t, domain.PaymentReviewAccepted, reloaded.Payment.ReviewState)

	history := statusHistory(t, conn, order.ID)
	require.Len(t, history, 1)
	assert.Equal(t, "Approved the payment online.", history[0].Comment)
	assert.Equal(t, domain.OrderStatusProcessing, history[0].Status)

	// History already flushed is not inserted twice.
	require.NoError(t, svc.Save(ctx, order))
	assert.Len(t, statusHistory(t, conn, order.ID), 1)
}

func TestUnitOfWorkCommitsAllEntities(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedOrder(t, svc, "100000003", &domain.Invoice{
		IncrementID: "INV-3",
		State:       domain.InvoiceStatePaid,
		GrandTotal:  5000,
	})

	order, err := svc.LoadByIncrementID(ctx, "100000003")
	require.NoError(t, err)
	invoice := order.Invoices[0]
	invoice.RefundedAmount = 5000
	memo := &domain.CreditMemo{
		OrderID:   order.ID,
		InvoiceID: invoice.ID,
		Reference: "memo-1",
		State:     domain.CreditMemoStateOpen,
		Amount:    5000,
		Currency:  "USD",
		CreatedAt: testNow,
	}
	memo.MarkRefunded("rf_1", testNow)
	order.SetStatus(domain.OrderStatusClosed, testNow)
	order.AddComment("refunded", testNow)

	err = svc.NewUnitOfWork().Add(memo).Add(invoice).Add(order).Commit(ctx)
	require.NoError(t, err)
	assert.NotZero(t, memo.ID)

	var memos []*domain.CreditMemo
	require.NoError(t, conn.Where("order_id = ?", order.ID).Find(&memos).Error)
	require.Len(t, memos, 1)
	assert.Equal(t, domain.CreditMemoStateRefunded, memos[0].State)
	assert.Equal(t, "rf_1", memos[0].TransactionID)

	reloaded, err := svc.LoadByIncrementID(ctx, "100000003")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusClosed, reloaded.Status)
	assert.Equal(t, int64(5000), reloaded.Invoices[0].RefundedAmount)
}

type unsupported struct{ domain.Entity }

func TestUnitOfWorkRollsBackOnUnsupportedEntity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedOrder(t, svc, "100000004")

	order, err := svc.LoadByIncrementID(ctx, "100000004")
	require.NoError(t, err)
	order.SetStatus(domain.OrderStatusCanceled, testNow)

	err = svc.NewUnitOfWork().Add(order).Add(unsupported{}).Commit(ctx)
	require.ErrorIs(t, err, domain.ErrUnsupportedEntity)

	reloaded, err := svc.LoadByIncrementID(ctx, "100000004")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFraud, reloaded.Status)
}

func TestEmptyUnitOfWorkIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.NewUnitOfWork().Commit(context.Background()))
}

func TestCreateRejectsDuplicateIncrementID(t *testing.T) {
	svc, _ := newTestService(t)
	seedOrder(t, svc, "100000005")

	err := svc.Create(context.Background(), &domain.Order{
		StoreID:     1,
		IncrementID: "100000005",
		Status:      domain.OrderStatusProcessing,
		Currency:    "USD",
	})
	require.ErrorIs(t, err, domain.ErrOrderExists)
}
