package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByIncrementID(ctx context.Context, db *gorm.DB, incrementID string) (*Order, error)
	FindPayment(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Payment, error)
	ListInvoices(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]*Invoice, error)

	InsertOrder(ctx context.Context, db *gorm.DB, order *Order) error
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertStatusHistory(ctx context.Context, db *gorm.DB, entry *StatusHistory) error
	InsertCreditMemo(ctx context.Context, db *gorm.DB, memo *CreditMemo) error

	UpdateOrder(ctx context.Context, db *gorm.DB, order *Order) error
	UpdatePayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	UpdateInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	UpdateCreditMemo(ctx context.Context, db *gorm.DB, memo *CreditMemo) error
}

// UnitOfWork collects aggregate parts and persists them in one transaction.
type UnitOfWork interface {
	Add(entity Entity) UnitOfWork
	Commit(ctx context.Context) error
}
