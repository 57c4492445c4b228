package domain

import (
	"context"

	orderdomain "github.com/smallbiznis/fraudreview/internal/order/domain"
	"github.com/smallbiznis/fraudreview/internal/payment/gateway"
	storedomain "github.com/smallbiznis/fraudreview/internal/store/domain"
)

// OrderStore loads orders; a missing order is (nil, nil).
type OrderStore interface {
	LoadByIncrementID(ctx context.Context, incrementID string) (*orderdomain.Order, error)
}

type OrderRepository interface {
	Save(ctx context.Context, order *orderdomain.Order) error
}

type UnitOfWorkFactory interface {
	NewUnitOfWork() orderdomain.UnitOfWork
}

// TransactionFinder looks up gateway transactions; a missing one is (nil, nil).
type TransactionFinder interface {
	FindTransaction(ctx context.Context, id string) (*gateway.Transaction, error)
}

type CreditMemoFactory interface {
	CreateByInvoice(ctx context.Context, invoice *orderdomain.Invoice) (*orderdomain.CreditMemo, error)
}

type CreditMemoService interface {
	Refund(ctx context.Context, memo *orderdomain.CreditMemo) error
}

// ConfigStore reads settings by slash path; unset values are "".
type ConfigStore interface {
	GetValue(path string) string
	GetStoreValue(path string, storeID int64) string
}

type StoreDirectory interface {
	GetStores(ctx context.Context) ([]storedomain.Store, error)
}
