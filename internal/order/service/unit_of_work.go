package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/fraudreview/internal/order/domain"
	pkgdb "github.com/smallbiznis/fraudreview/pkg/db"
	"gorm.io/gorm"
)

type unitOfWork struct {
	svc      *Service
	entities []domain.Entity
}

func (u *unitOfWork) Add(entity domain.Entity) domain.UnitOfWork {
	if entity != nil {
		u.entities = append(u.entities, entity)
	}
	return u
}

// Commit writes the collected entities in insertion order inside one transaction.
// Credit memos without an id are inserted, others updated.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if len(u.entities) == 0 {
		return nil
	}
	s := u.svc
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entity := range u.entities {
			var err error
			switch v := entity.(type) {
			case *domain.Order:
				err = s.saveOrder(ctx, tx, v)
			case *domain.Payment:
				err = s.repo.UpdatePayment(ctx, tx, v)
			case *domain.Invoice:
				err = s.repo.UpdateInvoice(ctx, tx, v)
			case *domain.CreditMemo:
				err = u.saveCreditMemo(ctx, tx, v)
			default:
				err = fmt.Errorf("%w: %T", domain.ErrUnsupportedEntity, entity)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *unitOfWork) saveCreditMemo(ctx context.Context, tx *gorm.DB, memo *domain.CreditMemo) error {
	s := u.svc
	if memo.ID != 0 {
		return s.repo.UpdateCreditMemo(ctx, tx, memo)
	}
	memo.ID = s.genID.Generate()
	if err := s.repo.InsertCreditMemo(ctx, tx, memo); err != nil {
		memo.ID = 0
		if pkgdb.IsDuplicateKeyErr(err) {
			return fmt.Errorf("%w: %s", domain.ErrCreditMemoExists, memo.Reference)
		}
		return fmt.Errorf("insert credit memo %s: %w", memo.Reference, err)
	}
	return nil
}
