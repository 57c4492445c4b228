package repository

import (
	"context"

	"github.com/smallbiznis/fraudreview/internal/store/domain"
	pkgdb "github.com/smallbiznis/fraudreview/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// List returns active stores in display order.
func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Store, error) {
	var items []domain.Store
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, sort_order, is_active, created_at
		 FROM stores
		 WHERE is_active = TRUE
		 ORDER BY sort_order ASC, id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, store *domain.Store) (bool, error) {
	query := pkgdb.InsertIgnoringConflict(db,
		`INSERT INTO stores (id, code, name, sort_order, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"code",
	)
	res := db.WithContext(ctx).Exec(
		query,
		store.ID,
		store.Code,
		store.Name,
		store.SortOrder,
		store.IsActive,
		store.CreatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM stores`).Scan(&count).Error
	return count, err
}
