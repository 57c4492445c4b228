package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Store is a storefront whose scoped settings carry the Kount merchant id.
type Store struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Code      string    `gorm:"size:191;not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Store) TableName() string { return "stores" }

var ErrInvalidName = errors.New("invalid_name")

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]Store, error)
	Insert(ctx context.Context, db *gorm.DB, store *Store) (bool, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
