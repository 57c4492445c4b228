package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/fraudreview/internal/clock"
	"github.com/smallbiznis/fraudreview/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func NewService(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("store.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) GetStores(ctx context.Context) ([]domain.Store, error) {
	return s.repo.List(ctx, s.db)
}

// Create registers a store; the code is derived from the name.
func (s *Service) Create(ctx context.Context, id int64, name string, sortOrder int) (*domain.Store, error) {
	name = strings.TrimSpace(name)
	code := slug.Make(name)
	if name == "" || code == "" {
		return nil, domain.ErrInvalidName
	}
	store := &domain.Store{
		ID:        id,
		Code:      strings.ReplaceAll(code, "-", "_"),
		Name:      name,
		SortOrder: sortOrder,
		IsActive:  true,
		CreatedAt: s.clock.Now(),
	}
	inserted, err := s.repo.Insert(ctx, s.db, store)
	if err != nil {
		return nil, err
	}
	if inserted {
		s.log.Info("store created", zap.Int64("store_id", store.ID), zap.String("code", store.Code))
	}
	return store, nil
}

// EnsureDefault creates store 1 when no store exists yet.
func (s *Service) EnsureDefault(ctx context.Context, name string) error {
	count, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = s.Create(ctx, 1, name, 0)
	return err
}
