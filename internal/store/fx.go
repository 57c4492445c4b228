package store

import (
	"github.com/smallbiznis/fraudreview/internal/store/repository"
	"github.com/smallbiznis/fraudreview/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
