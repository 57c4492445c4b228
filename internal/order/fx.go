package order

import (
	"github.com/smallbiznis/fraudreview/internal/order/creditmemo"
	"github.com/smallbiznis/fraudreview/internal/order/repository"
	"github.com/smallbiznis/fraudreview/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) creditmemo.UnitOfWorkFactory { return s }),
	fx.Provide(creditmemo.NewFactory),
	fx.Provide(creditmemo.NewService),
)
