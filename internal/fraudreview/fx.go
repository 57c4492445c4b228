package fraudreview

import (
	"github.com/smallbiznis/fraudreview/internal/config"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/domain"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/guard"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/repository"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/service"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/webhook"
	"github.com/smallbiznis/fraudreview/internal/order/creditmemo"
	orderservice "github.com/smallbiznis/fraudreview/internal/order/service"
	"github.com/smallbiznis/fraudreview/internal/payment/gateway"
	storeservice "github.com/smallbiznis/fraudreview/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fraudreview",
	fx.Provide(
		func(s *orderservice.Service) domain.OrderStore { return s },
		func(s *orderservice.Service) domain.OrderRepository { return s },
		func(s *orderservice.Service) domain.UnitOfWorkFactory { return s },
		func(c gateway.Client) domain.TransactionFinder { return c },
		func(f *creditmemo.Factory) domain.CreditMemoFactory { return f },
		func(s *creditmemo.Service) domain.CreditMemoService { return s },
		func(s *config.ScopeStore) domain.ConfigStore { return s },
		func(s *storeservice.Service) domain.StoreDirectory { return s },
	),
	fx.Provide(repository.Provide),
	fx.Provide(guard.New),
	fx.Provide(service.NewProcessor),
	fx.Provide(func(p *service.Processor) webhook.EventProcessor { return p }),
	fx.Provide(webhook.NewService),
)
