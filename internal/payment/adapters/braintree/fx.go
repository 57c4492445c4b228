package braintree

import (
	"github.com/smallbiznis/fraudreview/internal/payment/gateway"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.braintree",
	fx.Provide(ConfigFrom),
	fx.Provide(func(cfg Config, log *zap.Logger) gateway.Client {
		return NewClient(cfg, log)
	}),
)
