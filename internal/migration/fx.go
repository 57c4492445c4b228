package migration

import (
	"context"
	"fmt"

	"github.com/smallbiznis/fraudreview/internal/config"
	storeservice "github.com/smallbiznis/fraudreview/internal/store/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	DB        *gorm.DB
	Config    config.Config
	Stores    *storeservice.Service
	Log       *zap.Logger
}

// Module prepares the schema and the default store before the HTTP server
// starts accepting notifications.
var Module = fx.Module("migrations",
	fx.Invoke(register),
)

func register(p Params) {
	log := p.Log.Named("migration")
	p.Lifecycle.Append(fx.StartHook(func(ctx context.Context) error {
		if err := Apply(p.DB); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		if err := p.Stores.EnsureDefault(ctx, p.Config.DefaultStoreName); err != nil {
			return fmt.Errorf("ensure default store: %w", err)
		}
		log.Info("schema ready", zap.String("dialect", p.DB.Dialector.Name()))
		return nil
	}))
}
