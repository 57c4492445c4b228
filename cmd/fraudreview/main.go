package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fraudreview/internal/clock"
	"github.com/smallbiznis/fraudreview/internal/config"
	"github.com/smallbiznis/fraudreview/internal/migration"
	"github.com/smallbiznis/fraudreview/internal/observability"
	"github.com/smallbiznis/fraudreview/internal/server"
	"github.com/smallbiznis/fraudreview/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module,
		observability.Module,
		clock.Module,
		db.Module,
		fx.Provide(newIDNode),
		// Migrations start before the HTTP listener so the first
		// notification never meets a missing table.
		migration.Module,
		server.Module,
	).Run()
}

func newIDNode(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.NodeID, err)
	}
	return node, nil
}
