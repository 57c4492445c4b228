package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/fraudreview/internal/config"
	"github.com/smallbiznis/fraudreview/internal/fraudreview"
	"github.com/smallbiznis/fraudreview/internal/fraudreview/webhook"
	"github.com/smallbiznis/fraudreview/internal/lock"
	"github.com/smallbiznis/fraudreview/internal/observability"
	obsmiddleware "github.com/smallbiznis/fraudreview/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/fraudreview/internal/observability/metrics"
	obstracing "github.com/smallbiznis/fraudreview/internal/observability/tracing"
	"github.com/smallbiznis/fraudreview/internal/order"
	"github.com/smallbiznis/fraudreview/internal/payment/adapters/braintree"
	"github.com/smallbiznis/fraudreview/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	store.Module,
	order.Module,
	braintree.Module,
	lock.Module,
	fraudreview.Module,
	fx.Provide(func(s *webhook.Service) NotificationIngester { return s }),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NotificationIngester accepts raw ENS deliveries.
type NotificationIngester interface {
	IngestNotification(ctx context.Context, remoteAddr string, payload []byte) (*webhook.Result, error)
}

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, trustedProxies []string) (*gin.Engine, error) {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) (*gin.Engine, error) {
	return NewEngine(obsCfg, httpMetrics, cfg.TrustedProxies)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	notifications NotificationIngester
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Notifications NotificationIngester
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		notifications: p.Notifications,
	}
	svc.registerFraudReviewRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerFraudReviewRoutes() {
	group := s.engine.Group("/fraud-review")
	group.POST("/kount/ens", s.HandleKountNotification)
}
