package lock

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/fraudreview/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyOrderLock = "fraudreview:order:lock:%s"

// OrderLocker guards one order increment id at a time. A disabled locker
// grants every request.
type OrderLocker struct {
	locker *Locker
	ttl    time.Duration
}

// Release is returned by Acquire; it is safe to call on a disabled locker.
type Release func(ctx context.Context) error

func NewOrderLocker(locker *Locker, ttl time.Duration) *OrderLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &OrderLocker{locker: locker, ttl: ttl}
}

func (l *OrderLocker) Enabled() bool {
	return l != nil && l.locker != nil
}

// Acquire takes the lock for incrementID. ok is false when another holder has it.
func (l *OrderLocker) Acquire(ctx context.Context, incrementID string) (Release, bool, error) {
	noop := func(context.Context) error { return nil }
	if !l.Enabled() {
		return noop, true, nil
	}
	key := OrderKey(incrementID)
	token, ok, err := l.locker.TryLock(ctx, key, l.ttl)
	if err != nil {
		return noop, false, err
	}
	if !ok {
		return noop, false, nil
	}
	return func(ctx context.Context) error {
		return l.locker.Release(ctx, key, token)
	}, true, nil
}

func OrderKey(incrementID string) string {
	return fmt.Sprintf(keyOrderLock, strings.TrimSpace(incrementID))
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
}

// NewOrderLockerFromConfig dials Redis when REDIS_ADDR is set; otherwise order
// locking is disabled.
func NewOrderLockerFromConfig(p Params) *OrderLocker {
	log := p.Log.Named("lock")
	if !p.Cfg.RedisEnabled() {
		log.Info("redis not configured, order locking disabled")
		return NewOrderLocker(nil, p.Cfg.OrderLockTTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Cfg.RedisAddr,
		Password: strings.TrimSpace(p.Cfg.RedisPassword),
		DB:       p.Cfg.RedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed", zap.String("addr", p.Cfg.RedisAddr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Info("order locking enabled", zap.String("addr", p.Cfg.RedisAddr), zap.Duration("ttl", p.Cfg.OrderLockTTL))
	return NewOrderLocker(NewLocker(client), p.Cfg.OrderLockTTL)
}

var Module = fx.Module("lock",
	fx.Provide(NewOrderLockerFromConfig),
)
