package ratelimit

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	platformredis "github.com/VML-Technologies/VML.Perito-sub005/internal/platform/redis"
	cfgpkg "github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
)

// NewStore picks the hit store named by rate_limit.store.
func NewStore(lc fx.Lifecycle, cfg *cfgpkg.Config, log *zap.SugaredLogger) (Store, error) {
	if cfg.RateLimit.Store != cfgpkg.RateLimitStoreRedis {
		return NewMemoryStore(cfg.RateLimit.SweepProbability), nil
	}
	client, err := platformredis.NewClient(context.Background(), &cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Infow("closing redis rate limit client")
			return client.Close()
		},
	})
	log.Infow("rate limit store ready", "store", "redis", "addresses", cfg.Redis.Addresses)
	return NewRedisStore(client, cfg.RateLimit.KeyPrefix), nil
}

func NewFromConfig(store Store, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Limiter {
	l := NewLimiter(store, Options{
		Enabled:     cfg.RateLimit.IsEnabled(),
		Window:      cfg.RateLimit.Window,
		MaxRequests: cfg.RateLimit.MaxRequests,
	}, log)
	if !l.Enabled() {
		log.Warnw("rate limiting disabled by configuration")
	}
	return l
}

// Module exposes the rate limiter via Fx.
var Module = fx.Options(
	fx.Provide(NewStore),
	fx.Provide(NewFromConfig),
)
