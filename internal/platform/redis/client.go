package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	cfgpkg "github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
)

// NewClient connects to a single node or a cluster depending on cfg and
// verifies the connection with a PING.
func NewClient(ctx context.Context, cfg *cfgpkg.RedisConfig) (goredis.UniversalClient, error) {
	if cfg == nil || len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("redis: no addresses configured")
	}

	var rdb goredis.UniversalClient
	if cfg.ClusterMode {
		rdb = goredis.NewClusterClient(&goredis.ClusterOptions{
			Addrs:    cfg.Addresses,
			Password: cfg.Password,
			PoolSize: cfg.PoolSize,
		})
	} else {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addresses[0],
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
