package cache

import (
	"context"
	"fmt"
	"time"

	"tokenestate-backend/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dialTimeout = 5 * time.Second

// OpenRedis connects and pings. The client backs the idempotency store and
// the event stream.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db, DialTimeout: dialTimeout})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	logger.Info("redis: connected", zap.String("addr", addr), zap.Int("db", db))
	return r, nil
}

// Pinger returns a health check for rdb.
func Pinger(rdb redis.Cmdable) func(ctx context.Context) error {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
