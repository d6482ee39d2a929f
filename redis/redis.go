package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect returns a client for addr, or nil when Redis does not answer a
// ping, in which case callers fall back to in-process state.
func Connect(ctx context.Context, addr string, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available, running without redis", zap.String("addr", addr), zap.Error(err))
		client.Close()
		return nil
	}

	logger.Info("redis connected", zap.String("addr", addr))
	return client
}
