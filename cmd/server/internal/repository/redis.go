package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

const (
	keyPrefix     = "stock:"
	channelPrefix = "prices."
	snapshotTTL   = 1 * time.Hour // TTL prevents unbounded memory growth
)

// RedisCache mirrors every delta set into Redis so external consumers can
// read the latest quote (GET stock:<SYM>) or follow the live feed
// (SUBSCRIBE prices.<SYM>). It is a tick sink; failures are logged and never
// stall the tick loop.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (r *RedisCache) PublishDeltas(ctx context.Context, deltas []models.Quote) {
	if len(deltas) == 0 {
		return
	}

	// Atomic SET + PUBLISH per symbol in a single pipeline
	pipe := r.client.Pipeline()
	for _, q := range deltas {
		payload, err := json.Marshal(q)
		if err != nil {
			r.logger.Error("Quote marshal error", zap.String("symbol", q.Symbol), zap.Error(err))
			continue
		}
		pipe.Set(ctx, keyPrefix+q.Symbol, payload, snapshotTTL)
		pipe.Publish(ctx, channelPrefix+q.Symbol, payload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Redis pipeline error", zap.Error(err))
	}
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
