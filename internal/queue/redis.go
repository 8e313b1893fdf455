package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
)

const pingTimeout = 5 * time.Second

// RedisClient owns the connection shared by the producer and the consumer of
// the ingestion queue.
type RedisClient struct {
	client *redis.Client
	queue  string
	dlq    string
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.RedisAddr(), err)
	}

	return &RedisClient{
		client: rdb,
		queue:  cfg.Redis.IngestionQueue,
		dlq:    cfg.Redis.IngestionQueue + cfg.Redis.DLQSuffix,
	}, nil
}

// QueueDepth reports how many ingestion jobs are waiting and how many sit in the DLQ.
func (r *RedisClient) QueueDepth(ctx context.Context) (pending, dead int64, err error) {
	pipe := r.client.Pipeline()
	pendingCmd := pipe.LLen(ctx, r.queue)
	deadCmd := pipe.LLen(ctx, r.dlq)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("queue depth: %w", err)
	}
	return pendingCmd.Val(), deadCmd.Val(), nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Client() *redis.Client {
	return r.client
}
