package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/logger"
)

const popTimeout = 5 * time.Second

type Consumer struct {
	client *redis.Client
	queue  string
	dlq    string
	log    zerolog.Logger
}

// MessageHandler processes one message. A non-nil error moves the message to
// the dead-letter queue.
type MessageHandler func(ctx context.Context, data []byte) error

func NewConsumer(redisClient *RedisClient) *Consumer {
	return &Consumer{
		client: redisClient.Client(),
		queue:  redisClient.queue,
		dlq:    redisClient.dlq,
		log:    logger.Component("queue"),
	}
}

// ConsumeIngestionQueue blocks until ctx is done.
func (c *Consumer) ConsumeIngestionQueue(ctx context.Context, handler MessageHandler) error {
	return c.consume(ctx, c.queue, handler)
}

// DeadLetter pushes message to the dead-letter queue of the ingestion queue.
func (c *Consumer) DeadLetter(ctx context.Context, message []byte) {
	if err := c.client.LPush(ctx, c.dlq, message).Err(); err != nil {
		c.log.Error().Err(err).Str("dlq", c.dlq).Msg("Failed to move message to DLQ")
		return
	}
	c.log.Warn().Str("dlq", c.dlq).Msg("Message moved to DLQ")
}

// ReplayDeadLetters moves every dead-lettered message back onto the ingestion
// queue, oldest first, and returns how many were moved.
func (c *Consumer) ReplayDeadLetters(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := c.client.RPopLPush(ctx, c.dlq, c.queue).Err()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("replay %s: %w", c.dlq, err)
		}
		moved++
	}
	if moved > 0 {
		c.log.Info().Int("count", moved).Str("dlq", c.dlq).Msg("Replayed dead-lettered messages")
	}
	return moved, nil
}

func (c *Consumer) consume(ctx context.Context, queueName string, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result, err := c.client.BRPop(ctx, popTimeout, queueName).Result()
			if err != nil {
				if err == redis.Nil {
					continue // Timeout, continue polling
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to consume message")
				time.Sleep(time.Second)
				continue
			}

			if len(result) < 2 {
				continue
			}

			message := []byte(result[1])
			if err := handler(ctx, message); err != nil {
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to process message")
				c.DeadLetter(ctx, message)
			}
		}
	}
}
