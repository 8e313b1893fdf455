package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

// Producer pushes ingestion jobs for pending submissions.
type Producer struct {
	client *redis.Client
	queue  string
}

func NewProducer(redisClient *RedisClient) *Producer {
	return &Producer{
		client: redisClient.Client(),
		queue:  redisClient.queue,
	}
}

func (p *Producer) EnqueueIngestionJob(ctx context.Context, job model.IngestionJob) error {
	data, err := EncodeJob(job)
	if err != nil {
		return err
	}

	if err := p.client.LPush(ctx, p.queue, data).Err(); err != nil {
		return errors.NewRetryableError(err, fmt.Sprintf("enqueue submission %s", job.SubmissionID))
	}
	return nil
}

func EncodeJob(job model.IngestionJob) ([]byte, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode ingestion job: %w", err)
	}
	return data, nil
}

// DecodeJob parses a queued message. Messages without a submission id are rejected.
func DecodeJob(data []byte) (model.IngestionJob, error) {
	var job model.IngestionJob
	if err := json.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("decode ingestion job: %w", err)
	}
	if job.SubmissionID == uuid.Nil || job.StorageKey == "" {
		return job, fmt.Errorf("decode ingestion job: missing submission id or storage key")
	}
	return job, nil
}
