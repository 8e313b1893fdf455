package worker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/logger"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/queue"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

// Processor finalizes one pending submission.
type Processor interface {
	Process(ctx context.Context, job model.IngestionJob) error
}

// IngestionWorker feeds queued submissions through the worker pool.
type IngestionWorker struct {
	processor  Processor
	redis      *queue.RedisClient
	consumer   *queue.Consumer
	deadLetter func(ctx context.Context, message []byte)
	replay     bool
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewIngestionWorker(cfg *config.Config, processor Processor, redisClient *queue.RedisClient) *IngestionWorker {
	consumer := queue.NewConsumer(redisClient)
	return &IngestionWorker{
		processor:  processor,
		redis:      redisClient,
		consumer:   consumer,
		deadLetter: consumer.DeadLetter,
		replay:     cfg.Workers.Ingestion.ReplayDeadLetters,
		workerPool: NewWorkerPool(cfg.Workers.Ingestion.Count, cfg.Workers.Ingestion.QueueSize),
		log:        logger.Component("ingestion_worker"),
	}
}

// Start blocks consuming the ingestion queue until ctx is done.
func (w *IngestionWorker) Start(ctx context.Context) error {
	if pending, dead, err := w.redis.QueueDepth(ctx); err != nil {
		w.log.Warn().Err(err).Msg("Could not read queue depth")
	} else {
		w.log.Info().Int64("pending", pending).Int64("dead_letters", dead).Msg("Starting ingestion worker")
	}

	// Processing skips submissions that are no longer pending, so replaying is safe.
	if w.replay {
		if _, err := w.consumer.ReplayDeadLetters(ctx); err != nil {
			w.log.Error().Err(err).Msg("Failed to replay dead-lettered jobs")
		}
	}

	// Jobs already taken off the queue finish even after ctx is cancelled.
	w.workerPool.Start(context.WithoutCancel(ctx))

	return w.consumer.ConsumeIngestionQueue(ctx, w.handleMessage)
}

func (w *IngestionWorker) Stop() {
	w.log.Info().Msg("Stopping ingestion worker")
	w.workerPool.Stop()
}

// handleMessage rejects malformed messages straight to the DLQ and hands the
// rest to the pool.
func (w *IngestionWorker) handleMessage(ctx context.Context, data []byte) error {
	job, err := queue.DecodeJob(data)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to decode ingestion job")
		return err
	}

	w.log.Info().Str("submission_id", job.SubmissionID.String()).Str("file_name", job.FileName).Msg("Processing ingestion job")

	return w.workerPool.Submit(ctx, func(ctx context.Context) error {
		return w.process(ctx, job, data)
	})
}

// process runs one job. Rejected workbooks are recorded on the submission by
// the processor; any error left over moves the message to the DLQ for replay.
func (w *IngestionWorker) process(ctx context.Context, job model.IngestionJob, message []byte) error {
	log := w.log.With().Str("submission_id", job.SubmissionID.String()).Logger()

	if err := w.processor.Process(ctx, job); err != nil {
		log.Error().Err(err).Bool("retryable", errors.IsRetryable(err)).Msg("Ingestion job failed, moving to DLQ")
		w.deadLetter(ctx, message)
		return err
	}

	log.Info().Msg("Ingestion job finished")
	return nil
}
