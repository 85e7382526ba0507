package backfill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// QueueManager enqueues backfill lookups and tracks the pending set
type QueueManager struct {
	log    logrus.FieldLogger
	client *asynq.Client
	redis  *redis.Client
	config *Config
}

// NewQueueManager creates a queue manager
func NewQueueManager(log logrus.FieldLogger, redisOpt *asynq.RedisClientOpt, redisClient *redis.Client, config *Config) (*QueueManager, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &QueueManager{
		log:    log.WithField("component", "backfill-queue"),
		client: asynq.NewClient(*redisOpt),
		redis:  redisClient,
		config: config,
	}, nil
}

// Enqueue submits one lookup task per name and records each name in the
// pending set. Names already queued dedupe on their task id.
func (q *QueueManager) Enqueue(ctx context.Context, names []string) error {
	enqueued := 0
	for _, name := range names {
		if name == "" {
			continue
		}

		payload := LookupPayload{Name: name, EnqueuedAt: time.Now().UTC()}
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal backfill payload: %w", err)
		}

		if err := q.redis.SAdd(ctx, q.config.PendingKey, name).Err(); err != nil {
			return fmt.Errorf("failed to track pending name: %w", err)
		}

		task := asynq.NewTask(TypeLookup, data)
		_, err = q.client.EnqueueContext(ctx, task,
			asynq.TaskID(payload.UniqueID()),
			asynq.Queue(q.config.Queue),
			asynq.MaxRetry(3),
			asynq.Timeout(time.Minute),
		)
		if err != nil {
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				continue
			}
			return fmt.Errorf("failed to enqueue backfill task: %w", err)
		}
		enqueued++
	}

	if enqueued > 0 {
		q.log.WithField("count", enqueued).Info("Enqueued backfill lookups")
	}

	return nil
}

// Pending returns the names currently awaiting backfill
func (q *QueueManager) Pending(ctx context.Context) ([]string, error) {
	names, err := q.redis.SMembers(ctx, q.config.PendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending set: %w", err)
	}
	return names, nil
}

// Close releases the underlying asynq client
func (q *QueueManager) Close() error {
	return q.client.Close()
}
