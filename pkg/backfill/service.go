package backfill

import (
	"context"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hexlake/cir/pkg/enrich"
	"github.com/hexlake/cir/pkg/mapstore"
	r "github.com/hexlake/cir/pkg/redis"
)

// Service defines the public interface for the backfill worker service
type Service interface {
	// Start initializes and starts the worker service
	Start(ctx context.Context) error

	// Stop gracefully shuts down the worker service
	Stop() error
}

// service encapsulates the backfill worker logic
type service struct {
	config *Config
	log    logrus.FieldLogger

	provider    enrich.Provider
	store       mapstore.Store
	redisClient *redis.Client
	redisOpt    *redis.Options

	server *asynq.Server
	queue  *QueueManager

	cancelSweep context.CancelFunc
	wg          sync.WaitGroup
}

// NewService creates a new backfill worker service
func NewService(log logrus.FieldLogger, cfg *Config, provider enrich.Provider, store mapstore.Store, redisClient *redis.Client, redisOpt *redis.Options) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &service{
		log:         log.WithField("service", "backfill"),
		config:      cfg,
		provider:    provider,
		store:       store,
		redisClient: redisClient,
		redisOpt:    redisOpt,
	}, nil
}

// Start launches the asynq server and the periodic sweep
func (s *service) Start(ctx context.Context) error {
	asynqOpt := r.NewAsynqRedisOptions(s.redisOpt)

	queue, err := NewQueueManager(s.log, asynqOpt, s.redisClient, s.config)
	if err != nil {
		return err
	}
	s.queue = queue

	handler := NewHandler(s.log, s.provider, s.store, s.redisClient, s.config)

	srv := asynq.NewServer(asynqOpt, asynq.Config{
		Concurrency: s.config.Concurrency,
		Queues: map[string]int{
			s.config.Queue: 10,
		},
	})

	mux := asynq.NewServeMux()
	for taskType, handlerFunc := range handler.Routes() {
		mux.HandleFunc(taskType, handlerFunc)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if runErr := srv.Run(mux); runErr != nil {
			s.log.WithError(runErr).Error("Backfill server stopped with error")
		}
	}()
	s.server = srv

	sweep, err := newSweeper(s.log, queue, s.config.SweepSchedule)
	if err != nil {
		return err
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancelSweep = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sweep.Run(sweepCtx)
	}()

	s.log.WithFields(logrus.Fields{
		"queue":       s.config.Queue,
		"concurrency": s.config.Concurrency,
		"sweep":       s.config.SweepSchedule,
	}).Info("Backfill service started")

	return nil
}

// Stop shuts down the sweep and the asynq server
func (s *service) Stop() error {
	if s.cancelSweep != nil {
		s.cancelSweep()
	}

	if s.server != nil {
		s.server.Shutdown()
	}

	if s.queue != nil {
		if err := s.queue.Close(); err != nil {
			s.log.WithError(err).Warn("Failed to close queue client")
		}
	}

	s.wg.Wait()
	s.log.Info("Backfill service stopped")

	return nil
}
