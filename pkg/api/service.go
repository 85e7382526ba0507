package api

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/hexlake/cir/pkg/resolver"
)

// Service defines the API service interface
type Service interface {
	Start(ctx context.Context) error
	Stop() error
}

type service struct {
	app             *fiber.App
	config          *Config
	resolver        *resolver.Resolver
	defaultStrategy resolver.Strategy
	log             logrus.FieldLogger
}

// NewService creates the HTTP API service
func NewService(cfg *Config, res *resolver.Resolver, defaultStrategy resolver.Strategy, log logrus.FieldLogger) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &service{
		config:          cfg,
		resolver:        res,
		defaultStrategy: defaultStrategy,
		log:             log.WithField("service", "api"),
	}, nil
}

// Start initializes and starts the API server
func (s *service) Start(_ context.Context) error {
	if !s.config.Enabled {
		s.log.Info("API service is disabled")
		return nil
	}

	s.app = newApp(s.log, s.resolver, s.defaultStrategy, s.config.MaxBatchSize)

	go func() {
		s.log.WithField("addr", s.config.ListenAddr).Info("Starting API server")
		if err := s.app.Listen(s.config.ListenAddr); err != nil {
			s.log.WithError(err).Error("API server stopped with error")
		}
	}()

	return nil
}

// Stop gracefully shuts down the API server
func (s *service) Stop() error {
	if s.app == nil {
		return nil
	}

	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}

	s.log.Info("API service stopped")
	return nil
}

// newApp builds the Fiber app with middleware and routes. Split out so
// tests can drive it with app.Test.
func newApp(log logrus.FieldLogger, res *resolver.Resolver, defaultStrategy resolver.Strategy, maxBatchSize int) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		AppName:      "CIR API",
	})

	setupMiddleware(app)
	newHandlers(log, res, defaultStrategy, maxBatchSize).register(app)

	return app
}
