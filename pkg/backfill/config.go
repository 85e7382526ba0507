package backfill

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Define static errors
var (
	ErrInvalidSweepSchedule = errors.New("invalid sweep schedule")
)

// Config holds backfill worker configuration
type Config struct {
	// Queue is the asynq queue backfill tasks run on
	Queue string `yaml:"queue" default:"backfill"`

	// Concurrency caps parallel provider lookups; the enrichment
	// service is rate limited, keep this low
	Concurrency int `yaml:"concurrency" default:"2"`

	// SweepSchedule is a cron expression controlling how often pending
	// names are re-enqueued
	SweepSchedule string `yaml:"sweepSchedule" default:"@every 10m"`

	// PendingKey is the Redis set tracking names awaiting backfill
	PendingKey string `yaml:"pendingKey" default:"cir:backfill:pending"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Queue == "" {
		c.Queue = "backfill"
	}

	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}

	if c.PendingKey == "" {
		c.PendingKey = "cir:backfill:pending"
	}

	if c.SweepSchedule == "" {
		c.SweepSchedule = "@every 10m"
	}

	if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSweepSchedule, err)
	}

	return nil
}
