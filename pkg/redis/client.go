package redis

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client from a validated configuration
func New(cfg *Config) (*redis.Client, error) {
	if cfg == nil {
		return nil, ErrAddressRequired
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis configuration: %w", err)
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}
