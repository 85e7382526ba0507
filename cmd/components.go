package cmd

import (
	"fmt"

	r "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hexlake/cir/pkg/enrich"
	"github.com/hexlake/cir/pkg/mapstore"
	"github.com/hexlake/cir/pkg/overrides"
	"github.com/hexlake/cir/pkg/redis"
	"github.com/hexlake/cir/pkg/resolver"
	"github.com/hexlake/cir/pkg/tempid"
)

// components holds everything a command wires together from the config
type components struct {
	resolver    *resolver.Resolver
	store       mapstore.Store
	provider    enrich.Provider
	redisClient *r.Client
	redisOpt    *r.Options
}

// buildComponents assembles the resolver and its collaborators. Redis
// and the enrichment provider stay nil when not configured; the
// resolver degrades accordingly.
func buildComponents(log logrus.FieldLogger, cfg *Config) (*components, error) {
	table, err := overrides.LoadFile(cfg.OverridesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load override table: %w", err)
	}
	log.WithField("entries", table.TotalSize()).Info("Loaded override table")

	c := &components{}

	if cfg.Redis != nil {
		client, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, err
		}
		c.redisClient = client
		c.redisOpt = client.Options()
		c.store = mapstore.NewRedisStore(log, client, &cfg.Mappings)
	}

	if cfg.Enrichment != nil {
		provider, err := enrich.NewClient(log, cfg.Enrichment)
		if err != nil {
			return nil, fmt.Errorf("failed to create enrichment client: %w", err)
		}
		c.provider = provider
	}

	var generator *tempid.Generator
	if cfg.Strategy.GenerateTempIDs {
		generator, err = tempid.NewGenerator(&cfg.TempID)
		if err != nil {
			return nil, fmt.Errorf("failed to create temp id generator: %w", err)
		}
	}

	c.resolver = resolver.New(log, table, c.store, c.provider, generator)

	return c, nil
}

// close releases the redis connection if one was opened
func (c *components) close(log logrus.FieldLogger) {
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}
}
