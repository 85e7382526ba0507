package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/hexlake/cir/pkg/api"
	"github.com/hexlake/cir/pkg/backfill"
	"github.com/hexlake/cir/pkg/enrich"
	"github.com/hexlake/cir/pkg/mapstore"
	"github.com/hexlake/cir/pkg/redis"
	"github.com/hexlake/cir/pkg/resolver"
	"github.com/hexlake/cir/pkg/tempid"
)

var (
	// ErrRedisRequired is returned when a command needs Redis but none is configured
	ErrRedisRequired = errors.New("redis configuration is required for this command")
	// ErrEnrichmentRequired is returned when a command needs the enrichment provider
	ErrEnrichmentRequired = errors.New("enrichment configuration is required for this command")
)

// Config is the application configuration shared by all commands
type Config struct {
	// Logging level
	Logging string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`

	// MetricsAddr is the address the Prometheus endpoint listens on
	MetricsAddr string `yaml:"metricsAddr" default:":9090"`

	// OverridesPath locates the static override table; a missing file
	// yields an empty table
	OverridesPath string `yaml:"overridesPath" default:"overrides.yaml"`

	// Redis is optional; without it the mapping cache and the backfill
	// queue are disabled
	Redis *redis.Config `yaml:"redis,omitempty"`

	// Enrichment is optional; without it the budgeted sync tier and
	// the backfill worker are disabled
	Enrichment *enrich.Config `yaml:"enrichment,omitempty"`

	// Mappings configures the mapping cache keyspace
	Mappings mapstore.Config `yaml:"mappings"`

	// TempID configures the placeholder id generator
	TempID tempid.Config `yaml:"tempID"`

	// Strategy is the default resolution strategy
	Strategy resolver.Strategy `yaml:"strategy"`

	// API configures the HTTP service
	API api.Config `yaml:"api"`

	// Backfill configures the async backfill worker
	Backfill backfill.Config `yaml:"backfill"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}

	if c.Strategy.GenerateTempIDs {
		if err := c.TempID.Validate(); err != nil {
			return fmt.Errorf("invalid temp id configuration: %w", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("invalid redis configuration: %w", err)
		}
	}

	return nil
}

// LoadConfig loads configuration from a YAML file. A missing file uses
// defaults so that override-only runs need no config at all.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}
	setStrategyDefaults(&config.Strategy)

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, config.Validate()
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, config.Validate()
}

// setStrategyDefaults fills the conventional column names used by the
// import workbooks
func setStrategyDefaults(s *resolver.Strategy) {
	if s.OutputColumn == "" {
		s.OutputColumn = "resolved_company_id"
	}
	if s.PlanColumn == "" {
		s.PlanColumn = "plan_code"
	}
	if s.AccountColumn == "" {
		s.AccountColumn = "account_no"
	}
	if s.CustomerNameColumn == "" {
		s.CustomerNameColumn = "customer_name"
	}
	if s.AccountNameColumn == "" {
		s.AccountNameColumn = "account_name"
	}
}
