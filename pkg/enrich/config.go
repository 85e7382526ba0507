package enrich

import (
	"errors"
	"time"
)

// Static errors for configuration validation
var (
	ErrURLRequired = errors.New("enrichment URL is required")
)

// Config contains enrichment provider connection settings
type Config struct {
	URL          string        `yaml:"url"`
	AuthToken    string        `yaml:"authToken"`
	LookupPath   string        `yaml:"lookupPath"`
	QueryTimeout time.Duration `yaml:"queryTimeout"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrURLRequired
	}

	return nil
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.LookupPath == "" {
		c.LookupPath = "/api/v1/company/lookup"
	}

	if c.QueryTimeout == 0 {
		c.QueryTimeout = 10 * time.Second
	}
}
