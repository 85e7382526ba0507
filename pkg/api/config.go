// Package api exposes the resolver over HTTP
package api

// Config holds API service configuration
type Config struct {
	// Enabled toggles the HTTP API
	Enabled bool `yaml:"enabled" default:"true"`

	// ListenAddr is the address the API listens on
	ListenAddr string `yaml:"listenAddr" default:":8080"`

	// MaxBatchSize caps rows per resolve request
	MaxBatchSize int `yaml:"maxBatchSize" default:"10000"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}

	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 10000
	}

	return nil
}
