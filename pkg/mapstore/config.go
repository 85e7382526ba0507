package mapstore

import "fmt"

// Config holds mapping store settings
type Config struct {
	// KeyPrefix namespaces all mapping keys in Redis
	KeyPrefix string `yaml:"keyPrefix" default:"cir"`
}

// MappingKey returns the Redis key holding all mappings for one alias
func (c *Config) MappingKey(alias string) string {
	prefix := c.KeyPrefix
	if prefix == "" {
		prefix = "cir"
	}
	return fmt.Sprintf("%s:mapping:%s", prefix, alias)
}
