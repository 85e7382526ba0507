package overrides

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat mirrors the override YAML layout: one mapping per tier
type fileFormat struct {
	Plan        map[string]string `yaml:"plan"`
	Account     map[string]string `yaml:"account"`
	Hardcode    map[string]string `yaml:"hardcode"`
	Name        map[string]string `yaml:"name"`
	AccountName map[string]string `yaml:"account_name"`
}

// LoadFile reads an override table from a YAML file. A missing file is
// not an error and yields an empty table; a malformed file fails so that
// bad configuration is caught before any resolution runs.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("failed to read override table: %w", err)
	}

	return Parse(data)
}

// Parse decodes an override table from YAML bytes
func Parse(data []byte) (*Table, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse override table: %w", err)
	}

	return NewTable(map[string]map[string]string{
		TierOrder[0]: raw.Plan,
		TierOrder[1]: raw.Account,
		TierOrder[2]: raw.Hardcode,
		TierOrder[3]: raw.Name,
		TierOrder[4]: raw.AccountName,
	}), nil
}
