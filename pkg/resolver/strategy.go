// Package resolver maps noisy business-supplied aliases to stable
// canonical company identifiers through a strict multi-tier fallback.
package resolver

import (
	"errors"
	"fmt"

	"github.com/hexlake/cir/pkg/mapstore"
)

// Define static errors
var (
	ErrOutputColumnRequired    = errors.New("output column name is required")
	ErrColumnCollision         = errors.New("source column collides with output column")
	ErrNegativeBudget          = errors.New("sync lookup budget must not be negative")
	ErrTempIDGeneratorRequired = errors.New("temp id generation enabled but no generator configured")
)

// Strategy configures one resolution run. It is immutable per call.
type Strategy struct {
	// Source columns; any subset may be absent per row
	PlanColumn         string `json:"plan_column" yaml:"planColumn"`
	AccountColumn      string `json:"account_column" yaml:"accountColumn"`
	CustomerNameColumn string `json:"customer_name_column" yaml:"customerNameColumn"`
	AccountNameColumn  string `json:"account_name_column" yaml:"accountNameColumn"`
	ExistingIDColumn   string `json:"existing_id_column" yaml:"existingIDColumn"`

	// OutputColumn receives the resolved canonical id
	OutputColumn string `json:"output_column" yaml:"outputColumn"`

	// SyncLookupBudget caps external enrichment lookups per call
	SyncLookupBudget int `json:"sync_lookup_budget" yaml:"syncLookupBudget"`

	EnableBackflow  bool `json:"enable_backflow" yaml:"enableBackflow"`
	GenerateTempIDs bool `json:"generate_temp_ids" yaml:"generateTempIDs"`
}

// Validate checks if the strategy is well formed. It runs before any row
// is processed; a failure here is the only error ResolveBatch returns.
func (s *Strategy) Validate() error {
	if s.OutputColumn == "" {
		return ErrOutputColumnRequired
	}

	if s.SyncLookupBudget < 0 {
		return ErrNegativeBudget
	}

	for _, col := range []string{s.PlanColumn, s.AccountColumn, s.CustomerNameColumn, s.AccountNameColumn, s.ExistingIDColumn} {
		if col != "" && col == s.OutputColumn {
			return fmt.Errorf("%w: %q", ErrColumnCollision, col)
		}
	}

	return nil
}

// tierColumn pairs an override tier with the row column it probes
type tierColumn struct {
	tier   string
	column string
}

// tierColumns returns the five override tiers with their configured
// columns, in fixed priority order. The hardcode tier probes the
// customer name column, same as the name tier.
func (s *Strategy) tierColumns() []tierColumn {
	return []tierColumn{
		{mapstore.MatchTypePlan, s.PlanColumn},
		{mapstore.MatchTypeAccount, s.AccountColumn},
		{mapstore.MatchTypeHardcode, s.CustomerNameColumn},
		{mapstore.MatchTypeName, s.CustomerNameColumn},
		{mapstore.MatchTypeAccountName, s.AccountNameColumn},
	}
}

// candidateColumns returns the columns probed against the mapping cache,
// in the same precedence order as the override tiers.
func (s *Strategy) candidateColumns() []string {
	cols := make([]string, 0, 4)
	for _, col := range []string{s.PlanColumn, s.AccountColumn, s.CustomerNameColumn, s.AccountNameColumn} {
		if col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

// backflowColumns returns the auxiliary columns whose values backflow
// synthesizes mappings for, paired with their match types.
func (s *Strategy) backflowColumns() []tierColumn {
	return []tierColumn{
		{mapstore.MatchTypeAccount, s.AccountColumn},
		{mapstore.MatchTypeName, s.CustomerNameColumn},
		{mapstore.MatchTypeAccountName, s.AccountNameColumn},
	}
}
