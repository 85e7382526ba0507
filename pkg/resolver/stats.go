package resolver

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BackflowStats summarizes the backflow insert batch of one run
type BackflowStats struct {
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
	Conflicts int `json:"conflicts"`
}

// Statistics accumulates per-tier counts for one resolution run. It is
// created fresh for every ResolveBatch call, mutated by the tiers as
// they execute, and immutable once returned. It carries counts only:
// no alias values or canonical ids, so it is always safe to log.
type Statistics struct {
	RunID     string `json:"run_id"`
	TotalRows int    `json:"total_rows"`

	YAMLHits           map[string]int `json:"yaml_hits"`
	DBCacheHits        int            `json:"db_cache_hits"`
	ExistingColumnHits int            `json:"existing_column_hits"`
	EQCSyncHits        int            `json:"eqc_sync_hits"`
	TempIDsGenerated   int            `json:"temp_ids_generated"`
	Unresolved         int            `json:"unresolved"`

	BudgetConsumed  int `json:"budget_consumed"`
	BudgetRemaining int `json:"budget_remaining"`

	BackflowStats BackflowStats `json:"backflow_stats"`
}

func newStatistics(totalRows, budget int) *Statistics {
	return &Statistics{
		RunID:           uuid.NewString(),
		TotalRows:       totalRows,
		YAMLHits:        make(map[string]int),
		BudgetRemaining: budget,
	}
}

// OverrideHits returns the total hits across all override tiers
func (s *Statistics) OverrideHits() int {
	total := 0
	for _, n := range s.YAMLHits {
		total += n
	}
	return total
}

// ResolvedRows returns the number of rows that left the run with an
// identifier, temp ids included.
func (s *Statistics) ResolvedRows() int {
	return s.TotalRows - s.Unresolved
}

// Fields returns a serialized view for structured logging. Only counts
// appear here.
func (s *Statistics) Fields() logrus.Fields {
	fields := logrus.Fields{
		"run_id":               s.RunID,
		"total_rows":           s.TotalRows,
		"override_hits":        s.OverrideHits(),
		"db_cache_hits":        s.DBCacheHits,
		"existing_column_hits": s.ExistingColumnHits,
		"eqc_sync_hits":        s.EQCSyncHits,
		"temp_ids_generated":   s.TempIDsGenerated,
		"unresolved":           s.Unresolved,
		"budget_consumed":      s.BudgetConsumed,
		"budget_remaining":     s.BudgetRemaining,
		"backflow_inserted":    s.BackflowStats.Inserted,
		"backflow_skipped":     s.BackflowStats.Skipped,
		"backflow_conflicts":   s.BackflowStats.Conflicts,
	}

	for tier, hits := range s.YAMLHits {
		fields["yaml_hits_"+tier] = hits
	}

	return fields
}
