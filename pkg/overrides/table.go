// Package overrides provides the static five-tier alias override table
package overrides

import (
	"strings"

	"github.com/hexlake/cir/pkg/mapstore"
)

// TierOrder lists the override tiers in fixed priority order. Earlier
// tiers win; the order never changes at runtime.
//
//nolint:gochecknoglobals // Fixed tier ordering shared by table and resolver
var TierOrder = []string{
	mapstore.MatchTypePlan,
	mapstore.MatchTypeAccount,
	mapstore.MatchTypeHardcode,
	mapstore.MatchTypeName,
	mapstore.MatchTypeAccountName,
}

// Table holds the five alias-to-canonical maps. It is immutable after
// construction and safe for concurrent reads.
type Table struct {
	tiers map[string]map[string]string
}

// NewTable builds a table from raw tier maps. Alias keys are trimmed;
// empty aliases and empty canonical ids are dropped. Unknown tier names
// are ignored.
func NewTable(raw map[string]map[string]string) *Table {
	tiers := make(map[string]map[string]string, len(TierOrder))

	for _, tier := range TierOrder {
		entries := make(map[string]string, len(raw[tier]))
		for alias, canonical := range raw[tier] {
			alias = strings.TrimSpace(alias)
			canonical = strings.TrimSpace(canonical)
			if alias == "" || canonical == "" {
				continue
			}
			entries[alias] = canonical
		}
		tiers[tier] = entries
	}

	return &Table{tiers: tiers}
}

// Empty returns a table with all five tiers present but unpopulated
func Empty() *Table {
	return NewTable(nil)
}

// Lookup probes one tier for a trimmed alias
func (t *Table) Lookup(tier, alias string) (string, bool) {
	entries, ok := t.tiers[tier]
	if !ok {
		return "", false
	}

	canonical, ok := entries[strings.TrimSpace(alias)]
	return canonical, ok
}

// Size returns the number of entries in one tier
func (t *Table) Size(tier string) int {
	return len(t.tiers[tier])
}

// TotalSize returns the number of entries across all tiers
func (t *Table) TotalSize() int {
	total := 0
	for _, entries := range t.tiers {
		total += len(entries)
	}
	return total
}
