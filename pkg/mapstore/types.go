// Package mapstore provides the persistent alias-to-canonical mapping cache
package mapstore

// Match types recognized by the store, ordered by priority
const (
	MatchTypePlan        = "plan"
	MatchTypeAccount     = "account"
	MatchTypeHardcode    = "hardcode"
	MatchTypeName        = "name"
	MatchTypeAccountName = "account_name"
	MatchTypeEQC         = "eqc"
)

// Priorities for each match type; a lower number wins when an alias
// carries mappings of several types. PriorityTemp is reserved for
// locally generated placeholder ids and is never persisted.
const (
	PriorityPlan        = 1
	PriorityAccount     = 2
	PriorityHardcode    = 3
	PriorityName        = 4
	PriorityAccountName = 5
	PriorityEQC         = 6
	PriorityTemp        = 7
)

// PriorityFor returns the fixed priority for a match type, or PriorityTemp
// for anything unknown so that malformed rows always lose.
func PriorityFor(matchType string) int {
	switch matchType {
	case MatchTypePlan:
		return PriorityPlan
	case MatchTypeAccount:
		return PriorityAccount
	case MatchTypeHardcode:
		return PriorityHardcode
	case MatchTypeName:
		return PriorityName
	case MatchTypeAccountName:
		return PriorityAccountName
	case MatchTypeEQC:
		return PriorityEQC
	default:
		return PriorityTemp
	}
}

// MatchResult is the strongest stored mapping found for one alias
type MatchResult struct {
	CanonicalID string `json:"canonical_id"`
	MatchType   string `json:"match_type"`
	Priority    int    `json:"priority"`
	Source      string `json:"source"`
}

// MappingPayload is a candidate row for insertion, keyed by (alias, match type)
type MappingPayload struct {
	AliasName   string `json:"alias_name"`
	CanonicalID string `json:"canonical_id"`
	MatchType   string `json:"match_type"`
	Priority    int    `json:"priority"`
	Source      string `json:"source"`
}

// Conflict records an insert that collided with an existing mapping
// carrying a different canonical id. The existing row always wins.
type Conflict struct {
	AliasName  string `json:"alias_name"`
	MatchType  string `json:"match_type"`
	ExistingID string `json:"existing_id"`
	NewID      string `json:"new_id"`
}

// InsertBatchResult summarizes one batched insert. Counts are always
// exact; Conflicts holds at most ConflictSampleLimit entries for logging.
type InsertBatchResult struct {
	Inserted  int        `json:"inserted"`
	Skipped   int        `json:"skipped"`
	Conflicts []Conflict `json:"conflicts"`

	// ConflictCount is the exact number of conflicts, including any
	// beyond the sample kept in Conflicts.
	ConflictCount int `json:"conflict_count"`
}

// ConflictSampleLimit caps how many conflicts an InsertBatchResult retains
const ConflictSampleLimit = 10
