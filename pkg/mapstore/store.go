package mapstore

import (
	"context"
	"errors"
)

// Define static errors
var (
	ErrEmptyAlias     = errors.New("mapping alias name is empty")
	ErrEmptyCanonical = errors.New("mapping canonical id is empty")
	ErrTempPriority   = errors.New("temp priority mappings must not be persisted")
)

// Store is the mapping cache consulted and populated by the resolver.
// Implementations must be safe for use from a single resolver invocation;
// callers supply one handle per concurrent invocation if the backing
// client is not itself thread-safe.
type Store interface {
	// LookupBatch returns the strongest stored mapping per alias in a
	// single round trip. Aliases with no stored mapping are absent from
	// the result. A non-nil matchTypes filter restricts which match
	// types are considered.
	LookupBatch(ctx context.Context, aliases []string, matchTypes []string) (map[string]MatchResult, error)

	// InsertBatch inserts mappings keyed by (alias, match type). An
	// existing key with the same canonical id counts as skipped; an
	// existing key with a different canonical id is kept unchanged and
	// reported as a conflict.
	InsertBatch(ctx context.Context, mappings []MappingPayload) (InsertBatchResult, error)
}

func validatePayload(m MappingPayload) error {
	if m.AliasName == "" {
		return ErrEmptyAlias
	}
	if m.CanonicalID == "" {
		return ErrEmptyCanonical
	}
	if m.Priority >= PriorityTemp {
		return ErrTempPriority
	}
	return nil
}

func matchTypeAllowed(matchType string, filter map[string]struct{}) bool {
	if len(filter) == 0 {
		return true
	}
	_, ok := filter[matchType]
	return ok
}

func filterSet(matchTypes []string) map[string]struct{} {
	if len(matchTypes) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(matchTypes))
	for _, mt := range matchTypes {
		set[mt] = struct{}{}
	}
	return set
}
