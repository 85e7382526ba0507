package mapstore

import (
	"context"
	"fmt"
	"sync"
)

// memoryStore implements Store on an in-process map. It backs unit tests
// and deployments that run without Redis.
type memoryStore struct {
	mu sync.RWMutex
	// alias -> match type -> mapping
	mappings map[string]map[string]storedMapping
}

// NewMemoryStore creates an in-memory mapping store
func NewMemoryStore() Store {
	return &memoryStore{
		mappings: make(map[string]map[string]storedMapping),
	}
}

func (s *memoryStore) LookupBatch(_ context.Context, aliases []string, matchTypes []string) (map[string]MatchResult, error) {
	filter := filterSet(matchTypes)

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]MatchResult, len(aliases))
	for _, alias := range aliases {
		fields, ok := s.mappings[alias]
		if !ok {
			continue
		}

		var best MatchResult
		found := false
		for matchType, stored := range fields {
			if !matchTypeAllowed(matchType, filter) {
				continue
			}
			if !found || stored.Priority < best.Priority {
				best = MatchResult{
					CanonicalID: stored.CanonicalID,
					MatchType:   matchType,
					Priority:    stored.Priority,
					Source:      stored.Source,
				}
				found = true
			}
		}
		if found {
			results[alias] = best
		}
	}

	return results, nil
}

func (s *memoryStore) InsertBatch(_ context.Context, mappings []MappingPayload) (InsertBatchResult, error) {
	result := InsertBatchResult{}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range mappings {
		if err := validatePayload(m); err != nil {
			return result, fmt.Errorf("invalid mapping payload: %w", err)
		}

		fields, ok := s.mappings[m.AliasName]
		if !ok {
			fields = make(map[string]storedMapping)
			s.mappings[m.AliasName] = fields
		}

		existing, exists := fields[m.MatchType]
		if !exists {
			fields[m.MatchType] = storedMapping{
				CanonicalID: m.CanonicalID,
				Priority:    m.Priority,
				Source:      m.Source,
			}
			result.Inserted++
			continue
		}

		if existing.CanonicalID == m.CanonicalID {
			result.Skipped++
			continue
		}

		result.ConflictCount++
		if len(result.Conflicts) < ConflictSampleLimit {
			result.Conflicts = append(result.Conflicts, Conflict{
				AliasName:  m.AliasName,
				MatchType:  m.MatchType,
				ExistingID: existing.CanonicalID,
				NewID:      m.CanonicalID,
			})
		}
	}

	return result, nil
}
