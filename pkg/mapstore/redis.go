package mapstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// storedMapping is the JSON value kept per (alias, match type) hash field.
// The match type is the hash field name and is not repeated in the value.
type storedMapping struct {
	CanonicalID string `json:"canonical_id"`
	Priority    int    `json:"priority"`
	Source      string `json:"source"`
}

// redisStore implements Store on a Redis hash per alias
type redisStore struct {
	log    logrus.FieldLogger
	client *redis.Client
	config *Config
}

// NewRedisStore creates a Redis-backed mapping store
func NewRedisStore(log logrus.FieldLogger, client *redis.Client, config *Config) Store {
	if config == nil {
		config = &Config{}
	}

	return &redisStore{
		log:    log.WithField("component", "mapstore"),
		client: client,
		config: config,
	}
}

// LookupBatch retrieves the strongest mapping per alias using one pipeline
func (s *redisStore) LookupBatch(ctx context.Context, aliases []string, matchTypes []string) (map[string]MatchResult, error) {
	results := make(map[string]MatchResult, len(aliases))
	if len(aliases) == 0 {
		return results, nil
	}

	filter := filterSet(matchTypes)

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(aliases))
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		cmds[alias] = pipe.HGetAll(ctx, s.config.MappingKey(alias))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("mapping lookup pipeline failed: %w", err)
	}

	malformed := 0
	for alias, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue
		}

		best, found := bestMatch(fields, filter, &malformed)
		if found {
			results[alias] = best
		}
	}

	if malformed > 0 {
		s.log.WithField("count", malformed).Warn("Skipped malformed stored mappings")
	}

	return results, nil
}

// bestMatch picks the lowest-priority-number mapping among the hash fields
func bestMatch(fields map[string]string, filter map[string]struct{}, malformed *int) (MatchResult, bool) {
	var best MatchResult
	found := false

	for matchType, raw := range fields {
		if !matchTypeAllowed(matchType, filter) {
			continue
		}

		var stored storedMapping
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			*malformed++
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

	return best, found
}

// InsertBatch writes mappings with HSETNX so existing rows always win
func (s *redisStore) InsertBatch(ctx context.Context, mappings []MappingPayload) (InsertBatchResult, error) {
	result := InsertBatchResult{}
	if len(mappings) == 0 {
		return result, nil
	}

	valid := make([]MappingPayload, 0, len(mappings))
	for _, m := range mappings {
		if err := validatePayload(m); err != nil {
			return result, fmt.Errorf("invalid mapping payload: %w", err)
		}
		valid = append(valid, m)
	}

	pipe := s.client.Pipeline()
	setCmds := make([]*redis.BoolCmd, len(valid))
	for i, m := range valid {
		data, err := json.Marshal(storedMapping{
			CanonicalID: m.CanonicalID,
			Priority:    m.Priority,
			Source:      m.Source,
		})
		if err != nil {
			return result, fmt.Errorf("failed to marshal mapping: %w", err)
		}
		setCmds[i] = pipe.HSetNX(ctx, s.config.MappingKey(m.AliasName), m.MatchType, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return result, fmt.Errorf("mapping insert pipeline failed: %w", err)
	}

	// Second pass: classify losers as idempotent skips or conflicts
	losers := make([]int, 0)
	for i, cmd := range setCmds {
		if cmd.Val() {
			result.Inserted++
		} else {
			losers = append(losers, i)
		}
	}

	if len(losers) == 0 {
		return result, nil
	}

	getPipe := s.client.Pipeline()
	getCmds := make([]*redis.StringCmd, len(losers))
	for j, i := range losers {
		m := valid[i]
		getCmds[j] = getPipe.HGet(ctx, s.config.MappingKey(m.AliasName), m.MatchType)
	}

	if _, err := getPipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return result, fmt.Errorf("mapping conflict check pipeline failed: %w", err)
	}

	for j, i := range losers {
		raw, err := getCmds[j].Result()
		if err != nil {
			result.Skipped++
			continue
		}

		var existing storedMapping
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			result.Skipped++
			continue
		}

		m := valid[i]
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

	if result.ConflictCount > 0 {
		s.log.WithFields(logrus.Fields{
			"inserted":  result.Inserted,
			"skipped":   result.Skipped,
			"conflicts": result.ConflictCount,
		}).Warn("Mapping insert batch had conflicts")
	}

	return result, nil
}
