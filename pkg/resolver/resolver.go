package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hexlake/cir/pkg/enrich"
	"github.com/hexlake/cir/pkg/mapstore"
	"github.com/hexlake/cir/pkg/observability"
	"github.com/hexlake/cir/pkg/overrides"
	"github.com/hexlake/cir/pkg/tempid"
)

// Tier labels used for metrics
const (
	tierDBCache    = "db_cache"
	tierExisting   = "existing"
	tierEQCSync    = "eqc_sync"
	tierTempID     = "temp_id"
	tierUnresolved = "unresolved"
)

// sourceBackflow and sourceEQCSync tag mappings written by this resolver
const (
	sourceBackflow = "backflow"
	sourceEQCSync  = "eqc_sync"
)

// Resolver orchestrates the resolution tiers. The override table is
// read-only shared state; the store and provider handles are owned by
// the caller, which must supply one handle per concurrent invocation if
// a handle is not itself thread-safe.
type Resolver struct {
	log       logrus.FieldLogger
	overrides *overrides.Table
	store     mapstore.Store
	provider  enrich.Provider
	tempIDs   *tempid.Generator
}

// New creates a resolver. The store, provider and temp id generator are
// all optional: with none of them the resolver degrades to override +
// existing-column resolution.
func New(log logrus.FieldLogger, table *overrides.Table, store mapstore.Store, provider enrich.Provider, tempIDs *tempid.Generator) *Resolver {
	if table == nil {
		table = overrides.Empty()
	}

	return &Resolver{
		log:       log.WithField("service", "resolver"),
		overrides: table,
		store:     store,
		provider:  provider,
		tempIDs:   tempIDs,
	}
}

// run carries the mutable state of one ResolveBatch call
type run struct {
	strategy   Strategy
	rows       []Row
	resolved   []string
	unresolved []bool
	remaining  int
	stats      *Statistics

	// backflowRows are rows resolved through the existing-id column
	// whose value is not a temp id
	backflowRows []int
}

// ResolveBatch resolves one batch of rows against the configured tiers,
// strictly in order: overrides, mapping cache, existing-id passthrough,
// backflow, budgeted enrichment, temp ids. The returned slice is aligned
// with the input rows; entries stay "" when no tier matched and temp id
// generation is disabled. Collaborator failures are recovered per call
// and surface only as shifted hit counts, never as an error.
func (r *Resolver) ResolveBatch(ctx context.Context, rows []Row, strategy Strategy) ([]string, *Statistics, error) {
	if err := strategy.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid resolution strategy: %w", err)
	}
	if strategy.GenerateTempIDs && r.tempIDs == nil {
		return nil, nil, ErrTempIDGeneratorRequired
	}

	started := time.Now()

	st := &run{
		strategy:   strategy,
		rows:       rows,
		resolved:   make([]string, len(rows)),
		unresolved: make([]bool, len(rows)),
		remaining:  len(rows),
		stats:      newStatistics(len(rows), strategy.SyncLookupBudget),
	}
	for i := range st.unresolved {
		st.unresolved[i] = true
	}

	r.applyOverrides(st)
	r.applyCacheLookup(ctx, st)
	r.applyExistingColumn(st)
	r.applyBackflow(ctx, st)
	r.applyEnrichmentSync(ctx, st)
	r.applyTempIDs(st)

	st.stats.Unresolved = st.remaining

	r.recordMetrics(st.stats, time.Since(started).Seconds())
	r.log.WithFields(st.stats.Fields()).Info("Resolution run complete")

	return st.resolved, st.stats, nil
}

// resolve marks one row as resolved and shrinks the unresolved set
func (st *run) resolve(i int, canonical string) {
	st.resolved[i] = canonical
	st.unresolved[i] = false
	st.remaining--
}

// applyOverrides probes the five override tiers in priority order.
// Pure in-memory hash probing; stops as soon as the mask empties.
func (r *Resolver) applyOverrides(st *run) {
	for _, tc := range st.strategy.tierColumns() {
		if st.remaining == 0 {
			return
		}
		if tc.column == "" {
			continue
		}

		hits := 0
		for i, row := range st.rows {
			if !st.unresolved[i] {
				continue
			}

			alias := row.Value(tc.column)
			if alias == "" {
				continue
			}

			if canonical, ok := r.overrides.Lookup(tc.tier, alias); ok {
				st.resolve(i, canonical)
				hits++
			}
		}

		if hits > 0 {
			st.stats.YAMLHits[tc.tier] = hits
		}
	}
}

// applyCacheLookup issues the single batched store lookup and applies
// the strongest match per row, respecting column precedence on ties.
func (r *Resolver) applyCacheLookup(ctx context.Context, st *run) {
	if r.store == nil || st.remaining == 0 {
		return
	}

	columns := st.strategy.candidateColumns()
	if len(columns) == 0 {
		return
	}

	seen := make(map[string]struct{})
	aliases := make([]string, 0)
	for i, row := range st.rows {
		if !st.unresolved[i] {
			continue
		}
		for _, col := range columns {
			alias := row.Value(col)
			if alias == "" {
				continue
			}
			if _, ok := seen[alias]; !ok {
				seen[alias] = struct{}{}
				aliases = append(aliases, alias)
			}
		}
	}

	if len(aliases) == 0 {
		return
	}

	matches, err := r.store.LookupBatch(ctx, aliases, nil)
	if err != nil {
		observability.RecordError("resolver", "cache_lookup_failed")
		r.log.WithError(err).WithField("aliases", len(aliases)).Warn("Mapping cache lookup failed, skipping tier")
		return
	}

	for i, row := range st.rows {
		if !st.unresolved[i] {
			continue
		}

		var best mapstore.MatchResult
		found := false
		for _, col := range columns {
			alias := row.Value(col)
			if alias == "" {
				continue
			}
			match, ok := matches[alias]
			if !ok {
				continue
			}
			// Earlier columns win ties via strict less-than
			if !found || match.Priority < best.Priority {
				best = match
				found = true
			}
		}

		if found {
			st.resolve(i, best.CanonicalID)
			st.stats.DBCacheHits++
		}
	}
}

// applyExistingColumn passes through pre-populated identifiers and
// collects backflow candidates from them.
func (r *Resolver) applyExistingColumn(st *run) {
	col := st.strategy.ExistingIDColumn
	if col == "" || st.remaining == 0 {
		return
	}

	for i, row := range st.rows {
		if !st.unresolved[i] {
			continue
		}

		existing := row.Value(col)
		if existing == "" {
			continue
		}

		st.resolve(i, existing)
		st.stats.ExistingColumnHits++

		if !tempid.IsTempID(existing) {
			st.backflowRows = append(st.backflowRows, i)
		}
	}
}

// applyBackflow writes mappings learned from the existing-id tier back
// into the cache store in one conflict-checked batch.
func (r *Resolver) applyBackflow(ctx context.Context, st *run) {
	if !st.strategy.EnableBackflow || r.store == nil || len(st.backflowRows) == 0 {
		return
	}

	payloads := make([]mapstore.MappingPayload, 0, len(st.backflowRows))
	for _, i := range st.backflowRows {
		canonical := st.resolved[i]
		for _, bc := range st.strategy.backflowColumns() {
			alias := st.rows[i].Value(bc.column)
			if alias == "" {
				continue
			}
			payloads = append(payloads, mapstore.MappingPayload{
				AliasName:   alias,
				CanonicalID: canonical,
				MatchType:   bc.tier,
				Priority:    mapstore.PriorityFor(bc.tier),
				Source:      sourceBackflow,
			})
		}
	}

	if len(payloads) == 0 {
		return
	}

	result, err := r.store.InsertBatch(ctx, payloads)
	if err != nil {
		observability.RecordError("resolver", "backflow_insert_failed")
		r.log.WithError(err).WithField("mappings", len(payloads)).Warn("Backflow insert failed, skipping tier")
		return
	}

	st.stats.BackflowStats = BackflowStats{
		Inserted:  result.Inserted,
		Skipped:   result.Skipped,
		Conflicts: result.ConflictCount,
	}
	observability.RecordBackflow(result.Inserted, result.Skipped, result.ConflictCount)
}

// applyEnrichmentSync performs the budgeted sequential external lookups.
// Every attempt consumes budget, provider errors included; rows without
// a customer name are skipped for free.
func (r *Resolver) applyEnrichmentSync(ctx context.Context, st *run) {
	if r.provider == nil || st.stats.BudgetRemaining == 0 || st.remaining == 0 {
		return
	}

	nameCol := st.strategy.CustomerNameColumn
	if nameCol == "" {
		return
	}

	for i, row := range st.rows {
		if st.stats.BudgetRemaining == 0 {
			break
		}
		if !st.unresolved[i] {
			continue
		}

		name := row.Value(nameCol)
		if name == "" {
			continue
		}

		st.stats.BudgetConsumed++
		st.stats.BudgetRemaining--

		match, err := r.provider.Lookup(ctx, name)
		if err != nil {
			observability.RecordEnrichmentAttempt("error")
			observability.RecordError("resolver", "enrichment_lookup_failed")
			continue
		}
		if match == nil || match.CanonicalID == "" {
			observability.RecordEnrichmentAttempt("miss")
			continue
		}

		observability.RecordEnrichmentAttempt("hit")
		st.resolve(i, match.CanonicalID)
		st.stats.EQCSyncHits++

		r.persistEQCMapping(ctx, name, match.CanonicalID)
	}
}

// persistEQCMapping stores one enrichment hit for future cache lookups
func (r *Resolver) persistEQCMapping(ctx context.Context, name, canonical string) {
	if r.store == nil {
		return
	}

	_, err := r.store.InsertBatch(ctx, []mapstore.MappingPayload{{
		AliasName:   name,
		CanonicalID: canonical,
		MatchType:   mapstore.MatchTypeEQC,
		Priority:    mapstore.PriorityEQC,
		Source:      sourceEQCSync,
	}})
	if err != nil {
		observability.RecordError("resolver", "eqc_insert_failed")
		r.log.WithError(err).Warn("Failed to persist enrichment mapping")
	}
}

// applyTempIDs assigns deterministic placeholder ids to whatever is left
func (r *Resolver) applyTempIDs(st *run) {
	if !st.strategy.GenerateTempIDs || st.remaining == 0 {
		return
	}

	for i, row := range st.rows {
		if !st.unresolved[i] {
			continue
		}

		st.resolve(i, r.tempIDs.Generate(tempIDAlias(row, &st.strategy)))
		st.stats.TempIDsGenerated++
	}
}

// tempIDAlias picks the alias a placeholder id is derived from: the
// customer name when present, then account name, plan code and account
// number. Rows with no alias at all share the empty-alias placeholder.
func tempIDAlias(row Row, s *Strategy) string {
	for _, col := range []string{s.CustomerNameColumn, s.AccountNameColumn, s.PlanColumn, s.AccountColumn} {
		if v := row.Value(col); v != "" {
			return v
		}
	}
	return ""
}

func (r *Resolver) recordMetrics(stats *Statistics, duration float64) {
	observability.RecordResolutionRun(stats.TotalRows, duration)
	for tier, hits := range stats.YAMLHits {
		observability.RecordTierHits(tier, hits)
	}
	observability.RecordTierHits(tierDBCache, stats.DBCacheHits)
	observability.RecordTierHits(tierExisting, stats.ExistingColumnHits)
	observability.RecordTierHits(tierEQCSync, stats.EQCSyncHits)
	observability.RecordTierHits(tierTempID, stats.TempIDsGenerated)
	observability.RecordTierHits(tierUnresolved, stats.Unresolved)
}
