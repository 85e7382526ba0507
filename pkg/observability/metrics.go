package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// ResolutionRowsTotal tracks rows entering resolution runs
	ResolutionRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cir_resolution_rows_total",
			Help: "Total number of rows submitted for resolution",
		},
	)

	// ResolutionHitsTotal tracks resolved rows by tier
	ResolutionHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cir_resolution_hits_total",
			Help: "Rows resolved, by resolution tier",
		},
		[]string{"tier"}, // override tier name, db_cache, existing, eqc_sync, temp_id, unresolved
	)

	// ResolutionDuration measures resolution run duration in seconds
	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cir_resolution_duration_seconds",
			Help:    "Resolution run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
	)

	// EnrichmentBudgetConsumed tracks external lookup attempts
	EnrichmentBudgetConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cir_enrichment_budget_consumed_total",
			Help: "External enrichment lookup attempts, by outcome",
		},
		[]string{"outcome"}, // hit, miss, error
	)

	// BackflowMappingsTotal tracks backflow insert outcomes
	BackflowMappingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cir_backflow_mappings_total",
			Help: "Backflow mapping inserts, by outcome",
		},
		[]string{"outcome"}, // inserted, skipped, conflict
	)

	// ErrorsTotal counts component errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cir_errors_total",
			Help: "Total errors by component and type",
		},
		[]string{"component", "error_type"},
	)

	// BackfillTasksTotal tracks async backfill task outcomes
	BackfillTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cir_backfill_tasks_total",
			Help: "Async backfill tasks processed, by status",
		},
		[]string{"status"}, // matched, unmatched, failed
	)
)

// RecordResolutionRun records the row count and duration of one run
func RecordResolutionRun(rows int, duration float64) {
	ResolutionRowsTotal.Add(float64(rows))
	ResolutionDuration.Observe(duration)
}

// RecordTierHits adds resolved-row counts for one tier
func RecordTierHits(tier string, count int) {
	if count > 0 {
		ResolutionHitsTotal.WithLabelValues(tier).Add(float64(count))
	}
}

// RecordEnrichmentAttempt records one budget-consuming provider call
func RecordEnrichmentAttempt(outcome string) {
	EnrichmentBudgetConsumed.WithLabelValues(outcome).Inc()
}

// RecordBackflow records the outcome counts of one backflow insert batch
func RecordBackflow(inserted, skipped, conflicts int) {
	BackflowMappingsTotal.WithLabelValues("inserted").Add(float64(inserted))
	BackflowMappingsTotal.WithLabelValues("skipped").Add(float64(skipped))
	BackflowMappingsTotal.WithLabelValues("conflict").Add(float64(conflicts))
}

// RecordError increments the error counter for a component
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordBackfillTask records completion of one async backfill task
func RecordBackfillTask(status string) {
	BackfillTasksTotal.WithLabelValues(status).Inc()
}
