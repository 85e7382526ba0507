package backfill

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hexlake/cir/pkg/enrich"
	"github.com/hexlake/cir/pkg/mapstore"
	"github.com/hexlake/cir/pkg/observability"
)

// Handler processes backfill lookup tasks
type Handler struct {
	log      logrus.FieldLogger
	provider enrich.Provider
	store    mapstore.Store
	redis    *redis.Client
	config   *Config
}

// NewHandler creates a task handler
func NewHandler(log logrus.FieldLogger, provider enrich.Provider, store mapstore.Store, redisClient *redis.Client, config *Config) *Handler {
	return &Handler{
		log:      log.WithField("component", "backfill-handler"),
		provider: provider,
		store:    store,
		redis:    redisClient,
		config:   config,
	}
}

// Routes returns the task type to handler mapping for the asynq mux
func (h *Handler) Routes() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypeLookup: h.HandleLookup,
	}
}

// HandleLookup performs one provider lookup. A definitive miss removes
// the name from the pending set; a provider error keeps it there and
// lets asynq retry.
func (h *Handler) HandleLookup(ctx context.Context, t *asynq.Task) error {
	var payload LookupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		observability.RecordError("backfill", "unmarshal_error")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	match, err := h.provider.Lookup(ctx, payload.Name)
	if err != nil {
		observability.RecordBackfillTask("failed")
		observability.RecordError("backfill", "lookup_failed")
		return fmt.Errorf("backfill lookup failed: %w", err)
	}

	if match == nil {
		observability.RecordBackfillTask("unmatched")
		h.removePending(ctx, payload.Name)
		return nil
	}

	_, err = h.store.InsertBatch(ctx, []mapstore.MappingPayload{{
		AliasName:   payload.Name,
		CanonicalID: match.CanonicalID,
		MatchType:   mapstore.MatchTypeEQC,
		Priority:    mapstore.PriorityEQC,
		Source:      "backfill_async",
	}})
	if err != nil {
		observability.RecordBackfillTask("failed")
		observability.RecordError("backfill", "insert_failed")
		return fmt.Errorf("backfill insert failed: %w", err)
	}

	observability.RecordBackfillTask("matched")
	h.removePending(ctx, payload.Name)
	return nil
}

func (h *Handler) removePending(ctx context.Context, name string) {
	if err := h.redis.SRem(ctx, h.config.PendingKey, name).Err(); err != nil {
		h.log.WithError(err).Warn("Failed to clear pending entry")
	}
}
