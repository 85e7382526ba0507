// Package backfill resolves leftover customer names asynchronously so
// that future cache lookups hit where a budgeted run could not.
package backfill

import (
	"time"

	"github.com/hexlake/cir/pkg/tempid"
)

const (
	// TypeLookup is the task type for one asynchronous name lookup
	TypeLookup = "backfill:lookup"
)

// LookupPayload is the payload for one backfill lookup task
type LookupPayload struct {
	Name       string    `json:"name"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// UniqueID returns a stable task id so that cosmetic variants of the
// same name dedupe to one queued task.
func (p LookupPayload) UniqueID() string {
	return TypeLookup + ":" + tempid.Normalize(p.Name)
}
