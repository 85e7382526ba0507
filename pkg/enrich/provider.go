// Package enrich provides the external company enrichment lookup
package enrich

import "context"

// Match is a successful enrichment lookup result
type Match struct {
	CanonicalID string `json:"canonical_id"`
}

// Provider looks up a company by customer name against an external
// enrichment service. A nil Match with a nil error means no match was
// found. Implementations must not hang indefinitely: the resolver calls
// Lookup sequentially and a stuck call stalls the whole batch.
type Provider interface {
	Lookup(ctx context.Context, name string) (*Match, error)
}
