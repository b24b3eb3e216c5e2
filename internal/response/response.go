// Package response defines the Response shape the Engine builds once per
// Execute call. It is a separate package so both the
// Engine and the ErrorHandler (which can also produce a degraded but
// well-typed Response) can depend on it without a cycle.
package response

import (
	"github.com/aman-cerp/fedq/internal/aggregate"
	"github.com/aman-cerp/fedq/internal/query"
)

// Response is built by the Engine exactly once per Execute call.
// success is true iff at least one ranked item is present, fallback
// items included; an empty result, including an empty result from a
// single-store fallback, leaves success false.
type Response struct {
	Success       bool
	Items         []aggregate.RankedItem
	QueryAnalysis *query.SemanticQuery
	Metadata      map[string]any
}

// NewMetadata returns an initialized metadata map so callers never need a
// nil check before assigning keys.
func NewMetadata() map[string]any {
	return map[string]any{}
}
