// Package run executes a single DatabaseOperation against its
// StoreAdapter and normalizes the result into a uniform ResultItem
// stream.
package run

import (
	"time"

	"github.com/aman-cerp/fedq/internal/store"
)

// ResultItem is the normalized, store-agnostic unit the Aggregator
// consumes. Immutable after ranking.
type ResultItem struct {
	ID          string
	Kind        store.ResultKind
	Title       string
	Content     string
	Score       float64
	SourceStore store.Kind
	Metadata    map[string]string
	ContentHash [16]byte
}

// Result is what Run returns: either a normalized item stream or an
// OpError, never both, and it never panics across the call boundary.
type Result struct {
	Success    bool
	Items      []ResultItem
	Error      error
	DurationMs float64
	Timestamp  time.Time
}
