package run

import (
	"context"
	"crypto/md5"
	"strings"
	"time"

	"github.com/aman-cerp/fedq/internal/plan"
	"github.com/aman-cerp/fedq/internal/queryerr"
	"github.com/aman-cerp/fedq/internal/store"
)

// Runner executes one DatabaseOperation against its adapter. Stateless
// beyond the registry it is handed; safe for concurrent use across
// operations, matching the Coordinator's fan-out.
type Runner struct {
	Registry *store.Registry
}

func NewRunner(registry *store.Registry) *Runner {
	return &Runner{Registry: registry}
}

// Run implements Run(op) -> RunResult. The adapter call is bounded by
// op.TimeoutMs; on expiry the operation fails with OpError{TIMEOUT}.
func (r *Runner) Run(ctx context.Context, op plan.DatabaseOperation) Result {
	start := time.Now()

	adapter, ok := r.Registry.Get(op.Store)
	if !ok {
		return r.fail(op, start, queryerr.NewOpError(string(op.Store), string(op.OpKind), queryerr.OpUnavailable, "adapter not registered", nil))
	}

	opCtx, cancel := context.WithTimeout(ctx, time.Duration(op.TimeoutMs)*time.Millisecond)
	defer cancel()

	type execResult struct {
		payload store.Payload
		err     error
	}
	done := make(chan execResult, 1)
	go func() {
		payload, err := adapter.Execute(opCtx, op.OpKind, op.Params)
		done <- execResult{payload, err}
	}()

	select {
	case <-opCtx.Done():
		return r.fail(op, start, queryerr.NewOpError(string(op.Store), string(op.OpKind), queryerr.OpTimeout, "operation exceeded timeout", opCtx.Err()))
	case res := <-done:
		if res.err != nil {
			return r.fail(op, start, classifyAdapterError(op, res.err))
		}
		items := normalize(res.payload, op.Store)
		return Result{
			Success:    true,
			Items:      items,
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
			Timestamp:  start,
		}
	}
}

func (r *Runner) fail(op plan.DatabaseOperation, start time.Time, err error) Result {
	return Result{
		Success:    false,
		Error:      err,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		Timestamp:  start,
	}
}

// classifyAdapterError maps an opaque adapter error into an OpError kind.
// Adapters are not required to return typed errors, so this is a
// best-effort classification by message shape; adapters that already
// return a queryerr.OpError pass through unchanged.
func classifyAdapterError(op plan.DatabaseOperation, err error) *queryerr.OpError {
	if opErr, ok := err.(*queryerr.OpError); ok {
		return opErr
	}

	msg := err.Error()
	kind := queryerr.OpOther
	switch {
	case strings.Contains(msg, "connect"):
		kind = queryerr.OpConnection
	case strings.Contains(msg, "closed"), strings.Contains(msg, "unavailable"):
		kind = queryerr.OpUnavailable
	case strings.Contains(msg, "permission"), strings.Contains(msg, "denied"):
		kind = queryerr.OpPermission
	case strings.Contains(msg, "missing required field"), strings.Contains(msg, "does not support"):
		kind = queryerr.OpSyntax
	case strings.Contains(msg, "exhausted"), strings.Contains(msg, "resource"):
		kind = queryerr.OpResourceExhausted
	}
	return queryerr.NewOpError(string(op.Store), string(op.OpKind), kind, msg, err)
}

// normalize implements the per-store field extraction.
func normalize(payload store.Payload, source store.Kind) []ResultItem {
	var items []ResultItem

	for _, d := range payload.Documents {
		score := d.Score
		if d.SimilarityScore != nil {
			score = *d.SimilarityScore
		}
		title := d.Title
		if title == "" {
			title = d.FileName
		}
		items = append(items, ResultItem{
			ID:          d.ID,
			Kind:        store.ResultDocument,
			Title:       title,
			Content:     d.Content,
			Score:       score,
			SourceStore: source,
			Metadata:    withTimestamp(d.Metadata, d.Timestamp),
			ContentHash: contentHash(d.Content),
		})
	}

	for _, f := range payload.Files {
		title := f.Name
		if title == "" {
			title = f.Path
		}
		items = append(items, ResultItem{
			ID:          f.ID,
			Kind:        store.ResultFile,
			Title:       title,
			Content:     f.Content,
			Score:       0.5,
			SourceStore: source,
			Metadata:    f.Metadata,
			ContentHash: contentHash(f.Content),
		})
	}

	for _, n := range payload.Nodes {
		title := n.Label
		if title == "" {
			title = n.Name
		}
		items = append(items, ResultItem{
			ID:          n.ID,
			Kind:        store.ResultNode,
			Title:       title,
			Content:     n.Content,
			Score:       0.6,
			SourceStore: source,
			Metadata:    n.Metadata,
			ContentHash: contentHash(n.Content),
		})
	}

	for _, c := range payload.CacheValues {
		items = append(items, ResultItem{
			ID:          c.Key,
			Kind:        store.ResultCacheEntry,
			Title:       c.Key,
			Content:     c.Value,
			Score:       0.4,
			SourceStore: source,
			Metadata:    c.Metadata,
			ContentHash: contentHash(c.Value),
		})
	}

	for _, g := range payload.Generic {
		items = append(items, ResultItem{
			ID:          g.ID,
			Kind:        store.ResultGeneric,
			Title:       g.Title,
			Content:     g.Content,
			Score:       0.5,
			SourceStore: source,
			Metadata:    g.Metadata,
			ContentHash: contentHash(g.Content),
		})
	}

	return items
}

func withTimestamp(meta map[string]string, ts *time.Time) map[string]string {
	if ts == nil {
		return meta
	}
	out := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out["timestamp"] = ts.UTC().Format(time.RFC3339)
	return out
}

// contentHash implements contentHash = MD5(normalize(content)),
// normalize = trim+lowercase.
func contentHash(content string) [16]byte {
	normalized := strings.ToLower(strings.TrimSpace(content))
	return md5.Sum([]byte(normalized))
}
