// Package fallback implements the ErrorHandler: it classifies
// accumulated per-operation failures, picks a recovery strategy, invokes
// it, and returns a degraded but well-typed Response rather than
// propagating the failure to the caller.
package fallback

import (
	"context"
	"time"

	"github.com/aman-cerp/fedq/internal/aggregate"
	"github.com/aman-cerp/fedq/internal/coordinate"
	"github.com/aman-cerp/fedq/internal/plan"
	"github.com/aman-cerp/fedq/internal/query"
	"github.com/aman-cerp/fedq/internal/queryerr"
	"github.com/aman-cerp/fedq/internal/response"
	"github.com/aman-cerp/fedq/internal/run"
	"github.com/aman-cerp/fedq/internal/store"
)

// alternativeStorePriority is the priority list the ALTERNATIVE_STORE
// strategy walks, skipping stores that already failed.
var alternativeStorePriority = []store.Kind{
	store.Relational, store.Vector, store.Filesystem, store.Graph, store.KV,
}

// retryBackoff implements the exponential backoff schedule for the RETRY
// strategy: 100ms, 200ms, 400ms, capped at 3 attempts total.
var retryBackoff = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

// Handler is the ErrorHandler. It is stateless; Runner/Registry are
// supplied per call since each call's plan and context differ.
type Handler struct {
	Runner   *run.Runner
	Registry *store.Registry
}

func NewHandler(runner *run.Runner, registry *store.Registry) *Handler {
	return &Handler{Runner: runner, Registry: registry}
}

// Handle inspects the failed operations in outcome and, for each,
// attempts the strategy classification indicates, folding any recovered
// items back in. It returns the recovered items (possibly empty) plus the
// unresolved errors that survived every attempted strategy.
func (h *Handler) Handle(ctx context.Context, outcome coordinate.Outcome, hasDatabaseContext bool) ([]run.ResultItem, []*queryerr.OpError) {
	var recovered []run.ResultItem
	var unresolved []*queryerr.OpError

	attempted := make(map[store.Kind]bool)
	for _, o := range outcome.Outcomes {
		attempted[o.Op.Store] = true
	}

	for _, o := range outcome.Outcomes {
		if o.Result.Success {
			continue
		}
		opErr, ok := o.Result.Error.(*queryerr.OpError)
		if !ok {
			continue
		}

		strategy := queryerr.Classify(opErr.Kind, hasDatabaseContext)
		items, resolvedErr := h.apply(ctx, strategy, o.Op, opErr, attempted)
		if resolvedErr != nil {
			unresolved = append(unresolved, resolvedErr)
			continue
		}
		recovered = append(recovered, items...)
	}

	return recovered, unresolved
}

func (h *Handler) apply(ctx context.Context, strategy queryerr.FallbackStrategy, op plan.DatabaseOperation, opErr *queryerr.OpError, attempted map[store.Kind]bool) ([]run.ResultItem, *queryerr.OpError) {
	switch strategy {
	case queryerr.StrategyRetry:
		return h.retry(ctx, op, opErr)
	case queryerr.StrategyAlternativeStore:
		return h.alternativeStore(ctx, op, opErr, attempted)
	case queryerr.StrategySingleStore:
		return h.singleStoreFallback(ctx, op, opErr)
	case queryerr.StrategyMinimalResponse:
		return h.minimalResponse(opErr), nil
	default:
		return nil, opErr
	}
}

func (h *Handler) retry(ctx context.Context, op plan.DatabaseOperation, opErr *queryerr.OpError) ([]run.ResultItem, *queryerr.OpError) {
	attempts := op.Retries
	if attempts > len(retryBackoff) {
		attempts = len(retryBackoff)
	}
	for i := 0; i < attempts; i++ {
		select {
		case <-time.After(retryBackoff[i]):
		case <-ctx.Done():
			return nil, opErr
		}
		res := h.Runner.Run(ctx, op)
		if res.Success {
			return res.Items, nil
		}
		if next, ok := res.Error.(*queryerr.OpError); ok {
			opErr = next
		}
	}
	return nil, opErr
}

func (h *Handler) alternativeStore(ctx context.Context, op plan.DatabaseOperation, opErr *queryerr.OpError, attempted map[store.Kind]bool) ([]run.ResultItem, *queryerr.OpError) {
	defaultOp := map[store.Kind]store.OperationKind{
		store.Relational: store.OpSearch, store.Vector: store.OpVectorSearch, store.Graph: store.OpGraphQuery,
		store.KV: store.OpCacheLookup, store.Filesystem: store.OpFileSearch,
	}
	for _, candidate := range alternativeStorePriority {
		if candidate == op.Store || attempted[candidate] {
			continue
		}
		if _, ok := h.Registry.Get(candidate); !ok {
			continue
		}
		attempted[candidate] = true
		altOp := op
		altOp.Store = candidate
		if !store.Supports(candidate, op.OpKind) {
			altOp.OpKind = defaultOp[candidate]
		}
		res := h.Runner.Run(ctx, altOp)
		if res.Success {
			return res.Items, nil
		}
	}
	return nil, opErr
}

func (h *Handler) singleStoreFallback(ctx context.Context, op plan.DatabaseOperation, opErr *queryerr.OpError) ([]run.ResultItem, *queryerr.OpError) {
	if op.Store == store.Relational {
		return nil, opErr
	}
	if _, ok := h.Registry.Get(store.Relational); !ok || !store.Supports(store.Relational, store.OpSearch) {
		return nil, opErr
	}
	altOp := op
	altOp.Store = store.Relational
	altOp.OpKind = store.OpSearch
	res := h.Runner.Run(ctx, altOp)
	if res.Success {
		return res.Items, nil
	}
	return nil, opErr
}

// minimalResponse builds a single well-typed GENERIC item carrying a
// user-facing error string, per the RESOURCE_EXHAUSTED strategy.
func (h *Handler) minimalResponse(opErr *queryerr.OpError) []run.ResultItem {
	return []run.ResultItem{{
		ID:          "minimal-" + opErr.Store,
		Kind:        store.ResultGeneric,
		Title:       "request could not be completed",
		Content:     opErr.Message,
		Score:       0,
		SourceStore: store.Kind(opErr.Store),
		Metadata:    map[string]string{"degraded": "true"},
	}}
}

// BuildResponse assembles a Response from whatever ranked items survived
// aggregation plus accumulated errors: success iff at least one item is
// present.
func BuildResponse(ranked []aggregate.RankedItem, analysis *query.SemanticQuery, errs []*queryerr.OpError) response.Response {
	meta := response.NewMetadata()
	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		meta["errors"] = msgs
	}
	return response.Response{
		Success:       len(ranked) > 0,
		Items:         ranked,
		QueryAnalysis: analysis,
		Metadata:      meta,
	}
}
