package plan

import (
	"context"
	"fmt"
	"sort"

	"github.com/aman-cerp/fedq/internal/query"
	"github.com/aman-cerp/fedq/internal/store"
)

// PlannerConfig carries the tunables exposed through configuration.
type PlannerConfig struct {
	SLACeilingMs   float64
	PerStoreSLAMs  map[store.Kind]float64
	DefaultLimit   int
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		SLACeilingMs: 2000,
		DefaultLimit: 10,
	}
}

func (c PlannerConfig) perStoreSLA(kind store.Kind) float64 {
	if c.PerStoreSLAMs != nil {
		if v, ok := c.PerStoreSLAMs[kind]; ok {
			return v
		}
	}
	return c.SLACeilingMs
}

// priorityTables maps QueryKind to a store-ordering; index is priority
// (lower is earlier/more important).
var priorityTables = map[query.Kind][]store.Kind{
	query.KindMemory:   {store.Vector, store.Relational, store.Filesystem, store.Graph, store.KV},
	query.KindChat:     {store.Relational, store.KV},
	query.KindDocument: {store.Filesystem, store.Vector, store.Relational, store.Graph, store.KV},
}

func priorityOf(kind query.Kind, s store.Kind) int {
	table, ok := priorityTables[kind]
	if !ok {
		table = priorityTables[query.KindMemory]
	}
	for i, k := range table {
		if k == s {
			return i
		}
	}
	return len(table) // unranked stores sort last
}

// HealthLookup reports whether a store is registered and healthy; the
// Planner uses it to filter q.TargetStores to what's actually usable.
type HealthLookup func(ctx context.Context, kind store.Kind) (healthy bool, sizeHint int)

// Planner builds an ExecutionPlan from a SemanticQuery.
type Planner struct {
	Config PlannerConfig
	Health HealthLookup
}

func NewPlanner(cfg PlannerConfig, health HealthLookup) *Planner {
	return &Planner{Config: cfg, Health: health}
}

// Plan implements Plan(q, availableStores) -> ExecutionPlan.
func (p *Planner) Plan(ctx context.Context, q *query.SemanticQuery, limit int) *ExecutionPlan {
	selected := p.filterAvailable(ctx, convertStoreKinds(q.TargetStores))
	if len(selected) == 0 {
		if healthy, _ := p.Health(ctx, store.Relational); healthy {
			selected = []store.Kind{store.Relational}
		}
	}

	planOut := &ExecutionPlan{QueryKind: q.Kind}
	if len(selected) == 0 {
		planOut.Notes = append(planOut.Notes, "no healthy stores available; degenerate plan")
		return planOut
	}

	ops := make([]DatabaseOperation, 0, len(selected))
	for _, s := range selected {
		ops = append(ops, p.buildOperation(ctx, q, s, limit))
	}

	sort.SliceStable(ops, func(i, j int) bool {
		pi, pj := priorityOf(q.Kind, ops[i].Store), priorityOf(q.Kind, ops[j].Store)
		if pi != pj {
			return pi < pj
		}
		return ops[i].EstimatedCostMs < ops[j].EstimatedCostMs
	})
	for i := range ops {
		ops[i].Priority = i
	}

	var parallelOps, sequentialOps []DatabaseOperation
	for _, op := range ops {
		if op.Mode == Parallel {
			parallelOps = append(parallelOps, op)
		} else {
			sequentialOps = append(sequentialOps, op)
		}
	}

	planOut.Operations = ops
	planOut.ParallelOps = parallelOps
	planOut.SequentialOps = sequentialOps
	p.applyBudget(planOut)

	for _, op := range planOut.Operations {
		if err := op.Params.Validate(); err != nil {
			planOut.Notes = append(planOut.Notes, fmt.Sprintf("operation %s/%s failed validation: %v", op.Store, op.OpKind, err))
		}
	}

	return planOut
}

func convertStoreKinds(targets []query.StoreKind) []store.Kind {
	out := make([]store.Kind, len(targets))
	for i, t := range targets {
		out[i] = store.Kind(t)
	}
	return out
}

func (p *Planner) filterAvailable(ctx context.Context, targets []store.Kind) []store.Kind {
	var out []store.Kind
	seen := make(map[store.Kind]bool)
	for _, s := range targets {
		if seen[s] {
			continue
		}
		seen[s] = true
		if healthy, _ := p.Health(ctx, s); healthy {
			out = append(out, s)
		}
	}
	return out
}

func (p *Planner) buildOperation(ctx context.Context, q *query.SemanticQuery, s store.Kind, limit int) DatabaseOperation {
	opKind := opKindFor(s)
	params := buildParams(q, s, opKind, limit)

	_, sizeHint := p.Health(ctx, s)
	cost := CostEstimate(s, opKind, len(q.SearchTerms), sizeHint, p.Config.perStoreSLA(s))

	mode := defaultMode(s, q.Kind)
	sla := p.Config.perStoreSLA(s)
	remainingShare := p.Config.SLACeilingMs
	timeout := int(remainingShare)
	if sla < remainingShare {
		timeout = int(sla)
	}
	if timeout <= 0 {
		timeout = 1
	}

	return DatabaseOperation{
		Store:           s,
		OpKind:          opKind,
		Params:          params,
		EstimatedCostMs: cost,
		Mode:            mode,
		TimeoutMs:       timeout,
		Retries:         0,
	}
}

func opKindFor(s store.Kind) store.OperationKind {
	switch s {
	case store.Vector:
		return store.OpVectorSearch
	case store.Graph:
		return store.OpGraphQuery
	case store.KV:
		return store.OpCacheLookup
	case store.Filesystem:
		return store.OpFileSearch
	default:
		return store.OpSearch
	}
}

func defaultMode(s store.Kind, qk query.Kind) ExecutionMode {
	switch s {
	case store.Relational, store.KV:
		return Parallel
	case store.Graph, store.Filesystem:
		return Sequential
	case store.Vector:
		if qk == query.KindMemory {
			return Parallel
		}
		return Sequential
	default:
		return Sequential
	}
}

func buildParams(q *query.SemanticQuery, s store.Kind, opKind store.OperationKind, limit int) store.Params {
	params := store.Params{OpKind: opKind, Limit: limit}

	switch s {
	case store.Relational:
		params.Query = joinTerms(q.SearchTerms)
		params.SearchTerms = q.SearchTerms
		if q.Temporal != nil {
			from, to := q.Temporal.Start, q.Temporal.End
			params.TemporalFrom = &from
			params.TemporalTo = &to
		}
	case store.Vector:
		params.Query = joinTerms(q.SearchTerms)
		params.K = limit
		if params.K <= 0 {
			params.K = 10
		}
	case store.Graph:
		if len(q.SearchTerms) > 0 {
			params.StartID = q.SearchTerms[0]
		}
		params.MaxDepth = 2
	case store.KV:
		params.KeyGlob = "*" + joinTerms(q.SearchTerms) + "*"
	case store.Filesystem:
		params.Path = ""
		if len(q.SearchTerms) > 0 {
			params.FileGlob = "**/*" + q.SearchTerms[0] + "*"
		} else {
			params.FileGlob = "**/*"
		}
	}
	return params
}

func joinTerms(terms []string) string {
	out := ""
	for i, t := range terms {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}

// applyBudget implements the SLA budget check: if the plan's
// estimated total exceeds the ceiling, drop the lowest-priority
// sequential operations until it fits, recording a note each time.
func (p *Planner) applyBudget(planOut *ExecutionPlan) {
	recompute := func() float64 {
		var maxParallel float64
		for _, op := range planOut.ParallelOps {
			if op.EstimatedCostMs > maxParallel {
				maxParallel = op.EstimatedCostMs
			}
		}
		var seqSum float64
		for _, op := range planOut.SequentialOps {
			seqSum += op.EstimatedCostMs
		}
		total := maxParallel + seqSum + 10*float64(len(planOut.Operations))
		planOut.EstimatedTotalMs = total
		return total
	}

	total := recompute()
	for total > p.Config.SLACeilingMs && len(planOut.SequentialOps) > 0 {
		dropped := planOut.SequentialOps[len(planOut.SequentialOps)-1]
		planOut.SequentialOps = planOut.SequentialOps[:len(planOut.SequentialOps)-1]
		planOut.Operations = removeOp(planOut.Operations, dropped)
		planOut.Notes = append(planOut.Notes,
			fmt.Sprintf("dropped %s/%s to satisfy SLA budget", dropped.Store, dropped.OpKind))
		total = recompute()
	}
}

func removeOp(ops []DatabaseOperation, target DatabaseOperation) []DatabaseOperation {
	out := make([]DatabaseOperation, 0, len(ops))
	removed := false
	for _, op := range ops {
		if !removed && op.Store == target.Store && op.OpKind == target.OpKind {
			removed = true
			continue
		}
		out = append(out, op)
	}
	return out
}
