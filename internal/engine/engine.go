package engine

import (
	"context"
	"time"

	"github.com/aman-cerp/fedq/internal/aggregate"
	"github.com/aman-cerp/fedq/internal/cache"
	"github.com/aman-cerp/fedq/internal/config"
	"github.com/aman-cerp/fedq/internal/coordinate"
	"github.com/aman-cerp/fedq/internal/fallback"
	"github.com/aman-cerp/fedq/internal/plan"
	"github.com/aman-cerp/fedq/internal/query"
	"github.com/aman-cerp/fedq/internal/response"
	"github.com/aman-cerp/fedq/internal/run"
	"github.com/aman-cerp/fedq/internal/store"
	"github.com/aman-cerp/fedq/internal/telemetry"
)

// Engine is the façade callers use: Execute(query, opts) -> Response.
// It owns the store registry, the result cache and the query metrics
// collector; every other stage is constructed once and reused across
// calls, matching the "no singletons, construct per call where state
// actually needs it" rule the coordinator/error-handler split follows.
type Engine struct {
	Registry    *store.Registry
	Parser      *query.Parser
	Planner     *plan.Planner
	Coordinator *coordinate.Coordinator
	Runner      *run.Runner
	Aggregator  *aggregate.Aggregator
	Cache       *cache.ResultCache
	Metrics     *telemetry.QueryMetrics

	slaCeiling time.Duration
}

// New constructs an Engine from configuration and a populated registry.
// The registry's adapters must already be registered; New does not touch
// them beyond reading config-driven tunables.
func New(cfg *config.Config, registry *store.Registry) *Engine {
	runner := run.NewRunner(registry)
	planner := plan.NewPlanner(plan.PlannerConfig{
		SLACeilingMs: cfg.SLA.CeilingMs,
		DefaultLimit: 10,
	}, healthLookup(registry))

	aggCfg := aggregate.DefaultConfig()
	aggCfg.MaxPerSource = cfg.Ranking.MaxPerSource
	aggCfg.DiversityEnabled = cfg.Ranking.MaxPerSource > 0
	if len(cfg.Ranking.StoreWeights) > 0 {
		weights := make(aggregate.Weights, len(cfg.Ranking.StoreWeights))
		for k, v := range cfg.Ranking.StoreWeights {
			weights[store.Kind(k)] = v
		}
		aggCfg.Weights = weights
	}

	return &Engine{
		Registry:    registry,
		Parser:      query.NewParser(),
		Planner:     planner,
		Coordinator: coordinate.NewCoordinator(runner, registry),
		Runner:      runner,
		Aggregator:  aggregate.NewAggregator(aggCfg),
		Cache:       cache.NewResultCache(cfg.CacheTTL()),
		Metrics:     telemetry.NewQueryMetrics(nil),
		slaCeiling:  time.Duration(cfg.SLA.CeilingMs) * time.Millisecond,
	}
}

// healthLookup adapts the registry's circuit-breaker-aware availability
// check into the plan.HealthLookup shape the Planner expects.
func healthLookup(registry *store.Registry) plan.HealthLookup {
	return func(ctx context.Context, kind store.Kind) (bool, int) {
		adapter, ok := registry.Get(kind)
		if !ok {
			return false, 0
		}
		if breaker, ok := registry.Breaker(kind); ok && !breaker.Allow() {
			return false, 0
		}
		h := adapter.Health(ctx)
		return h.Healthy, h.SizeHint
	}
}

// Execute runs the full pipeline for one caller query: cache lookup,
// parse, plan, coordinate, fall back on errors, aggregate/rank, and
// finally stamp the response metadata.
func (e *Engine) Execute(ctx context.Context, rawQuery string, opts Options) response.Response {
	opts = opts.normalized()
	start := time.Now()

	var cacheKey string
	if opts.UseCache {
		cacheKey = cache.Key(rawQuery, opts.Limit, string(opts.Strategy))
		if cached, ok := e.Cache.Get(cacheKey); ok {
			return cached
		}
	}

	analysis, err := e.Parser.Parse(rawQuery)
	if err != nil {
		return e.parseErrorResponse(err, start)
	}

	if opts.Database != nil {
		analysis.TargetStores = restrictTo(*opts.Database)
	}

	planOut := e.Planner.Plan(ctx, analysis, opts.Limit)
	applyStrategy(planOut, opts.Strategy)

	outcome := e.Coordinator.Execute(ctx, planOut, e.slaCeiling)

	var items []run.ResultItem
	for _, o := range outcome.Outcomes {
		if o.Result.Success {
			items = append(items, o.Result.Items...)
		}
	}

	opErrs := coordinate.OpErrors(outcome)
	hasDatabaseContext := opts.Database != nil
	if len(opErrs) > 0 {
		handler := fallback.NewHandler(e.Runner, e.Registry)
		recovered, unresolved := handler.Handle(ctx, outcome, hasDatabaseContext)
		items = append(items, recovered...)
		opErrs = unresolved
	}

	ranked := e.Aggregator.Aggregate(items, analysis.SearchTerms, time.Now())
	resp := fallback.BuildResponse(ranked, analysis, opErrs)
	e.annotate(resp, planOut, outcome, start, false)

	e.record(rawQuery, len(ranked), time.Since(start))

	if opts.UseCache && resp.Success {
		e.Cache.Put(cacheKey, resp)
	}
	return resp
}

// restrictTo narrows the analysis's target-store list to a single caller-
// requested store, per the "database" call option.
func restrictTo(kind store.Kind) []query.StoreKind {
	return []query.StoreKind{query.StoreKind(kind)}
}

// applyStrategy reshapes planOut's parallel/sequential partition in
// place per the caller's requested Strategy. Hybrid and Cached leave the
// Planner's own partition untouched.
func applyStrategy(planOut *plan.ExecutionPlan, strategy Strategy) {
	switch strategy {
	case StrategyParallel:
		planOut.ParallelOps = planOut.Operations
		planOut.SequentialOps = nil
	case StrategySequential:
		planOut.ParallelOps = nil
		planOut.SequentialOps = planOut.Operations
	case StrategySelective:
		if len(planOut.Operations) > 0 {
			top := planOut.Operations[:1]
			planOut.ParallelOps = top
			planOut.SequentialOps = nil
		}
	case StrategyHybrid, StrategyCached:
		// Planner's own partition already reflects priority/mode.
	}
}

// parseErrorResponse builds the terminal, well-typed Response for a
// ParseError: success=false, no items, the error folded into metadata.
func (e *Engine) parseErrorResponse(err error, start time.Time) response.Response {
	meta := response.NewMetadata()
	meta["errors"] = []string{err.Error()}
	meta["executionTimeMs"] = msSince(start)
	meta["storesQueried"] = 0
	meta["totalOperations"] = 0
	meta["parallelOperations"] = 0
	meta["sequentialOperations"] = 0
	meta["parallelEfficiencyPct"] = 0.0
	meta["speedupFactor"] = 1.0
	meta["slaCompliance"] = true
	meta["fromCache"] = false
	return response.Response{Success: false, Metadata: meta}
}

// annotate stamps the execution-summary metadata fields onto resp in place.
func (e *Engine) annotate(resp response.Response, planOut *plan.ExecutionPlan, outcome coordinate.Outcome, start time.Time, fromCache bool) {
	stores := make(map[store.Kind]bool)
	var estimateTotalMs float64
	for _, op := range planOut.Operations {
		stores[op.Store] = true
		estimateTotalMs += op.EstimatedCostMs
	}

	elapsedMs := msSince(start)

	var parallelEfficiencyPct float64
	total := len(planOut.Operations)
	if total > 0 {
		parallelEfficiencyPct = 100 * float64(len(planOut.ParallelOps)) / float64(total)
	}

	speedupFactor := 1.0
	if elapsedMs > 0 && estimateTotalMs > 0 {
		speedupFactor = estimateTotalMs / elapsedMs
	}

	warnings := append([]string(nil), planOut.Notes...)
	if outcome.DeadlineExceeded {
		warnings = append(warnings, "sla ceiling exceeded; returning partial results")
	}

	if resp.Metadata == nil {
		resp.Metadata = response.NewMetadata()
	}
	resp.Metadata["executionTimeMs"] = elapsedMs
	resp.Metadata["storesQueried"] = len(stores)
	resp.Metadata["totalOperations"] = total
	resp.Metadata["parallelOperations"] = len(planOut.ParallelOps)
	resp.Metadata["sequentialOperations"] = len(planOut.SequentialOps)
	resp.Metadata["parallelEfficiencyPct"] = parallelEfficiencyPct
	resp.Metadata["speedupFactor"] = speedupFactor
	resp.Metadata["slaCompliance"] = !outcome.DeadlineExceeded
	resp.Metadata["warnings"] = warnings
	resp.Metadata["fromCache"] = fromCache
}

// record feeds one QueryEvent into the metrics collector. The parse-path
// classification mirrors Parser.Parse's own dispatch: a "%" anywhere in
// the raw text means the structured grammar matched.
func (e *Engine) record(rawQuery string, resultCount int, latency time.Duration) {
	qt := telemetry.QueryTypeNaturalLanguage
	if containsPercent(rawQuery) {
		qt = telemetry.QueryTypeStructured
	}
	e.Metrics.Record(telemetry.QueryEvent{
		Query:       rawQuery,
		QueryType:   qt,
		ResultCount: resultCount,
		Latency:     latency,
		Timestamp:   time.Now(),
	})
}

func containsPercent(s string) bool {
	for _, r := range s {
		if r == '%' {
			return true
		}
	}
	return false
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
