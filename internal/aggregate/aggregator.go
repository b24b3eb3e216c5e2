// Package aggregate deduplicates, scores, ranks, and optionally
// diversity-filters the normalized ResultItem stream produced by the
// Runner.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/aman-cerp/fedq/internal/run"
	"github.com/aman-cerp/fedq/internal/store"
)

// Weights holds the per-store composite-score multipliers. Overridable
// by config; DefaultWeights reflects the built-in defaults.
type Weights map[store.Kind]float64

func DefaultWeights() Weights {
	return Weights{
		store.Vector:     1.2,
		store.Relational: 1.0,
		store.Graph:       0.9,
		store.Filesystem: 0.8,
		store.KV:         0.7,
	}
}

func (w Weights) of(kind store.Kind) float64 {
	if v, ok := w[kind]; ok {
		return v
	}
	return 1.0
}

// Config tunes the Aggregator. Zero value is not usable; use
// DefaultConfig.
type Config struct {
	Weights          Weights
	DiversityEnabled bool
	MaxPerSource     int
	Limit            int
}

func DefaultConfig() Config {
	return Config{
		Weights:          DefaultWeights(),
		DiversityEnabled: false,
		MaxPerSource:     5,
		Limit:            10,
	}
}

// RankedItem is a ResultItem annotated with its computed composite score
// and final position.
type RankedItem struct {
	run.ResultItem
	Composite         float64
	RankPosition       int
	DuplicateSources  []store.Kind
	DiversityFiltered bool
}

type Aggregator struct {
	Cfg Config
}

func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{Cfg: cfg}
}

// Aggregate dedups by content hash, scores, sorts, diversity-filters and
// truncates to the configured limit. searchTerms drives the relevance
// boost; may be nil.
func (a *Aggregator) Aggregate(items []run.ResultItem, searchTerms []string, now time.Time) []RankedItem {
	deduped := a.dedup(items)

	ranked := make([]RankedItem, 0, len(deduped))
	for _, d := range deduped {
		composite := d.item.Score *
			a.Cfg.Weights.of(d.item.SourceStore) *
			contentBoost(d.item.Content) *
			recencyBoost(d.item.Metadata, now)
		composite *= termBoost(d.item, searchTerms)

		ranked = append(ranked, RankedItem{
			ResultItem:       d.item,
			Composite:        composite,
			DuplicateSources: d.duplicateSources,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Composite > ranked[j].Composite
	})
	for i := range ranked {
		ranked[i].RankPosition = i + 1
	}

	if a.Cfg.DiversityEnabled {
		a.applyDiversity(ranked)
	}

	limit := a.Cfg.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

type dedupedItem struct {
	item             run.ResultItem
	duplicateSources []store.Kind
}

// dedup groups items by contentHash; within each group it keeps the
// member with the highest (rawScore, storeWeight) tuple and records every
// member's source store.
func (a *Aggregator) dedup(items []run.ResultItem) []dedupedItem {
	groups := make(map[[16]byte][]run.ResultItem)
	order := make([][16]byte, 0)
	for _, it := range items {
		if _, ok := groups[it.ContentHash]; !ok {
			order = append(order, it.ContentHash)
		}
		groups[it.ContentHash] = append(groups[it.ContentHash], it)
	}

	out := make([]dedupedItem, 0, len(order))
	for _, hash := range order {
		members := groups[hash]
		best := members[0]
		bestWeight := a.Cfg.Weights.of(best.SourceStore)
		for _, m := range members[1:] {
			w := a.Cfg.Weights.of(m.SourceStore)
			if m.Score > best.Score || (m.Score == best.Score && w > bestWeight) {
				best = m
				bestWeight = w
			}
		}
		var sources []store.Kind
		if len(members) > 1 {
			for _, m := range members {
				sources = append(sources, m.SourceStore)
			}
			if best.Metadata == nil {
				best.Metadata = map[string]string{}
			}
		}
		out = append(out, dedupedItem{item: best, duplicateSources: sources})
	}
	return out
}

func contentBoost(content string) float64 {
	switch {
	case len(content) > 200:
		return 1.2
	case len(content) > 50:
		return 1.1
	default:
		return 1.0
	}
}

func recencyBoost(metadata map[string]string, now time.Time) float64 {
	raw, ok := metadata["timestamp"]
	if !ok {
		return 1.0
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 1.0
	}
	if now.Sub(ts) <= 24*time.Hour && now.Sub(ts) >= 0 {
		return 1.05
	}
	return 1.0
}

// termBoost implements 1 + 0.3*titleHitRatio + 0.2*contentHitRatio,
// capped at 2.0. No-op (returns 1.0) when no search terms were supplied.
func termBoost(item run.ResultItem, terms []string) float64 {
	if len(terms) == 0 {
		return 1.0
	}
	titleLower := strings.ToLower(item.Title)
	contentLower := strings.ToLower(item.Content)

	var titleHits, contentHits int
	for _, t := range terms {
		tl := strings.ToLower(t)
		if tl == "" {
			continue
		}
		if strings.Contains(titleLower, tl) {
			titleHits++
		}
		if strings.Contains(contentLower, tl) {
			contentHits++
		}
	}
	titleRatio := float64(titleHits) / float64(len(terms))
	contentRatio := float64(contentHits) / float64(len(terms))

	boost := 1 + 0.3*titleRatio + 0.2*contentRatio
	if boost > 2.0 {
		boost = 2.0
	}
	return boost
}

// applyDiversity caps per-sourceStore item count at MaxPerSource.
// Over-cap items are marked DiversityFiltered but kept in place;
// ranking/order is unchanged, matching "not discarded".
func (a *Aggregator) applyDiversity(ranked []RankedItem) {
	maxPerSource := a.Cfg.MaxPerSource
	if maxPerSource <= 0 {
		maxPerSource = 5
	}
	counts := make(map[store.Kind]int)
	for i := range ranked {
		kind := ranked[i].SourceStore
		counts[kind]++
		if counts[kind] > maxPerSource {
			ranked[i].DiversityFiltered = true
		}
	}
}
