package plan

import (
	"math"

	"github.com/aman-cerp/fedq/internal/store"
)

// baseCostMs is the store-specific base cost, in milliseconds, before any
// multipliers are applied.
var baseCostMs = map[store.Kind]float64{
	store.Relational: 50,
	store.Vector:      200,
	store.Graph:       300,
	store.KV:          20,
	store.Filesystem:  150,
}

// CostEstimate is a pure function of (kind, opKind, termCount,
// dataSizeHint, slaForStore);
// it performs no I/O and is never authoritative — the operation's
// timeout, not this estimate, bounds real execution.
func CostEstimate(kind store.Kind, opKind store.OperationKind, termCount, dataSizeHint int, slaForStore float64) float64 {
	base, ok := baseCostMs[kind]
	if !ok {
		base = 100
	}

	cost := base * complexityFactor(termCount) * dataSizeFactor(dataSizeHint) *
		operationFactor(opKind, kind) * storeAdjustment(kind, termCount)

	if slaForStore > 0 && cost > 0.8*slaForStore {
		ceiling := 0.8 * slaForStore
		cost = ceiling * math.Log10(1+cost/ceiling)
	}
	return cost
}

func complexityFactor(termCount int) float64 {
	switch {
	case termCount <= 2:
		return 1.0
	case termCount <= 4:
		return 1.5
	case termCount <= 7:
		return 2.0
	default:
		return 3.0
	}
}

func dataSizeFactor(size int) float64 {
	switch {
	case size <= 100:
		return 1.0
	case size <= 1000:
		return 1.2
	case size <= 10000:
		return 1.5
	default:
		return 2.0
	}
}

func operationFactor(opKind store.OperationKind, kind store.Kind) float64 {
	switch opKind {
	case store.OpVectorSearch:
		if kind == store.Vector {
			return 1.5
		}
		return 1.0
	case store.OpGraphQuery:
		if kind == store.Graph {
			return 2.0
		}
		return 1.0
	case store.OpCacheLookup:
		if kind == store.KV {
			return 0.3
		}
		return 1.0
	default:
		return 1.0
	}
}

func storeAdjustment(kind store.Kind, termCount int) float64 {
	adj := 1.0
	if kind == store.Relational && termCount <= 2 {
		adj *= 0.8
	}
	if kind == store.Vector && termCount > 10 {
		adj *= 1 + 0.05*float64(termCount-10)
	}
	return adj
}
