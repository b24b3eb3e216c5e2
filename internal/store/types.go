// Package store defines the StoreAdapter capability contract and a
// registry keyed by StoreKind, plus one concrete adapter per backing
// store: relational (SQLite), vector (HNSW), graph (Neo4j), key-value
// (Redis), and an optional filesystem adapter.
package store

import (
	"context"
	"time"
)

// Kind identifies a backing store. Mirrors query.StoreKind but is defined
// independently so this package has no dependency on the parser.
type Kind string

const (
	Relational Kind = "RELATIONAL"
	Vector     Kind = "VECTOR"
	Graph      Kind = "GRAPH"
	KV         Kind = "KV"
	Filesystem Kind = "FILESYSTEM"
)

// OperationKind identifies which capability of a store is being invoked.
type OperationKind string

const (
	OpRetrieve     OperationKind = "RETRIEVE"
	OpSearch       OperationKind = "SEARCH"
	OpVectorSearch OperationKind = "VECTOR_SEARCH"
	OpGraphQuery   OperationKind = "GRAPH_QUERY"
	OpFileSearch   OperationKind = "FILE_SEARCH"
	OpCacheLookup  OperationKind = "CACHE_LOOKUP"
)

// supportedOps maps each Kind to the OperationKinds it supports.
var supportedOps = map[Kind]map[OperationKind]bool{
	Relational: {OpRetrieve: true, OpSearch: true},
	Vector:     {OpVectorSearch: true},
	Graph:      {OpGraphQuery: true},
	KV:         {OpCacheLookup: true},
	Filesystem: {OpFileSearch: true},
}

// Supports reports whether store kind k implements operation kind op.
func Supports(k Kind, op OperationKind) bool {
	return supportedOps[k][op]
}

// ResultKind classifies a normalized result item's origin shape.
type ResultKind string

const (
	ResultDocument   ResultKind = "DOCUMENT"
	ResultFile       ResultKind = "FILE"
	ResultNode       ResultKind = "NODE"
	ResultCacheEntry ResultKind = "CACHE_ENTRY"
	ResultGeneric    ResultKind = "GENERIC"
)

// Health is returned by an adapter's Health check; the Planner and
// CostModel use SizeHint to scale cost and drop unhealthy stores.
type Health struct {
	Healthy  bool
	SizeHint int
}

// Payload is the tagged union an adapter returns from Execute. Exactly one
// field is populated, selected by which operation ran; Runner switches on
// that rather than on a separate discriminant, avoiding a duck-typed
// return shape.
type Payload struct {
	Documents   []Document
	Files       []File
	Nodes       []Node
	CacheValues []CacheValue
	Generic     []GenericRow
}

// Document is the adapter-level shape for RELATIONAL and VECTOR results.
type Document struct {
	ID              string
	Title           string
	FileName        string
	Content         string
	Score           float64
	SimilarityScore *float64
	Metadata        map[string]string
	Timestamp       *time.Time
}

// File is the adapter-level shape for FILESYSTEM results.
type File struct {
	ID       string
	Name     string
	Path     string
	Content  string
	Metadata map[string]string
}

// Node is the adapter-level shape for GRAPH results.
type Node struct {
	ID       string
	Label    string
	Name     string
	Content  string
	Metadata map[string]string
}

// CacheValue is the adapter-level shape for KV results.
type CacheValue struct {
	Key      string
	Value    string
	Metadata map[string]string
}

// GenericRow is the fallback shape for anything not matching the above.
type GenericRow struct {
	ID       string
	Title    string
	Content  string
	Score    float64
	Metadata map[string]string
}

// Adapter is the capability contract every backing store implements.
// Implementations must be safe under concurrent read access.
type Adapter interface {
	Name() Kind
	Health(ctx context.Context) Health
	Execute(ctx context.Context, opKind OperationKind, params Params) (Payload, error)
}

// Params is the per-operation parameter bag. The design notes call for a
// tagged union over operation kinds rather than an open map; Params is
// that union, one field group per OperationKind, checked by Validate at
// plan time so Planner and Runner cannot miscompose a call.
type Params struct {
	OpKind OperationKind

	// RELATIONAL.RETRIEVE / RELATIONAL.SEARCH
	Query        string
	SearchTerms  []string
	Limit        int
	TemporalFrom *time.Time
	TemporalTo   *time.Time
	ResourceType string

	// VECTOR.VECTOR_SEARCH
	K        int
	QueryVec []float32

	// GRAPH.GRAPH_QUERY
	Pattern  string
	StartID  string
	RelTypes []string
	MaxDepth int

	// KV.CACHE_LOOKUP
	Key     string
	KeyGlob string

	// FILESYSTEM.FILE_SEARCH
	Path     string
	FileGlob string
}

// Validate checks that Params carries the fields its OpKind requires.
func (p Params) Validate() error {
	switch p.OpKind {
	case OpRetrieve, OpSearch:
		if p.Query == "" && len(p.SearchTerms) == 0 {
			return errRequiredField(p.OpKind, "query/searchTerms")
		}
	case OpVectorSearch:
		if p.K <= 0 {
			return errRequiredField(p.OpKind, "k")
		}
	case OpGraphQuery:
		if p.Pattern == "" && p.StartID == "" {
			return errRequiredField(p.OpKind, "pattern/startId")
		}
		if p.MaxDepth > 5 {
			return errRequiredField(p.OpKind, "maxDepth<=5")
		}
	case OpCacheLookup:
		if p.Key == "" && p.KeyGlob == "" {
			return errRequiredField(p.OpKind, "key/pattern")
		}
		if p.Key != "" && p.KeyGlob != "" {
			return errRequiredField(p.OpKind, "exactly one of key/pattern")
		}
	case OpFileSearch:
		if p.Path == "" || p.FileGlob == "" {
			return errRequiredField(p.OpKind, "path/pattern")
		}
	}
	return nil
}
