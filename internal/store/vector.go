package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// Embedder turns query text into the vector space the VECTOR store
// indexes. Generating the embedding model itself is out of scope; a
// deployment wires in whatever encoder it uses. HashEmbedder below is a
// deterministic stand-in for tests and for deployments without a real
// embedding model.
type Embedder interface {
	Embed(text string) []float32
	Dimensions() int
}

// HashEmbedder deterministically maps text to a unit vector via FNV
// hashing of shingles. It carries no semantic meaning; it exists so the
// VECTOR adapter is exercisable without a real embedding service.
type HashEmbedder struct {
	dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 64
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Dimensions() int { return h.dims }

func (h *HashEmbedder) Embed(text string) []float32 {
	vec := make([]float32, h.dims)
	if text == "" {
		return vec
	}
	for i := 0; i < len(text); i++ {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte{text[i]})
		_, _ = hasher.Write([]byte(text[max(0, i-2):i]))
		vec[int(hasher.Sum32())%h.dims] += 1.0
	}
	normalizeInPlace(vec)
	return vec
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func normalizeInPlace(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
}

// VectorStoreConfig configures the HNSW graph backing the VECTOR adapter.
type VectorStoreConfig struct {
	Dimensions int
	M          int
	EfSearch   int
}

func DefaultVectorStoreConfig(dimensions int) VectorStoreConfig {
	return VectorStoreConfig{Dimensions: dimensions, M: 16, EfSearch: 20}
}

// ErrDimensionMismatch reports a query or insert vector whose length does
// not match the store's configured dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// VectorAdapter implements Adapter over an in-process HNSW graph, the
// same pure-Go approach used elsewhere in this module to avoid a CGO-based
// vector store.
type VectorAdapter struct {
	mu       sync.RWMutex
	graph    *hnsw.Graph[uint64]
	config   VectorStoreConfig
	embedder Embedder

	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64

	docs map[string]storedDoc
}

type storedDoc struct {
	title     string
	content   string
	metadata  map[string]string
}

// NewVectorAdapter builds a VECTOR adapter around a fresh HNSW graph.
func NewVectorAdapter(cfg VectorStoreConfig, embedder Embedder) *VectorAdapter {
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &VectorAdapter{
		graph:    graph,
		config:   cfg,
		embedder: embedder,
		idMap:    make(map[string]uint64),
		keyMap:   make(map[uint64]string),
		docs:     make(map[string]storedDoc),
	}
}

func (v *VectorAdapter) Name() Kind { return Vector }

func (v *VectorAdapter) Health(ctx context.Context) Health {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Health{Healthy: true, SizeHint: v.graph.Len()}
}

// Index adds a document's embedding to the graph. Not part of the
// query-time Adapter contract, but needed to populate the store for
// tests and for a deployment's ingestion path.
func (v *VectorAdapter) Index(id, title, content string, metadata map[string]string) error {
	vec := v.embedder.Embed(content)
	if len(vec) != v.config.Dimensions {
		return ErrDimensionMismatch{Expected: v.config.Dimensions, Got: len(vec)}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if existing, ok := v.idMap[id]; ok {
		delete(v.keyMap, existing)
	}
	key := v.nextKey
	v.nextKey++
	v.graph.Add(hnsw.MakeNode(key, vec))
	v.idMap[id] = key
	v.keyMap[key] = id
	v.docs[id] = storedDoc{title: title, content: content, metadata: metadata}
	return nil
}

func (v *VectorAdapter) Execute(ctx context.Context, opKind OperationKind, params Params) (Payload, error) {
	if opKind != OpVectorSearch {
		return Payload{}, fmt.Errorf("vector adapter does not support %s", opKind)
	}
	if err := params.Validate(); err != nil {
		return Payload{}, err
	}

	queryVec := params.QueryVec
	if len(queryVec) == 0 {
		queryVec = v.embedder.Embed(params.Query)
	}
	if len(queryVec) != v.config.Dimensions {
		return Payload{}, ErrDimensionMismatch{Expected: v.config.Dimensions, Got: len(queryVec)}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.graph.Len() == 0 {
		return Payload{Documents: []Document{}}, nil
	}

	nodes := v.graph.Search(queryVec, params.K)
	docs := make([]Document, 0, len(nodes))
	for _, node := range nodes {
		id, ok := v.keyMap[node.Key]
		if !ok {
			continue
		}
		distance := v.graph.Distance(queryVec, node.Value)
		score := 1.0 - float64(distance)/2.0
		if score < 0 {
			score = 0
		}
		stored := v.docs[id]
		docs = append(docs, Document{
			ID:              id,
			Title:           stored.title,
			Content:         stored.content,
			Score:           score,
			SimilarityScore: &score,
			Metadata:        stored.metadata,
		})
	}
	return Payload{Documents: docs}, nil
}
