// Package bootstrap wires a store.Registry from Config: each backing
// store is optional, registered only when its connection details are
// set, so a deployment can run with whatever subset of RELATIONAL,
// VECTOR, GRAPH, KV, and FILESYSTEM it actually has.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aman-cerp/fedq/internal/config"
	"github.com/aman-cerp/fedq/internal/store"
)

// BuildRegistry registers one adapter per configured store and returns
// the populated registry. A store whose configuration is empty is
// skipped rather than treated as an error: the Planner and Aggregator
// already degrade gracefully to whatever stores are actually available.
func BuildRegistry(ctx context.Context, cfg *config.Config) (*store.Registry, error) {
	registry := store.NewRegistry()

	if cfg.Stores.RelationalDSN != "" {
		adapter, err := store.NewRelationalAdapter(cfg.Stores.RelationalDSN)
		if err != nil {
			return nil, fmt.Errorf("relational store: %w", err)
		}
		registry.Register(adapter)
	} else {
		slog.Debug("relational store not configured, skipping")
	}

	if cfg.Stores.VectorDimensions > 0 {
		embedder := store.NewHashEmbedder(cfg.Stores.VectorDimensions)
		vecCfg := store.DefaultVectorStoreConfig(cfg.Stores.VectorDimensions)
		registry.Register(store.NewVectorAdapter(vecCfg, embedder))
	} else {
		slog.Debug("vector store not configured, skipping")
	}

	if cfg.Stores.GraphURI != "" {
		adapter, err := store.NewGraphAdapter(ctx, cfg.Stores.GraphURI, cfg.Stores.GraphUsername, cfg.Stores.GraphPassword)
		if err != nil {
			slog.Warn("graph store unreachable, continuing without it", slog.String("error", err.Error()))
		} else {
			registry.Register(adapter)
		}
	} else {
		slog.Debug("graph store not configured, skipping")
	}

	if cfg.Stores.KVAddr != "" {
		registry.Register(store.NewKVAdapter(cfg.Stores.KVAddr))
	} else {
		slog.Debug("kv store not configured, skipping")
	}

	if cfg.Stores.FilesystemRoot != "" {
		registry.Register(store.NewFilesystemAdapter(cfg.Stores.FilesystemRoot))
	} else {
		slog.Debug("filesystem store not configured, skipping")
	}

	return registry, nil
}
