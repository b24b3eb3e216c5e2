package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KVAdapter implements Adapter over Redis for KV.CACHE_LOOKUP: a single
// key fetch or a SCAN-based pattern lookup. Like GRAPH, KV is optional —
// a deployment without Redis simply never registers this adapter.
type KVAdapter struct {
	client *redis.Client
}

// NewKVAdapter connects to a Redis instance at addr.
func NewKVAdapter(addr string) *KVAdapter {
	return &KVAdapter{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (k *KVAdapter) Name() Kind { return KV }

func (k *KVAdapter) Health(ctx context.Context) Health {
	if err := k.client.Ping(ctx).Err(); err != nil {
		return Health{Healthy: false}
	}
	size, err := k.client.DBSize(ctx).Result()
	if err != nil {
		return Health{Healthy: true}
	}
	return Health{Healthy: true, SizeHint: int(size)}
}

func (k *KVAdapter) Execute(ctx context.Context, opKind OperationKind, params Params) (Payload, error) {
	if opKind != OpCacheLookup {
		return Payload{}, fmt.Errorf("kv adapter does not support %s", opKind)
	}
	if err := params.Validate(); err != nil {
		return Payload{}, err
	}

	if params.Key != "" {
		val, err := k.client.Get(ctx, params.Key).Result()
		if errors.Is(err, redis.Nil) {
			return Payload{CacheValues: []CacheValue{}}, nil
		}
		if err != nil {
			return Payload{}, fmt.Errorf("redis get: %w", err)
		}
		return Payload{CacheValues: []CacheValue{{Key: params.Key, Value: val}}}, nil
	}

	var cursor uint64
	var values []CacheValue
	for {
		keys, next, err := k.client.Scan(ctx, cursor, params.KeyGlob, 100).Result()
		if err != nil {
			return Payload{}, fmt.Errorf("redis scan: %w", err)
		}
		for _, key := range keys {
			val, err := k.client.Get(ctx, key).Result()
			if err != nil {
				continue
			}
			values = append(values, CacheValue{Key: key, Value: val})
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return Payload{CacheValues: values}, nil
}

func (k *KVAdapter) Close() error { return k.client.Close() }
