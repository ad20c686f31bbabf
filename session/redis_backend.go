package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores the session pair in Redis under "<prefix>:{<profile>}:<key>".
// The hash tag keeps both keys in one cluster slot so the paired MULTI/EXEC and MGET
// are accepted by Redis Cluster.
//
// It suits clients that share one login across processes on a host, such as a CLI
// and a companion daemon.
type RedisBackend struct {
	redis   redis.UniversalClient
	prefix  string
	profile string
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend creates a backend on the given client. An empty profile maps to "0".
func NewRedisBackend(client redis.UniversalClient, prefix, profile string) *RedisBackend {
	if prefix == "" {
		prefix = "f11"
	}
	return &RedisBackend{
		redis:   client,
		prefix:  prefix,
		profile: normalizeProfile(profile),
	}
}

func normalizeProfile(profile string) string {
	if profile == "" {
		return "0"
	}
	return profile
}

func (r *RedisBackend) key(k string) string {
	return r.prefix + ":{" + r.profile + "}:" + k
}

func (r *RedisBackend) Available() bool {
	return r != nil && r.redis != nil
}

func (r *RedisBackend) GetAll(ctx context.Context, keys ...string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}

	vals, err := r.redis.MGet(ctx, full...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	out := make(map[string]string, len(keys))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

func (r *RedisBackend) SetAll(ctx context.Context, values map[string]string) error {
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisBackend) DeleteAll(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}

	if err := r.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisBackend) SetAllIf(ctx context.Context, guardKey, guardValue string, values map[string]string) (bool, error) {
	return r.guarded(ctx, guardKey, guardValue, func(pipe redis.Pipeliner) {
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, 0)
		}
	})
}

func (r *RedisBackend) DeleteAllIf(ctx context.Context, guardKey, guardValue string, keys ...string) (bool, error) {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.guarded(ctx, guardKey, guardValue, func(pipe redis.Pipeliner) {
		if len(full) > 0 {
			pipe.Del(ctx, full...)
		}
	})
}

// guarded runs queue inside MULTI/EXEC while WATCHing guardKey. A concurrent write to
// the guard aborts the transaction and reports not applied.
func (r *RedisBackend) guarded(ctx context.Context, guardKey, guardValue string, queue func(redis.Pipeliner)) (bool, error) {
	applied := false
	err := r.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, r.key(guardKey)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if current != guardValue {
			return nil
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			queue(pipe)
			return nil
		}); err != nil {
			return err
		}
		applied = true
		return nil
	}, r.key(guardKey))

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return applied, nil
}
