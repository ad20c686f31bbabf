package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/fantasy11/session"
)

const (
	storeSQLite = "sqlite"
	storeRedis  = "redis"
	storeMemory = "memory"

	miniRedisAddr = "mini"
	redisPrefix   = "f11"
)

func openStore(ctx context.Context, opts options) (*session.Store, func(), error) {
	switch opts.store {
	case "", storeSQLite:
		path := opts.dbPath
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return nil, nil, fmt.Errorf("locate config dir: %w", err)
			}
			path = filepath.Join(dir, "fantasy11", "session.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create session dir: %w", err)
		}

		backend, err := session.OpenSQLiteBackend(session.SQLiteBackendConfig{Path: path, Profile: opts.profile})
		if err != nil {
			return nil, nil, err
		}
		return session.NewStore(backend), func() { _ = backend.Close() }, nil

	case storeRedis:
		addr := opts.redisAddr
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			return nil, nil, fmt.Errorf("-redis-addr or REDIS_ADDR is required for the redis store")
		}

		var cleanup func()
		if addr == miniRedisAddr {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, nil, fmt.Errorf("start miniredis: %w", err)
			}
			addr = mr.Addr()
			cleanup = mr.Close
		}

		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			if cleanup != nil {
				cleanup()
			}
			return nil, nil, fmt.Errorf("redis %s: %w", addr, err)
		}

		closeAll := func() {
			_ = rdb.Close()
			if cleanup != nil {
				cleanup()
			}
		}
		return session.NewStore(session.NewRedisBackend(rdb, redisPrefix, opts.profile)), closeAll, nil

	case storeMemory:
		return session.NewStore(session.NewMemoryBackend()), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown store %q", opts.store)
}
