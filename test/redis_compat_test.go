//go:build integration
// +build integration

package test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/fantasy11/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// redisMode describes which Redis backend the compatibility suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns the set of Redis backends to test.
// miniredis is always available.
// Real Redis standalone is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379").
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				// Flush the test DB to avoid state leaking between runs.
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	// Cluster mode: when REDIS_CLUSTER_ADDRS is set (comma-separated).
	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				clusterAddrs := splitAddrs(addrs)
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: clusterAddrs})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis cluster: %v", err)
				}
				return rdb, func() { _ = rdb.Close() }
			},
		})
	}

	// Sentinel mode: when REDIS_SENTINEL_ADDRS and REDIS_SENTINEL_MASTER are set.
	if addrs := os.Getenv("REDIS_SENTINEL_ADDRS"); addrs != "" {
		master := os.Getenv("REDIS_SENTINEL_MASTER")
		if master == "" {
			master = "mymaster"
		}
		modes = append(modes, redisMode{
			name: "sentinel",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewFailoverClient(&redis.FailoverOptions{
					MasterName:    master,
					SentinelAddrs: splitAddrs(addrs),
				})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis sentinel: %v", err)
				}
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	return modes
}

func splitAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

func TestRedisCompat_PairRoundTrip(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			store := mustStore(t, session.NewRedisBackend(rdb, "f11compat", "rt"))
			ctx := context.Background()

			if err := store.SetSession(ctx, "t1", testUser("u1")); err != nil {
				t.Fatalf("SetSession: %v", err)
			}
			sess, err := store.Load(ctx)
			if err != nil || sess.Token != "t1" || sess.User != testUser("u1") {
				t.Fatalf("Load = %+v, %v", sess, err)
			}

			if err := store.ClearSession(ctx); err != nil {
				t.Fatalf("ClearSession: %v", err)
			}
			if store.IsAuthenticated(ctx) {
				t.Fatal("authenticated after clear")
			}
		})
	}
}

func TestRedisCompat_ConcurrentWritersKeepPairConsistent(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			store := mustStore(t, session.NewRedisBackend(rdb, "f11compat", "race"))
			ctx := context.Background()

			var wg sync.WaitGroup
			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					id := string(rune('a' + w))
					for i := 0; i < 50; i++ {
						_ = store.SetSession(ctx, "tok-"+id, testUser(id))
					}
				}(w)
			}
			wg.Wait()

			sess, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if sess.Token != "tok-"+sess.User.ID {
				t.Fatalf("mixed pair: token=%s user=%s", sess.Token, sess.User.ID)
			}
		})
	}
}

func TestRedisCompat_ProfilesDoNotCollide(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			a := mustStore(t, session.NewRedisBackend(rdb, "f11compat", "a"))
			b := mustStore(t, session.NewRedisBackend(rdb, "f11compat", "b"))

			if err := a.SetSession(ctx, "ta", testUser("a")); err != nil {
				t.Fatalf("SetSession: %v", err)
			}
			if b.IsAuthenticated(ctx) {
				t.Fatal("profile b sees profile a's session")
			}
		})
	}
}
