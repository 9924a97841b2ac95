package cache

import (
	"context"
	"fmt"
	"time"

	"varsearch/api/models"

	"github.com/go-redis/redis/v8"
)

/*
	Fingerprint-keyed result cache backed by redis.

	A missing or unreachable backend is non-fatal: the cache degrades to
	a pass-through no-op (every Get a guaranteed miss, every Put
	discarded), logged once as a warning at construction time.
	Invalidation is the caller's responsibility; entries carry no TTL.
*/

type ResultCache struct {
	rdb *redis.Client
}

func NewResultCache(cfg *models.Config) *ResultCache {
	rc := &ResultCache{}

	if cfg.Redis.Url == "" {
		fmt.Println("Warning: no redis url configured - result caching disabled")
		return rc
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Url,
		Password:    cfg.Redis.Password,
		DialTimeout: 3 * time.Second,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		fmt.Printf("Warning: unable to connect to redis host %s : %s - result caching disabled\n", cfg.Redis.Url, err)
		return rc
	}

	rc.rdb = client
	return rc
}

// Get returns the cached value for the fingerprint, or (nil, false) on a
// miss or in degraded mode.
func (rc *ResultCache) Get(ctx context.Context, fingerprint string) ([]byte, bool) {
	if rc.rdb == nil {
		return nil, false
	}

	value, err := rc.rdb.Get(ctx, fingerprint).Bytes()
	if err != nil {
		// redis.Nil and transport errors are both plain misses here
		return nil, false
	}
	return value, true
}

// Put stores the serialized result under the fingerprint; a no-op in
// degraded mode, and storage failures are logged rather than surfaced.
func (rc *ResultCache) Put(ctx context.Context, fingerprint string, value []byte) {
	if rc.rdb == nil {
		return
	}

	if err := rc.rdb.Set(ctx, fingerprint, value, 0).Err(); err != nil {
		fmt.Printf("Error caching search results : %s\n", err)
	}
}
