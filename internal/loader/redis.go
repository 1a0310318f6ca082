package loader

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/specialistvlad/regioncache/internal/ctxlog"
)

// Redis loads the fields of one Redis hash. Fields are emitted in sorted
// order because HGETALL has no stable ordering.
type Redis struct {
	pool *redis.Pool
	key  string
}

// NewRedis returns a loader reading hash key through pool.
func NewRedis(pool *redis.Pool, key string) *Redis {
	return &Redis{pool: pool, key: key}
}

// NewRedisPool returns a small pool dialing addr over TCP.
func NewRedisPool(addr string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     4,
		IdleTimeout: 5 * time.Minute,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", addr)
		},
	}
}

// FetchAll implements Loader.
func (r *Redis) FetchAll(ctx context.Context) ([]Pair, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Reading Redis hash.", "key", r.key)

	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis connection: %w", err)
	}
	defer conn.Close()

	fields, err := redis.StringMap(redis.DoContext(conn, ctx, "HGETALL", r.key))
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL %s: %w", r.key, err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: k, Value: fields[k]})
	}
	logger.Debug("Redis hash read.", "key", r.key, "fields", len(pairs))
	return pairs, nil
}

// Close releases the pool's connections.
func (r *Redis) Close() error {
	return r.pool.Close()
}
