package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/activecm/ctiview/util"
	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint passed to SCAN
const scanBatch = 100

type (
	// Redis is a KeyValue backed by a redis server. Every key is namespaced
	// with prefix so the store can share a database with other tools.
	Redis struct {
		client *redis.Client
		prefix string
	}
)

// DialRedis connects to the server described by redisURL and verifies the
// connection with a PING
func DialRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL %q: %w", redisURL, err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Get returns the value stored at key
func (r *Redis) Get(key string) ([]byte, bool, error) {
	value, err := r.client.Get(context.Background(), r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set replaces the value stored at key
func (r *Redis) Set(key string, value []byte) error {
	return r.client.Set(context.Background(), r.prefix+key, value, 0).Err()
}

// Remove deletes key if present
func (r *Redis) Remove(key string) error {
	return r.client.Del(context.Background(), r.prefix+key).Err()
}

// Keys lists every key under the prefix in SCAN order
func (r *Redis) Keys() ([]string, error) {
	ctx := context.Background()
	// SCAN may return a key more than once
	seen := util.NewCache()
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", scanBatch).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range batch {
			if seen.Lookup(key) {
				continue
			}
			keys = append(keys, strings.TrimPrefix(key, r.prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Close releases the underlying connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
