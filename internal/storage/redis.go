package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
)

// DefaultRedisPrefix namespaces document hashes in a shared Redis.
const DefaultRedisPrefix = "scribe:doc:"

// Redis stores each document as a hash with data, checksum and updated_at
// fields.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redisURL and checks the connection.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: connect to redis: %w", err)
	}
	return NewRedisWithClient(client, DefaultRedisPrefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.HGet(ctx, r.key(key), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("storage: get %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := r.client.HSet(ctx, r.key(key),
		"data", data,
		"checksum", checksum.Sum(data),
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("storage: delete %s: %w", key, apperr.ErrNotFound)
	}
	return nil
}

func (r *Redis) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		vals, err := r.client.HMGet(ctx, full, "checksum", "updated_at").Result()
		if err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", full, err)
		}
		e := Entry{Key: strings.TrimPrefix(full, r.prefix)}
		if s, ok := vals[0].(string); ok {
			e.Checksum = s
		}
		if s, ok := vals[1].(string); ok {
			e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, s)
		}
		out = append(out, e)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
