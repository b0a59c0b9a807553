// Package cache keeps a bounded buffer of the most recently received error
// payloads, in Redis when configured and in memory otherwise.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Entry is one received payload, as decoded from the webhook body.
type Entry map[string]any

// Buffer holds the last N received payloads, oldest first. Pushing beyond
// capacity drops the oldest entry. Implementations must be safe for
// concurrent use.
type Buffer interface {
	Push(ctx context.Context, e Entry) error
	// Recent returns up to limit of the newest entries, oldest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Len(ctx context.Context) (int, error)
	// Clear empties the buffer and returns how many entries it held.
	Clear(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Capacity() int
}

// RedisBuffer implements Buffer as a capped Redis list.
type RedisBuffer struct {
	client   *redis.Client
	key      string
	capacity int
}

// NewRedisBuffer creates a new RedisBuffer from a Redis URL.
func NewRedisBuffer(redisURL string, capacity int) (*RedisBuffer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return &RedisBuffer{client: redis.NewClient(opts), key: RecentErrorsKey(), capacity: capacity}, nil
}

func (b *RedisBuffer) Capacity() int { return b.capacity }

func (b *RedisBuffer) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBuffer) Close() error {
	return b.client.Close()
}

func (b *RedisBuffer) Push(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	pipe := b.client.TxPipeline()
	pipe.RPush(ctx, b.key, body)
	pipe.LTrim(ctx, b.key, int64(-b.capacity), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push entry: %w", err)
	}
	return nil
}

func (b *RedisBuffer) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	raw, err := b.client.LRange(ctx, b.key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (b *RedisBuffer) Len(ctx context.Context) (int, error) {
	n, err := b.client.LLen(ctx, b.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return int(n), nil
}

func (b *RedisBuffer) Clear(ctx context.Context) (int, error) {
	pipe := b.client.TxPipeline()
	n := pipe.LLen(ctx, b.key)
	pipe.Del(ctx, b.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	return int(n.Val()), nil
}
