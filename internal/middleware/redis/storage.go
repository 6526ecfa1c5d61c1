// Package redis contains cache storage shared between service instances.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanCount = 100

// Storage keeps cached content in redis; expiration is handled by redis itself.
type Storage struct {
	c redis.UniversalClient
}

// NewStorage creates new instance of Storage.
func NewStorage(c redis.UniversalClient) *Storage {
	return &Storage{c: c}
}

// Get ...
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get: %w", err)
	}

	if b == nil {
		b = []byte{}
	}

	return b, nil
}

// Set ...
func (s *Storage) Set(ctx context.Context, key string, content []byte, ttl time.Duration) error {
	if err := s.c.Set(ctx, key, content, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set: %w", err)
	}

	return nil
}

// DeletePrefix deletes keys with prefix. Every master is scanned when the client is a cluster client.
func (s *Storage) DeletePrefix(ctx context.Context, prefix string) error {
	if c, ok := s.c.(*redis.ClusterClient); ok {
		return c.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error {
			return deletePrefix(ctx, c, prefix)
		})
	}

	return deletePrefix(ctx, s.c, prefix)
}

// deletePrefix deletes keys one by one since keys of a cluster node may belong to different slots.
func deletePrefix(ctx context.Context, c redis.Cmdable, prefix string) error {
	var keys []string

	it := c.Scan(ctx, 0, prefix+"*", scanCount).Iterator()
	for it.Next(ctx) {
		keys = append(keys, it.Val())
	}

	if err := it.Err(); err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if _, err := c.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Del(ctx, k)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	return nil
}

// Ping ...
func (s *Storage) Ping(ctx context.Context) error {
	return s.c.Ping(ctx).Err()
}
