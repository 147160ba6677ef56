package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultIdentityTTL is the default TTL for cached profiles (1 hour)
	DefaultIdentityTTL = time.Hour
	// DefaultLinkTTL is the default TTL for link statuses (7 days)
	DefaultLinkTTL = 7 * 24 * time.Hour
)

// Store handles the Redis-backed caches: identities and link statuses.
type Store struct {
	client      *redis.Client
	identityTTL time.Duration
	linkTTL     time.Duration
}

// NewStore creates a new Redis store. Zero TTLs fall back to the defaults.
func NewStore(client *redis.Client, identityTTL, linkTTL time.Duration) *Store {
	if identityTTL <= 0 {
		identityTTL = DefaultIdentityTTL
	}
	if linkTTL <= 0 {
		linkTTL = DefaultLinkTTL
	}
	return &Store{
		client:      client,
		identityTTL: identityTTL,
		linkTTL:     linkTTL,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// flushPrefix deletes every key under prefix and returns how many went away.
func (s *Store) flushPrefix(ctx context.Context, prefix string) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan %s: %w", prefix, err)
	}
	return deleted, nil
}
