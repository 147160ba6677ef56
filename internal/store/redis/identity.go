package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/redis/go-redis/v9"
)

// CacheProfile stores the profile under its normalized ID
func (s *Store) CacheProfile(ctx context.Context, key string, profile domain.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, IdentityKey(key), data, s.identityTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

// GetCachedProfile returns the cached profile. ok is false on a miss.
func (s *Store) GetCachedProfile(ctx context.Context, key string) (domain.Profile, bool, error) {
	data, err := s.client.Get(ctx, IdentityKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Profile{}, false, nil // Cache miss
		}
		return domain.Profile{}, false, fmt.Errorf("failed to get cached profile: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return domain.Profile{}, false, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return profile, true, nil
}

// InvalidateProfile removes a cached profile
func (s *Store) InvalidateProfile(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, IdentityKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate profile: %w", err)
	}
	return nil
}

// FlushIdentities removes every cached profile
func (s *Store) FlushIdentities(ctx context.Context) (int, error) {
	return s.flushPrefix(ctx, KeyPrefixIdentity)
}
