package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SaveLinkStatus caches one check result for the revalidation window
func (s *Store) SaveLinkStatus(ctx context.Context, status domain.LinkStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal link status: %w", err)
	}
	if err := s.client.Set(ctx, LinkKey(status.URL), data, s.linkTTL).Err(); err != nil {
		return fmt.Errorf("failed to save link status: %w", err)
	}
	return nil
}

// SaveLinkStatusesMany caches several results in one pipeline (bulk operation)
func (s *Store) SaveLinkStatusesMany(ctx context.Context, statuses []domain.LinkStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, status := range statuses {
		data, err := json.Marshal(status)
		if err != nil {
			return fmt.Errorf("failed to marshal link status %s: %w", status.URL, err)
		}
		pipe.Set(ctx, LinkKey(status.URL), data, s.linkTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save link statuses: %w", err)
	}
	return nil
}

// GetLinkStatus returns the cached status of url. ok is false on a miss.
func (s *Store) GetLinkStatus(ctx context.Context, url string) (domain.LinkStatus, bool, error) {
	data, err := s.client.Get(ctx, LinkKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.LinkStatus{}, false, nil
		}
		return domain.LinkStatus{}, false, fmt.Errorf("failed to get link status: %w", err)
	}
	var status domain.LinkStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return domain.LinkStatus{}, false, fmt.Errorf("failed to unmarshal link status: %w", err)
	}
	return status, true, nil
}

// GetLinkStatuses returns the cached statuses among urls, keyed by URL.
// Missing or undecodable entries are left out.
func (s *Store) GetLinkStatuses(ctx context.Context, urls []string) (map[string]domain.LinkStatus, error) {
	out := make(map[string]domain.LinkStatus, len(urls))
	if len(urls) == 0 {
		return out, nil
	}

	keys := make([]string, len(urls))
	for i, u := range urls {
		keys[i] = LinkKey(u)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get link statuses: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var status domain.LinkStatus
		if err := json.Unmarshal([]byte(raw), &status); err != nil {
			continue
		}
		out[urls[i]] = status
	}
	return out, nil
}

// FlushLinkStatuses forces every URL to be revalidated on the next run
func (s *Store) FlushLinkStatuses(ctx context.Context) (int, error) {
	return s.flushPrefix(ctx, KeyPrefixLink)
}
