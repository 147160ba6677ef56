// Package service holds the BookHub use cases. Each service declares the
// narrow store interface it needs; *sqldb.Store and *redis.Store satisfy them.
package service

import (
	"context"
	"strings"
)

// EventTracker records a DNA activity event. Failures are the tracker's
// concern: callers never fail because an event could not be written.
type EventTracker interface {
	Record(ctx context.Context, owner, eventType string, data map[string]any)
}

type nopTracker struct{}

func (nopTracker) Record(context.Context, string, string, map[string]any) {}

func orNopTracker(t EventTracker) EventTracker {
	if t == nil {
		return nopTracker{}
	}
	return t
}

// dedupe trims ids and drops blanks and repeats, keeping order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
