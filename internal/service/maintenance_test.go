package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/identity"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/store/redis"
)

func TestFixUserIDs(t *testing.T) {
	store := newStore(t)
	cache, mr := newCache(t)
	ctx := context.Background()

	// Rows written before normalization carry the raw provider ID.
	_, err := store.EnsureProfile(ctx, "legacy-raw", "", "Legacy")
	require.NoError(t, err)
	normalized := newOwner(t, store, "legacy-raw")
	owner := newOwner(t, store, "me")

	_, err = store.CreateBookmark(ctx, domain.Bookmark{UserID: "legacy-raw", Title: "A", URL: "https://a.example"})
	require.NoError(t, err)
	_, err = store.CreateBookmark(ctx, domain.Bookmark{UserID: normalized, Title: "B", URL: "https://b.example"})
	require.NoError(t, err)
	require.NoError(t, cache.CacheProfile(ctx, normalized, domain.Profile{ID: normalized}))

	svc := NewMaintenanceService(store, cache, logger.NewNop())

	_, err = svc.FixUserIDs(ctx, " ", owner)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	report, err := svc.FixUserIDs(ctx, "legacy-raw", owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy-raw", identity.NormalizeUserID("legacy-raw")}, report.FromUserIDs)
	assert.EqualValues(t, 2, report.Updated["bookmarks"])
	assert.EqualValues(t, 2, report.Total)
	assert.False(t, mr.Exists(redis.IdentityKey(normalized)))

	list, err := store.ListBookmarks(ctx, owner, domain.BookmarkFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.FixUserIDs(ctx, owner, owner)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestFlushCaches(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.CacheProfile(ctx, "a", domain.Profile{ID: "a"}))
	require.NoError(t, cache.SaveLinkStatusesMany(ctx, []domain.LinkStatus{{URL: "https://a.example", IsValid: true}}))

	svc := NewMaintenanceService(newStore(t), cache, logger.NewNop())

	_, err := svc.FlushCaches(ctx, "everything")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	report, err := svc.FlushCaches(ctx, "identities")
	require.NoError(t, err)
	assert.Equal(t, FlushReport{Identities: 1}, report)
	assert.True(t, mr.Exists(redis.LinkKey("https://a.example")))

	report, err = svc.FlushCaches(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, FlushReport{LinkStatuses: 1}, report)

	_, err = NewMaintenanceService(newStore(t), nil, logger.NewNop()).FlushCaches(ctx, "all")
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestFixUserIDs_ConflictMovesNothing(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.EnsureProfile(ctx, "legacy-raw", "", "Legacy")
	require.NoError(t, err)
	normalized := newOwner(t, store, "legacy-raw")
	owner := newOwner(t, store, "me")

	_, err = store.CreateBookmark(ctx, domain.Bookmark{UserID: "legacy-raw", Title: "A", URL: "https://a.example"})
	require.NoError(t, err)
	_, err = store.CreateTag(ctx, domain.Tag{UserID: normalized, Name: "dup"})
	require.NoError(t, err)
	_, err = store.CreateTag(ctx, domain.Tag{UserID: owner, Name: "dup"})
	require.NoError(t, err)

	svc := NewMaintenanceService(store, nil, logger.NewNop())
	_, err = svc.FixUserIDs(ctx, "legacy-raw", owner)
	require.ErrorIs(t, err, apperror.ErrConflict)

	left, err := store.ListBookmarks(ctx, "legacy-raw", domain.BookmarkFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
