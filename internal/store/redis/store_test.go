package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Hour, 7*24*time.Hour), mr
}

func TestKeys(t *testing.T) {
	if got := IdentityKey("abc"); got != "bookhub:identity:abc" {
		t.Errorf("IdentityKey = %q", got)
	}

	k1 := LinkKey("https://example.com")
	k2 := LinkKey("https://example.com/")
	if !strings.HasPrefix(k1, KeyPrefixLink) || len(k1) != len(KeyPrefixLink)+32 {
		t.Errorf("LinkKey = %q", k1)
	}
	if k1 == k2 {
		t.Error("distinct URLs must map to distinct keys")
	}
	if LinkKey("https://example.com") != k1 {
		t.Error("LinkKey must be deterministic")
	}

	if IdentityKey("u-1") != "bookhub:identity:u-1" {
		t.Errorf("IdentityKey = %q", IdentityKey("u-1"))
	}
}

func TestProfileCache(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.GetCachedProfile(ctx, "u-1"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	p := domain.Profile{ID: "p-1", Email: "x@example.com", FullName: "X"}
	if err := store.CacheProfile(ctx, "u-1", p); err != nil {
		t.Fatalf("CacheProfile failed: %v", err)
	}

	got, ok, err := store.GetCachedProfile(ctx, "u-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.ID != "p-1" || got.Email != "x@example.com" {
		t.Errorf("unexpected profile %+v", got)
	}

	if ttl := mr.TTL(IdentityKey("u-1")); ttl != time.Hour {
		t.Errorf("expected 1h TTL, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := store.GetCachedProfile(ctx, "u-1"); ok {
		t.Error("expected expiry after TTL")
	}

	_ = store.CacheProfile(ctx, "u-2", p)
	if err := store.InvalidateProfile(ctx, "u-2"); err != nil {
		t.Fatalf("InvalidateProfile failed: %v", err)
	}
	if _, ok, _ := store.GetCachedProfile(ctx, "u-2"); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestLinkStatusCache(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	ok := domain.LinkStatus{URL: "https://ok.example", IsValid: true, StatusCode: 200, CheckedAt: now}
	broken := domain.LinkStatus{URL: "https://broken.example", StatusCode: 404, Error: "HTTP 404 Not Found", CheckedAt: now}

	if err := store.SaveLinkStatus(ctx, ok); err != nil {
		t.Fatalf("SaveLinkStatus failed: %v", err)
	}
	if err := store.SaveLinkStatusesMany(ctx, []domain.LinkStatus{broken}); err != nil {
		t.Fatalf("SaveLinkStatusesMany failed: %v", err)
	}

	got, hit, err := store.GetLinkStatus(ctx, ok.URL)
	if err != nil || !hit || !got.IsValid {
		t.Fatalf("GetLinkStatus = %+v, %v, %v", got, hit, err)
	}

	all, err := store.GetLinkStatuses(ctx, []string{ok.URL, broken.URL, "https://unknown.example"})
	if err != nil {
		t.Fatalf("GetLinkStatuses failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 cached statuses, got %d", len(all))
	}
	if all[broken.URL].Error != "HTTP 404 Not Found" {
		t.Errorf("unexpected broken status %+v", all[broken.URL])
	}

	if ttl := mr.TTL(LinkKey(ok.URL)); ttl != 7*24*time.Hour {
		t.Errorf("expected 7d TTL, got %v", ttl)
	}

	n, err := store.FlushLinkStatuses(ctx)
	if err != nil || n != 2 {
		t.Fatalf("FlushLinkStatuses = %d, %v", n, err)
	}
	if _, hit, _ := store.GetLinkStatus(ctx, ok.URL); hit {
		t.Error("expected miss after flush")
	}
}

func TestFlushIdentitiesKeepsLinks(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_ = store.CacheProfile(ctx, "a", domain.Profile{ID: "a"})
	_ = store.CacheProfile(ctx, "b", domain.Profile{ID: "b"})
	_ = store.SaveLinkStatus(ctx, domain.LinkStatus{URL: "https://x.example"})

	n, err := store.FlushIdentities(ctx)
	if err != nil || n != 2 {
		t.Fatalf("FlushIdentities = %d, %v", n, err)
	}
	if _, hit, _ := store.GetLinkStatus(ctx, "https://x.example"); !hit {
		t.Error("link statuses must survive an identity flush")
	}
}
