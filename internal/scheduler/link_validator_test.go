package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
	"github.com/MrSnakeDoc/bookhub/internal/store/redis"
)

type pagedTargets struct {
	targets []domain.LinkTarget // sorted by BookmarkID
	calls   int
}

func (p *pagedTargets) LinkTargetsPage(_ context.Context, afterID string, limit int) ([]domain.LinkTarget, error) {
	p.calls++
	var out []domain.LinkTarget
	for _, t := range p.targets {
		if t.BookmarkID > afterID && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

type recordingChecker struct {
	mu      sync.Mutex
	checked []string
}

func (c *recordingChecker) CheckMany(_ context.Context, urls []string) []domain.LinkStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.LinkStatus, len(urls))
	for i, u := range urls {
		c.checked = append(c.checked, u)
		out[i] = domain.LinkStatus{URL: u, IsValid: u != "https://dead.example", StatusCode: 200, CheckedAt: time.Now().UTC()}
		if !out[i].IsValid {
			out[i].StatusCode = 404
			out[i].Error = "HTTP 404 Not Found"
		}
	}
	return out
}

func (c *recordingChecker) urls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.checked...)
}

func targets(n int) []domain.LinkTarget {
	out := make([]domain.LinkTarget, n)
	for i := range out {
		out[i] = domain.LinkTarget{
			BookmarkID: fmt.Sprintf("b%03d", i),
			UserID:     "u1",
			URL:        fmt.Sprintf("https://site%d.example", i%3),
		}
	}
	out[n-1].URL = "https://dead.example"
	return out
}

func newLinkCache(t *testing.T) *redis.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewStore(client, time.Hour, 24*time.Hour)
}

func TestLinkValidator_Run(t *testing.T) {
	source := &pagedTargets{targets: targets(7)}
	checker := &recordingChecker{}
	cache := newLinkCache(t)

	lv := NewLinkValidator(source, checker, cache, metrics.New(), logger.NewNop(), time.Hour, nil)
	lv.pageSize = 3

	rep, err := lv.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, rep.Scanned)
	assert.Equal(t, 1, rep.Broken)
	assert.Equal(t, 3, source.calls) // 3 + 3 + 1
	assert.Contains(t, checker.urls(), "https://dead.example")

	// everything is cached now, a second pass checks nothing
	before := len(checker.urls())
	rep, err = lv.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Checked)
	assert.Equal(t, before, len(checker.urls()))
	assert.Positive(t, rep.Fresh)

	st, ok, err := cache.GetLinkStatus(context.Background(), "https://dead.example")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, st.IsValid)
}

func TestLinkValidator_DedupesWithinPage(t *testing.T) {
	source := &pagedTargets{targets: []domain.LinkTarget{
		{BookmarkID: "a", UserID: "u1", URL: "https://same.example"},
		{BookmarkID: "b", UserID: "u2", URL: "https://same.example"},
	}}
	checker := &recordingChecker{}
	lv := NewLinkValidator(source, checker, nil, nil, logger.NewNop(), time.Hour, nil)

	rep, err := lv.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Scanned)
	assert.Equal(t, 1, rep.Checked)
	assert.Equal(t, []string{"https://same.example"}, checker.urls())
}

func TestLinkValidator_ManualTrigger(t *testing.T) {
	source := &pagedTargets{targets: targets(2)}
	checker := &recordingChecker{}
	trigger := make(chan struct{}, 1)
	lv := NewLinkValidator(source, checker, nil, nil, logger.NewNop(), time.Hour, trigger)

	lv.Start(context.Background())
	defer lv.Stop()

	trigger <- struct{}{}
	require.Eventually(t, func() bool {
		return len(checker.urls()) >= 4 // initial pass + triggered pass
	}, 2*time.Second, 10*time.Millisecond)
}
