package sqldb

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

var dbSeq atomic.Int64

// newTestStore opens a private in-memory SQLite database with migrations applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory", name, dbSeq.Add(1))

	s, err := Open(context.Background(), DriverSQLite, dsn, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// withClock pins the store clock, advancing one second per call.
func withClock(s *Store, start time.Time) {
	var n atomic.Int64
	s.SetClock(func() time.Time {
		return start.Add(time.Duration(n.Add(1)) * time.Second)
	})
}

func mustProfile(t *testing.T, s *Store, id, email string) domain.Profile {
	t.Helper()
	p, err := s.EnsureProfile(context.Background(), id, email, "Test User")
	require.NoError(t, err)
	return p
}

func mustBookmark(t *testing.T, s *Store, owner, title, url string) domain.Bookmark {
	t.Helper()
	b, err := s.CreateBookmark(context.Background(), domain.Bookmark{UserID: owner, Title: title, URL: url})
	require.NoError(t, err)
	return b
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver string
		in     string
		want   string
	}{
		{DriverSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{DriverPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{DriverPostgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		s := &Store{driver: tt.driver}
		if got := s.rebind(tt.in); got != tt.want {
			t.Errorf("rebind(%q) on %s = %q, want %q", tt.in, tt.driver, got, tt.want)
		}
	}
}

func TestSqliteDSN(t *testing.T) {
	require.Equal(t,
		"file:x.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		sqliteDSN("file:x.db"))
	require.True(t, strings.HasPrefix(sqliteDSN("file:x?mode=memory"), "file:x?mode=memory&_pragma="))
	require.Equal(t, "file:x?_pragma=foreign_keys(0)", sqliteDSN("file:x?_pragma=foreign_keys(0)"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever", Options{})
	require.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.migrate(ctx))

	applied, err := s.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"0001_init.up.sql"}, applied)
}

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "", placeholders(0))
	require.Equal(t, "?", placeholders(1))
	require.Equal(t, "?, ?, ?", placeholders(3))
}
