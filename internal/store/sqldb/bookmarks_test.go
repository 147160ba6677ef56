package sqldb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/identity"
)

func ptr[T any](v T) *T { return &v }

func TestBookmarkCRUD(t *testing.T) {
	s := newTestStore(t)
	withClock(s, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	owner := mustProfile(t, s, identity.NormalizeUserID("owner"), "o@example.com").ID
	other := mustProfile(t, s, identity.NormalizeUserID("other"), "x@example.com").ID

	folder, err := s.CreateFolder(ctx, domain.Folder{UserID: owner, Name: "Dev"})
	require.NoError(t, err)

	b, err := s.CreateBookmark(ctx, domain.Bookmark{
		UserID:   owner,
		Title:    "Go",
		URL:      "https://go.dev",
		FolderID: &folder.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Dev", b.FolderName)
	assert.Equal(t, domain.GoalPending, b.GoalStatus)
	assert.Equal(t, domain.PriorityMedium, b.GoalPriority)
	assert.Nil(t, b.LastVisitedAt)

	_, err = s.GetBookmark(ctx, other, b.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	updated, err := s.UpdateBookmark(ctx, owner, b.ID, domain.BookmarkPatch{
		Title:        ptr("Go Dev"),
		IsFavorite:   ptr(true),
		FolderID:     ptr(""),
		GoalProgress: ptr(40),
		DeadlineDate: ptr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Dev", updated.Title)
	assert.True(t, updated.IsFavorite)
	assert.Nil(t, updated.FolderID)
	assert.Equal(t, 40, updated.GoalProgress)
	require.NotNil(t, updated.DeadlineDate)
	assert.True(t, updated.DeadlineDate.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	_, err = s.UpdateBookmark(ctx, other, b.ID, domain.BookmarkPatch{Title: ptr("stolen")})
	require.ErrorIs(t, err, apperror.ErrNotFound)

	visited, err := s.RecordVisit(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, visited.VisitCount)
	require.NotNil(t, visited.LastVisitedAt)

	n, err := s.DeleteBookmarks(ctx, other, []string{b.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.DeleteBookmarks(ctx, owner, []string{b.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.GetBookmark(ctx, owner, b.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListBookmarks_FilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	withClock(s, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	owner := mustProfile(t, s, identity.NormalizeUserID("owner"), "").ID

	first := mustBookmark(t, s, owner, "first", "https://a.example")
	second := mustBookmark(t, s, owner, "second", "https://b.example")
	third := mustBookmark(t, s, owner, "third", "https://c.example")
	_, err := s.UpdateBookmark(ctx, owner, second.ID, domain.BookmarkPatch{IsFavorite: ptr(true)})
	require.NoError(t, err)

	all, err := s.ListBookmarks(ctx, owner, domain.BookmarkFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, bookmarkIDs(all))

	favs, err := s.ListBookmarks(ctx, owner, domain.BookmarkFilter{IsFavorite: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, bookmarkIDs(favs))

	page, err := s.ListBookmarks(ctx, owner, domain.BookmarkFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, bookmarkIDs(page))

	unfiled, err := s.ListBookmarks(ctx, owner, domain.BookmarkFilter{FolderID: ptr("")})
	require.NoError(t, err)
	assert.Len(t, unfiled, 3)
}

func TestReorderBookmark(t *testing.T) {
	s := newTestStore(t)
	withClock(s, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	owner := mustProfile(t, s, identity.NormalizeUserID("owner"), "").ID

	a := mustBookmark(t, s, owner, "a", "https://a.example")
	b := mustBookmark(t, s, owner, "b", "https://b.example")
	c := mustBookmark(t, s, owner, "c", "https://c.example")

	require.NoError(t, s.ReorderBookmark(ctx, owner, a.ID, 0))
	require.NoError(t, s.ReorderBookmark(ctx, owner, b.ID, 0))

	list, err := s.ListBookmarks(ctx, owner, domain.BookmarkFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, bookmarkIDs(list))
	require.NotNil(t, list[1].Position)
	assert.Equal(t, 1, *list[1].Position)

	err = s.ReorderBookmark(ctx, owner, "missing", 0)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSearchBookmarks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustProfile(t, s, identity.NormalizeUserID("owner"), "").ID
	other := mustProfile(t, s, identity.NormalizeUserID("other"), "").ID

	mustBookmark(t, s, owner, "Golang Weekly", "https://golangweekly.com")
	mustBookmark(t, s, owner, "Rust Book", "https://doc.rust-lang.org/book")
	mustBookmark(t, s, other, "Golang Other", "https://go.example")
	_, err := s.CreateBookmark(ctx, domain.Bookmark{UserID: owner, Title: "100% pure", URL: "https://pct.example"})
	require.NoError(t, err)

	res, err := s.SearchBookmarks(ctx, owner, "GOLANG", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Golang Weekly", res[0].Title)

	res, err = s.SearchBookmarks(ctx, owner, "%", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "100% pure", res[0].Title)
}

func TestExistingURLsAndLinkTargets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustProfile(t, s, identity.NormalizeUserID("owner"), "").ID

	a := mustBookmark(t, s, owner, "a", "https://a.example")
	b := mustBookmark(t, s, owner, "b", "https://b.example")
	_, err := s.UpdateBookmark(ctx, owner, b.ID, domain.BookmarkPatch{IsArchived: ptr(true)})
	require.NoError(t, err)

	urls, err := s.ExistingURLs(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, a.ID, urls["https://a.example"])
	assert.Len(t, urls, 2)

	targets, err := s.LinkTargetsPage(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, a.ID, targets[0].BookmarkID)

	targets, err = s.LinkTargetsPage(ctx, a.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func bookmarkIDs(bs []domain.Bookmark) []string {
	ids := make([]string, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return ids
}
