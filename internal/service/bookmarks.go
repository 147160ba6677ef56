package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
)

const (
	maxListLimit    = 500
	searchPoolLimit = 200
)

type BookmarkStore interface {
	ListBookmarks(ctx context.Context, owner string, f domain.BookmarkFilter) ([]domain.Bookmark, error)
	GetBookmark(ctx context.Context, owner, id string) (domain.Bookmark, error)
	CreateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, owner, id string, p domain.BookmarkPatch) (domain.Bookmark, error)
	DeleteBookmarks(ctx context.Context, owner string, ids []string) (int64, error)
	SearchBookmarks(ctx context.Context, owner, q string, limit int) ([]domain.Bookmark, error)
	ReorderBookmark(ctx context.Context, owner, sourceID string, position int) error
	RecordVisit(ctx context.Context, owner, id string) (domain.Bookmark, error)
	GetFolder(ctx context.Context, owner, id string) (domain.Folder, error)
	TagsByIDs(ctx context.Context, owner string, ids []string) ([]domain.Tag, error)
	AddTagsToBookmark(ctx context.Context, bookmarkID string, tagIDs []string) error
}

type BookmarkService struct {
	store   BookmarkStore
	events  EventTracker
	metrics *metrics.Collector
	log     logger.Logger
}

func NewBookmarkService(store BookmarkStore, events EventTracker, m *metrics.Collector, log logger.Logger) *BookmarkService {
	return &BookmarkService{store: store, events: orNopTracker(events), metrics: m, log: log}
}

// SearchResult is the body of GET /api/bookmarks/search.
type SearchResult struct {
	Bookmarks    []domain.Bookmark `json:"bookmarks"`
	TotalResults int               `json:"totalResults"`
}

func (s *BookmarkService) List(ctx context.Context, owner string, f domain.BookmarkFilter) ([]domain.Bookmark, error) {
	if f.Limit < 0 || f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.store.ListBookmarks(ctx, owner, f)
}

func (s *BookmarkService) Get(ctx context.Context, owner, id string) (domain.Bookmark, error) {
	return s.store.GetBookmark(ctx, owner, id)
}

// Create stores b for owner and links tagIDs. A tag that cannot be linked is
// logged and skipped.
func (s *BookmarkService) Create(ctx context.Context, owner string, b domain.Bookmark, tagIDs []string) (domain.Bookmark, error) {
	b.Title = strings.TrimSpace(b.Title)
	b.URL = strings.TrimSpace(b.URL)
	if b.Title == "" {
		return domain.Bookmark{}, apperror.ValidationFailed("title", "title is required")
	}
	if b.URL == "" {
		return domain.Bookmark{}, apperror.ValidationFailed("url", "url is required")
	}
	if !domain.IsValidURL(b.URL) {
		return domain.Bookmark{}, apperror.ValidationFailed("url", "url must be an absolute http(s) URL")
	}
	if err := validateGoal(b.GoalStatus, b.GoalPriority, &b.GoalProgress); err != nil {
		return domain.Bookmark{}, err
	}
	if err := s.checkFolder(ctx, owner, b.FolderID); err != nil {
		return domain.Bookmark{}, err
	}

	b.ID = ""
	b.UserID = owner
	b.VisitCount = 0
	b.LastVisitedAt = nil
	created, err := s.store.CreateBookmark(ctx, b)
	if err != nil {
		return domain.Bookmark{}, err
	}
	s.metrics.BookmarkCreated(1)

	if tagIDs = dedupe(tagIDs); len(tagIDs) > 0 {
		if err := s.attachTags(ctx, owner, created.ID, tagIDs); err != nil {
			s.log.Warn("attach tags on create failed",
				logger.String("bookmark_id", created.ID), logger.Error(err))
		} else if reloaded, err := s.store.GetBookmark(ctx, owner, created.ID); err == nil {
			created = reloaded
		}
	}

	s.events.Record(ctx, owner, domain.EventBookmarkAdded, map[string]any{
		"bookmark_id": created.ID,
		"url":         created.URL,
		"title":       created.Title,
	})
	return created, nil
}

func (s *BookmarkService) attachTags(ctx context.Context, owner, bookmarkID string, tagIDs []string) error {
	tags, err := s.store.TagsByIDs(ctx, owner, tagIDs)
	if err != nil {
		return err
	}
	if len(tags) != len(tagIDs) {
		return apperror.Forbidden("one or more tags do not belong to you")
	}
	return s.store.AddTagsToBookmark(ctx, bookmarkID, tagIDs)
}

func (s *BookmarkService) Update(ctx context.Context, owner, id string, p domain.BookmarkPatch) (domain.Bookmark, error) {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return domain.Bookmark{}, apperror.ValidationFailed("title", "title cannot be empty")
		}
		p.Title = &t
	}
	if p.URL != nil {
		u := strings.TrimSpace(*p.URL)
		if !domain.IsValidURL(u) {
			return domain.Bookmark{}, apperror.ValidationFailed("url", "url must be an absolute http(s) URL")
		}
		p.URL = &u
	}
	var status, priority string
	if p.GoalStatus != nil {
		status = *p.GoalStatus
	}
	if p.GoalPriority != nil {
		priority = *p.GoalPriority
	}
	if err := validateGoal(status, priority, p.GoalProgress); err != nil {
		return domain.Bookmark{}, err
	}
	if p.FolderID != nil && *p.FolderID != "" {
		if err := s.checkFolder(ctx, owner, p.FolderID); err != nil {
			return domain.Bookmark{}, err
		}
	}
	return s.store.UpdateBookmark(ctx, owner, id, p)
}

// Delete removes one or many bookmarks. It fails with not found only when
// none of ids belonged to owner.
func (s *BookmarkService) Delete(ctx context.Context, owner string, ids []string) (int64, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, apperror.ValidationFailed("id", "bookmark id is required")
	}
	n, err := s.store.DeleteBookmarks(ctx, owner, ids)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, apperror.NotFound("bookmark", "")
	}
	s.metrics.BookmarkDeleted(int(n))
	s.events.Record(ctx, owner, domain.EventBookmarkDeleted, map[string]any{
		"bookmark_ids": ids,
		"count":        n,
	})
	return n, nil
}

// Search pre-filters with LIKE, then ranks with the fuzzy scorer. Rows that
// matched only on a URL path score zero and are kept after the ranked ones.
func (s *BookmarkService) Search(ctx context.Context, owner, q string) (SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return SearchResult{}, apperror.ValidationFailed("q", "search query is required")
	}
	pool, err := s.store.SearchBookmarks(ctx, owner, q, searchPoolLimit)
	if err != nil {
		return SearchResult{}, err
	}

	ptrs := make([]*domain.Bookmark, len(pool))
	for i := range pool {
		ptrs[i] = &pool[i]
	}
	ranked := domain.RankBookmarks(q, ptrs)

	out := make([]domain.Bookmark, 0, len(pool))
	seen := make(map[string]struct{}, len(ranked))
	for _, b := range ranked {
		out = append(out, *b)
		seen[b.ID] = struct{}{}
	}
	for _, b := range pool {
		if _, ok := seen[b.ID]; !ok {
			out = append(out, b)
		}
	}

	s.events.Record(ctx, owner, domain.EventSearch, map[string]any{
		"query":   q,
		"results": len(out),
	})
	return SearchResult{Bookmarks: out, TotalResults: len(out)}, nil
}

// Reorder moves sourceID to position. targetID names the bookmark the
// source was dropped on and must exist.
func (s *BookmarkService) Reorder(ctx context.Context, owner, sourceID, targetID string, position *int) error {
	if sourceID == "" || targetID == "" || position == nil {
		return apperror.ValidationFailed("sourceId", "sourceId, targetId and position are required")
	}
	if *position < 0 {
		return apperror.ValidationFailed("position", "position must not be negative")
	}
	if _, err := s.store.GetBookmark(ctx, owner, targetID); err != nil {
		return err
	}
	return s.store.ReorderBookmark(ctx, owner, sourceID, *position)
}

func (s *BookmarkService) Visit(ctx context.Context, owner, id string) (domain.Bookmark, error) {
	b, err := s.store.RecordVisit(ctx, owner, id)
	if err != nil {
		return domain.Bookmark{}, err
	}
	s.events.Record(ctx, owner, domain.EventBookmarkVisited, map[string]any{
		"bookmark_id": b.ID,
		"url":         b.URL,
	})
	return b, nil
}

func (s *BookmarkService) checkFolder(ctx context.Context, owner string, folderID *string) error {
	if folderID == nil || *folderID == "" {
		return nil
	}
	_, err := s.store.GetFolder(ctx, owner, *folderID)
	return err
}

func validateGoal(status, priority string, progress *int) error {
	if status != "" && !domain.IsValidGoalStatus(status) {
		return apperror.ValidationFailed("goal_status", "invalid goal status")
	}
	if priority != "" && !domain.IsValidGoalPriority(priority) {
		return apperror.ValidationFailed("goal_priority", "invalid goal priority")
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		return apperror.ValidationFailed("goal_progress", "goal progress must be between 0 and 100")
	}
	return nil
}
