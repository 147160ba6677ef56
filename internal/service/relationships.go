package service

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/identity"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
)

const candidateLimit = 50

type RelationshipStore interface {
	bookmarkLookup
	CreateRelationship(ctx context.Context, r domain.Relationship) (domain.Relationship, bool, error)
	RelationshipsForBookmark(ctx context.Context, id string) ([]domain.Edge, error)
	DeleteRelationship(ctx context.Context, a, b string) (int64, error)
	BookmarksByIDs(ctx context.Context, owner string, ids []string) ([]domain.Bookmark, error)
	ListBookmarks(ctx context.Context, owner string, f domain.BookmarkFilter) ([]domain.Bookmark, error)
	SearchBookmarks(ctx context.Context, owner, q string, limit int) ([]domain.Bookmark, error)
}

type RelationshipService struct {
	store   RelationshipStore
	metrics *metrics.Collector
}

func NewRelationshipService(store RelationshipStore, m *metrics.Collector) *RelationshipService {
	return &RelationshipService{store: store, metrics: m}
}

// Create relates a to b. created is false when the edge already existed; the
// existing edge is returned in that case.
func (s *RelationshipService) Create(ctx context.Context, owner, a, b, relType string) (domain.Relationship, bool, error) {
	if a == b {
		return domain.Relationship{}, false, apperror.ValidationFailed("relatedBookmarkId", "a bookmark cannot be related to itself")
	}
	for _, id := range []string{a, b} {
		if !identity.IsValidUUID(id) {
			return domain.Relationship{}, false, apperror.ValidationFailed("bookmarkId", fmt.Sprintf("invalid bookmark ID format: %s", id))
		}
	}
	if relType == "" {
		relType = domain.RelationRelated
	}
	if !domain.IsValidRelationType(relType) {
		return domain.Relationship{}, false, apperror.ValidationFailed("relationshipType", "relationship type must be one of related, similar, dependency, reference")
	}

	if _, err := ownedBookmark(ctx, s.store, owner, a, "bookmark"); err != nil {
		return domain.Relationship{}, false, err
	}
	if _, err := ownedBookmark(ctx, s.store, owner, b, "related bookmark"); err != nil {
		return domain.Relationship{}, false, err
	}

	rel, created, err := s.store.CreateRelationship(ctx, domain.Relationship{
		BookmarkID:        a,
		RelatedBookmarkID: b,
		RelationshipType:  relType,
		CreatedBy:         owner,
	})
	if err != nil {
		return domain.Relationship{}, false, err
	}
	if created {
		s.metrics.RelationshipCreated()
	}
	return rel, created, nil
}

// ForBookmark lists the edges touching id in either direction.
func (s *RelationshipService) ForBookmark(ctx context.Context, owner, id string) ([]domain.Edge, error) {
	if _, err := ownedBookmark(ctx, s.store, owner, id, "bookmark"); err != nil {
		return nil, err
	}
	return s.store.RelationshipsForBookmark(ctx, id)
}

// Related returns the bookmarks at the far end of id's edges.
func (s *RelationshipService) Related(ctx context.Context, owner, id string) ([]domain.Bookmark, error) {
	edges, err := s.ForBookmark(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		if e.OtherID != id {
			ids = append(ids, e.OtherID)
		}
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}
	return s.store.BookmarksByIDs(ctx, owner, ids)
}

// Delete removes the edge between a and b whichever way it points.
func (s *RelationshipService) Delete(ctx context.Context, owner, a, b string) error {
	if a == "" || b == "" {
		return apperror.ValidationFailed("bookmarkId", "bookmarkId and relatedBookmarkId are required")
	}
	if _, err := ownedBookmark(ctx, s.store, owner, a, "bookmark"); err != nil {
		return err
	}
	n, err := s.store.DeleteRelationship(ctx, a, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("relationship", "")
	}
	return nil
}

// Candidates suggests bookmarks that could be related to id: matches for q
// (or the most recent ones when q is empty) minus id and its current edges.
func (s *RelationshipService) Candidates(ctx context.Context, owner, id, q string) ([]domain.Bookmark, error) {
	edges, err := s.ForBookmark(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	exclude := map[string]struct{}{id: {}}
	for _, e := range edges {
		exclude[e.OtherID] = struct{}{}
	}

	var pool []domain.Bookmark
	if q == "" {
		pool, err = s.store.ListBookmarks(ctx, owner, domain.BookmarkFilter{Limit: candidateLimit + len(exclude)})
	} else {
		pool, err = s.store.SearchBookmarks(ctx, owner, q, candidateLimit+len(exclude))
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.Bookmark, 0, len(pool))
	for _, b := range pool {
		if _, skip := exclude[b.ID]; skip {
			continue
		}
		out = append(out, b)
		if len(out) == candidateLimit {
			break
		}
	}
	return out, nil
}
