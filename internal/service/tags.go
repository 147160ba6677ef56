package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type TagStore interface {
	bookmarkLookup
	ListTags(ctx context.Context, owner string) ([]domain.Tag, error)
	GetTagByName(ctx context.Context, owner, name string) (domain.Tag, error)
	TagsByIDs(ctx context.Context, owner string, ids []string) ([]domain.Tag, error)
	CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error)
	DeleteTag(ctx context.Context, owner, id string) error
	AddTagsToBookmark(ctx context.Context, bookmarkID string, tagIDs []string) error
	RemoveTagsFromBookmark(ctx context.Context, bookmarkID string, tagIDs []string) (int64, error)
	BookmarkTags(ctx context.Context, bookmarkID string) ([]domain.Tag, error)
}

type TagService struct {
	store  TagStore
	events EventTracker
}

func NewTagService(store TagStore, events EventTracker) *TagService {
	return &TagService{store: store, events: orNopTracker(events)}
}

func (s *TagService) List(ctx context.Context, owner string) ([]domain.Tag, error) {
	return s.store.ListTags(ctx, owner)
}

func (s *TagService) GetByName(ctx context.Context, owner, name string) (domain.Tag, error) {
	return s.store.GetTagByName(ctx, owner, name)
}

// Create returns the existing tag when owner already has one by that name.
func (s *TagService) Create(ctx context.Context, owner, name, color string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, apperror.ValidationFailed("name", "tag name is required")
	}
	if color != "" && !hexColor.MatchString(color) {
		return domain.Tag{}, apperror.ValidationFailed("color", "color must be a hex value like #3B82F6")
	}
	return s.store.CreateTag(ctx, domain.Tag{UserID: owner, Name: name, Color: color})
}

func (s *TagService) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteTag(ctx, owner, id)
}

func (s *TagService) BookmarkTags(ctx context.Context, owner, bookmarkID string) ([]domain.Tag, error) {
	if _, err := ownedBookmark(ctx, s.store, owner, bookmarkID, "bookmark"); err != nil {
		return nil, err
	}
	return s.store.BookmarkTags(ctx, bookmarkID)
}

// AddToBookmark links tagIDs to bookmarkID. Linking twice is a no-op.
func (s *TagService) AddToBookmark(ctx context.Context, owner, bookmarkID string, tagIDs []string) ([]domain.Tag, error) {
	tags, err := s.checkTagged(ctx, owner, bookmarkID, tagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddTagsToBookmark(ctx, bookmarkID, tagIDsOf(tags)); err != nil {
		return nil, err
	}
	for _, t := range tags {
		s.events.Record(ctx, owner, domain.EventTagAdded, map[string]any{
			"bookmark_id": bookmarkID,
			"tag_id":      t.ID,
			"tag_name":    t.Name,
		})
	}
	return s.store.BookmarkTags(ctx, bookmarkID)
}

func (s *TagService) RemoveFromBookmark(ctx context.Context, owner, bookmarkID string, tagIDs []string) ([]domain.Tag, error) {
	tags, err := s.checkTagged(ctx, owner, bookmarkID, tagIDs)
	if err != nil {
		return nil, err
	}
	n, err := s.store.RemoveTagsFromBookmark(ctx, bookmarkID, tagIDsOf(tags))
	if err != nil {
		return nil, err
	}
	if n > 0 {
		for _, t := range tags {
			s.events.Record(ctx, owner, domain.EventTagRemoved, map[string]any{
				"bookmark_id": bookmarkID,
				"tag_id":      t.ID,
				"tag_name":    t.Name,
			})
		}
	}
	return s.store.BookmarkTags(ctx, bookmarkID)
}

func (s *TagService) checkTagged(ctx context.Context, owner, bookmarkID string, tagIDs []string) ([]domain.Tag, error) {
	tagIDs = dedupe(tagIDs)
	if len(tagIDs) == 0 {
		return nil, apperror.ValidationFailed("tagIds", "tagIds must be a non-empty array")
	}
	if _, err := ownedBookmark(ctx, s.store, owner, bookmarkID, "bookmark"); err != nil {
		return nil, err
	}
	tags, err := s.store.TagsByIDs(ctx, owner, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, apperror.Forbidden("one or more tags do not belong to you")
	}
	return tags, nil
}

func tagIDsOf(tags []domain.Tag) []string {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
