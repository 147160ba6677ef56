package service

import (
	"context"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

type bookmarkLookup interface {
	GetBookmarkByID(ctx context.Context, id string) (domain.Bookmark, error)
}

// ownedBookmark loads id across owners so a foreign bookmark answers 403
// rather than 404. label names the bookmark in the not-found message.
func ownedBookmark(ctx context.Context, store bookmarkLookup, owner, id, label string) (domain.Bookmark, error) {
	b, err := store.GetBookmarkByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.Bookmark{}, apperror.NotFound(label, "")
		}
		return domain.Bookmark{}, err
	}
	if b.UserID != owner {
		return domain.Bookmark{}, apperror.Forbidden("you do not have access to this " + label)
	}
	return b, nil
}
