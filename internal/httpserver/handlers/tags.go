package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

type createTagRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"max=32"`
}

type tagIDsRequest struct {
	TagIDs []string `json:"tagIds" validate:"required,dive,required"`
}

// ListTags returns every tag, or the single tag named by ?name.
func ListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if name := r.URL.Query().Get("name"); name != "" {
			t, err := d.Tags.GetByName(r.Context(), ownerID(r), name)
			if err != nil {
				writeError(d, w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, t)
			return
		}
		tags, err := d.Tags.List(r.Context(), ownerID(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tags)
	}
}

func CreateTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTagRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		t, err := d.Tags.Create(r.Context(), ownerID(r), req.Name, req.Color)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func DeleteTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Tags.Delete(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func BookmarkTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Tags.BookmarkTags(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tags)
	}
}

func AddBookmarkTags(d deps.Deps) http.HandlerFunc {
	return bookmarkTagsChange(d, d.Tags.AddToBookmark)
}

func RemoveBookmarkTags(d deps.Deps) http.HandlerFunc {
	return bookmarkTagsChange(d, d.Tags.RemoveFromBookmark)
}

type tagChange func(ctx context.Context, owner, bookmarkID string, tagIDs []string) ([]domain.Tag, error)

// bookmarkTagsChange answers with the bookmark's tags after the change.
func bookmarkTagsChange(d deps.Deps, apply tagChange) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagIDsRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		tags, err := apply(r.Context(), ownerID(r), chi.URLParam(r, "id"), req.TagIDs)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tags)
	}
}
