package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

type createRelationshipRequest struct {
	BookmarkID        string `json:"bookmarkId"`
	RelatedBookmarkID string `json:"relatedBookmarkId" validate:"required"`
	RelationshipType  string `json:"relationshipType"`
}

type relationshipResponse struct {
	Relationship domain.Relationship `json:"relationship"`
	Created      bool                `json:"created"`
	Message      string              `json:"message,omitempty"`
}

// ListRelationships lists the edges touching ?bookmarkId.
func ListRelationships(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("bookmarkId")
		if id == "" {
			writeError(d, w, r, apperror.ValidationFailed("bookmarkId", "bookmarkId is required"))
			return
		}
		edges, err := d.Relationships.ForBookmark(r.Context(), ownerID(r), id)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, edges)
	}
}

// CreateRelationship serves POST /bookmark-relationships and
// POST /bookmarks/{id}/related. A duplicate edge answers 200 with the
// existing relationship.
func CreateRelationship(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRelationshipRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		if id := chi.URLParam(r, "id"); id != "" {
			req.BookmarkID = id
		}
		if req.BookmarkID == "" {
			writeError(d, w, r, apperror.ValidationFailed("bookmarkId", "bookmarkId is required"))
			return
		}

		rel, created, err := d.Relationships.Create(r.Context(), ownerID(r), req.BookmarkID, req.RelatedBookmarkID, req.RelationshipType)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		if !created {
			writeJSON(w, http.StatusOK, relationshipResponse{Relationship: rel, Message: "relationship already exists"})
			return
		}
		writeJSON(w, http.StatusCreated, relationshipResponse{Relationship: rel, Created: true})
	}
}

// DeleteRelationship removes the edge between ?bookmarkId and
// ?relatedBookmarkId in either direction.
func DeleteRelationship(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		a, b := q.Get("bookmarkId"), q.Get("relatedBookmarkId")
		if a == "" || b == "" {
			writeError(d, w, r, apperror.ValidationFailed("bookmarkId", "bookmarkId and relatedBookmarkId are required"))
			return
		}
		if err := d.Relationships.Delete(r.Context(), ownerID(r), a, b); err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func RelatedBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarks, err := d.Relationships.Related(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, bookmarks)
	}
}

// RelationshipCandidates lists bookmarks matching ?q that could be related to {id}.
func RelationshipCandidates(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarks, err := d.Relationships.Candidates(r.Context(), ownerID(r), chi.URLParam(r, "id"), r.URL.Query().Get("q"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, bookmarks)
	}
}
