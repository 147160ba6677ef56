package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

type createBookmarkRequest struct {
	Title           string     `json:"title" validate:"required,max=500"`
	URL             string     `json:"url" validate:"required,max=2048"`
	Description     string     `json:"description" validate:"max=5000"`
	Notes           string     `json:"notes" validate:"max=10000"`
	FaviconURL      string     `json:"favicon_url" validate:"max=2048"`
	FolderID        *string    `json:"folder_id"`
	IsFavorite      bool       `json:"is_favorite"`
	IsArchived      bool       `json:"is_archived"`
	GoalDescription string     `json:"goal_description"`
	GoalType        string     `json:"goal_type"`
	GoalStatus      string     `json:"goal_status" validate:"omitempty,oneof=pending in_progress completed paused cancelled"`
	GoalPriority    string     `json:"goal_priority" validate:"omitempty,oneof=low medium high urgent"`
	GoalProgress    int        `json:"goal_progress" validate:"gte=0,lte=100"`
	GoalNotes       string     `json:"goal_notes"`
	DeadlineDate    *time.Time `json:"deadline_date"`
	TagIDs          []string   `json:"tagIds"`
}

func (req createBookmarkRequest) bookmark() domain.Bookmark {
	b := domain.Bookmark{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Notes:       req.Notes,
		FaviconURL:  req.FaviconURL,
		FolderID:    req.FolderID,
		IsFavorite:  req.IsFavorite,
		IsArchived:  req.IsArchived,
		BookmarkGoal: domain.BookmarkGoal{
			GoalDescription: req.GoalDescription,
			GoalType:        req.GoalType,
			GoalStatus:      req.GoalStatus,
			GoalPriority:    req.GoalPriority,
			GoalProgress:    req.GoalProgress,
			GoalNotes:       req.GoalNotes,
			DeadlineDate:    req.DeadlineDate,
		},
	}
	if b.FolderID != nil && *b.FolderID == "" {
		b.FolderID = nil
	}
	return b
}

type updateBookmarkRequest struct {
	ID              string     `json:"id"`
	URL             *string    `json:"url" validate:"omitempty,max=2048"`
	Title           *string    `json:"title" validate:"omitempty,max=500"`
	Description     *string    `json:"description" validate:"omitempty,max=5000"`
	Notes           *string    `json:"notes" validate:"omitempty,max=10000"`
	FaviconURL      *string    `json:"favicon_url" validate:"omitempty,max=2048"`
	FolderID        *string    `json:"folder_id"`
	IsFavorite      *bool      `json:"is_favorite"`
	IsArchived      *bool      `json:"is_archived"`
	GoalDescription *string    `json:"goal_description"`
	GoalType        *string    `json:"goal_type"`
	GoalStatus      *string    `json:"goal_status" validate:"omitempty,oneof=pending in_progress completed paused cancelled"`
	GoalPriority    *string    `json:"goal_priority" validate:"omitempty,oneof=low medium high urgent"`
	GoalProgress    *int       `json:"goal_progress" validate:"omitempty,gte=0,lte=100"`
	GoalNotes       *string    `json:"goal_notes"`
	DeadlineDate    *time.Time `json:"deadline_date"`
}

func (req updateBookmarkRequest) patch() domain.BookmarkPatch {
	return domain.BookmarkPatch{
		URL:             req.URL,
		Title:           req.Title,
		Description:     req.Description,
		Notes:           req.Notes,
		FaviconURL:      req.FaviconURL,
		FolderID:        req.FolderID,
		IsFavorite:      req.IsFavorite,
		IsArchived:      req.IsArchived,
		GoalDescription: req.GoalDescription,
		GoalType:        req.GoalType,
		GoalStatus:      req.GoalStatus,
		GoalPriority:    req.GoalPriority,
		GoalProgress:    req.GoalProgress,
		GoalNotes:       req.GoalNotes,
		DeadlineDate:    req.DeadlineDate,
	}
}

// ListBookmarks supports ?folderId (empty or "none" for unfiled),
// ?favorite, ?archived, ?limit and ?offset.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			f   domain.BookmarkFilter
			err error
		)
		if q := r.URL.Query(); q.Has("folderId") {
			folder := q.Get("folderId")
			if folder == "none" {
				folder = ""
			}
			f.FolderID = &folder
		}
		if f.IsFavorite, err = queryBool(r, "favorite"); err != nil {
			writeError(d, w, r, err)
			return
		}
		if f.IsArchived, err = queryBool(r, "archived"); err != nil {
			writeError(d, w, r, err)
			return
		}
		if f.Limit, err = queryInt(r, "limit"); err != nil {
			writeError(d, w, r, err)
			return
		}
		if f.Offset, err = queryInt(r, "offset"); err != nil {
			writeError(d, w, r, err)
			return
		}

		bookmarks, err := d.Bookmarks.List(r.Context(), ownerID(r), f)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, bookmarks)
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Bookmarks.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		b, err := d.Bookmarks.Create(r.Context(), ownerID(r), req.bookmark(), req.TagIDs)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

// UpdateBookmark serves PATCH /bookmarks/{id} and PUT /bookmarks with the
// id in the body.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateBookmarkRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		id := chi.URLParam(r, "id")
		if id == "" {
			id = req.ID
		}
		if id == "" {
			writeError(d, w, r, apperror.ValidationFailed("id", "id is required"))
			return
		}
		b, err := d.Bookmarks.Update(r.Context(), ownerID(r), id, req.patch())
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// DeleteBookmarks takes the id from the path, or ?id / comma-separated ?ids.
func DeleteBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := queryList(r, "ids")
		if id := chi.URLParam(r, "id"); id != "" {
			ids = []string{id}
		} else if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			writeError(d, w, r, apperror.ValidationFailed("id", "id or ids is required"))
			return
		}
		n, err := d.Bookmarks.Delete(r.Context(), ownerID(r), ids)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
	}
}

func SearchBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Bookmarks.Search(r.Context(), ownerID(r), r.URL.Query().Get("q"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type reorderRequest struct {
	SourceID string `json:"sourceId" validate:"required"`
	TargetID string `json:"targetId" validate:"required"`
	Position *int   `json:"position" validate:"required"`
}

func ReorderBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		if err := d.Bookmarks.Reorder(r.Context(), ownerID(r), req.SourceID, req.TargetID, req.Position); err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func VisitBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Bookmarks.Visit(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}
