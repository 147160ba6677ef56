package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

type createCapsuleRequest struct {
	Name            string   `json:"name" validate:"required,max=255"`
	Description     string   `json:"description" validate:"max=2000"`
	IncludeArchived bool     `json:"includeArchived"`
	FolderIDs       []string `json:"folderIds"`
}

type updateCapsuleRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type restoreCapsuleRequest struct {
	RestoreToFolder *string `json:"restoreToFolder"`
	SkipExisting    bool    `json:"skipExisting"`
}

func ListCapsules(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		capsules, err := d.Capsules.List(r.Context(), ownerID(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, capsules)
	}
}

func CreateCapsule(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCapsuleRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		c, err := d.Capsules.Create(r.Context(), ownerID(r), domain.CapsuleInput{
			Name:            req.Name,
			Description:     req.Description,
			IncludeArchived: req.IncludeArchived,
			FolderIDs:       req.FolderIDs,
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func GetCapsule(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := d.Capsules.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func UpdateCapsule(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateCapsuleRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		c, err := d.Capsules.Update(r.Context(), ownerID(r), chi.URLParam(r, "id"), req.Name, req.Description)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeleteCapsule(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Capsules.Delete(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func RestoreCapsule(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req restoreCapsuleRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		res, err := d.Capsules.Restore(r.Context(), ownerID(r), chi.URLParam(r, "id"), domain.RestoreOptions{
			FolderID:     req.RestoreToFolder,
			SkipExisting: req.SkipExisting,
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func CapsuleStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Capsules.Stats(r.Context(), ownerID(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
