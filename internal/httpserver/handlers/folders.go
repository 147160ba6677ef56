package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

type createFolderRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=2000"`
	Color       string  `json:"color" validate:"max=32"`
	ParentID    *string `json:"parent_id"`
}

type updateFolderRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Color       *string `json:"color" validate:"omitempty,max=32"`
}

type moveFolderRequest struct {
	ParentID *string `json:"parentId"`
}

// ListFolders returns every folder, the children of ?parentId ("root" or
// empty for top-level folders) or the folders whose name matches ?q.
func ListFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			folders []domain.Folder
			err     error
			q       = r.URL.Query()
		)
		switch {
		case q.Get("q") != "":
			folders, err = d.Folders.Search(r.Context(), ownerID(r), q.Get("q"))
		case q.Has("parentId"):
			var parent *string
			if p := q.Get("parentId"); p != "" && p != "root" {
				parent = &p
			}
			folders, err = d.Folders.Children(r.Context(), ownerID(r), parent)
		default:
			folders, err = d.Folders.List(r.Context(), ownerID(r))
		}
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, folders)
	}
}

func GetFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := d.Folders.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

func CreateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFolderRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		f, err := d.Folders.Create(r.Context(), ownerID(r), domain.Folder{
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
			ParentID:    req.ParentID,
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	}
}

func UpdateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateFolderRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		f, err := d.Folders.Update(r.Context(), ownerID(r), chi.URLParam(r, "id"), domain.FolderPatch{
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

func DeleteFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Folders.Delete(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// MoveFolder re-parents {id}; a null or missing parentId moves it to the root.
func MoveFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveFolderRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		if req.ParentID != nil && *req.ParentID == "" {
			req.ParentID = nil
		}
		f, err := d.Folders.Move(r.Context(), ownerID(r), chi.URLParam(r, "id"), req.ParentID)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

func FolderPath(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := d.Folders.Path(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, path)
	}
}
