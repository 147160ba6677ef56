package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

type preferencesRequest struct {
	Theme    *string `json:"theme"`
	ViewMode *string `json:"view_mode"`
}

type profileRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"max=255"`
}

func GetPreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := d.Preferences.Get(r.Context(), ownerID(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func UpsertPreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req preferencesRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		p, err := d.Preferences.Upsert(r.Context(), ownerID(r), req.Theme, req.ViewMode)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func GetProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := d.Profiles.Get(r.Context(), ownerID(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func UpdateProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		p, err := d.Profiles.Update(r.Context(), ownerID(r), req.Email, req.FullName)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
