package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

type trackEventRequest struct {
	EventType string         `json:"eventType" validate:"required"`
	EventData map[string]any `json:"eventData"`
}

// DNAProfile analyzes on first access or when ?refresh=true.
func DNAProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refresh, err := queryBool(r, "refresh")
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		view, err := d.DNA.Profile(r.Context(), ownerID(r), refresh != nil && *refresh)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func TrackDNAEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req trackEventRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		e, err := d.DNA.Track(r.Context(), ownerID(r), req.EventType, req.EventData)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func DNAStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.DNA.Stats(r.Context(), ownerID(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// ListRecommendations filters by ?status, active by default.
func ListRecommendations(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := d.DNA.Recommendations(r.Context(), ownerID(r), r.URL.Query().Get("status"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func ApplyRecommendation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.DNA.ApplyRecommendation(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func DismissRecommendation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.DNA.DismissRecommendation(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
