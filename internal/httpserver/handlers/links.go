package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/service"
)

type validateLinksRequest struct {
	URLs        []string `json:"urls"`
	BookmarkIDs []string `json:"bookmarkIds"`
	Force       bool     `json:"force"`
}

func ValidateLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateLinksRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		report, err := d.Links.Validate(r.Context(), ownerID(r), req.URLs, req.BookmarkIDs, req.Force)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// RecheckLinks wakes the background link validator. It answers 429 when a
// run is already pending. With ?flush=true cached statuses are dropped first
// so every URL is checked again.
func RecheckLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.LinkRecheckTrigger == nil {
			writeError(d, w, r, apperror.Unavailable("link validator is disabled"))
			return
		}
		flush, err := queryBool(r, "flush")
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		if flush != nil && *flush {
			if _, err := d.Maintenance.FlushCaches(r.Context(), service.FlushLinks); err != nil {
				writeError(d, w, r, err)
				return
			}
		}
		select {
		case d.LinkRecheckTrigger <- struct{}{}:
			d.Logger.Info("manual link recheck triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
		default:
			d.Logger.Warn("link recheck already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"status": "pending"})
		}
	}
}

type fixUserIDsRequest struct {
	FromUserID string `json:"fromUserId" validate:"required"`
}

// FixUserIDs moves rows stored under a stale user ID to the caller's profile.
func FixUserIDs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fixUserIDsRequest
		if err := decode(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		report, err := d.Maintenance.FixUserIDs(r.Context(), req.FromUserID, ownerID(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// FlushCaches empties Redis caches. ?scope is all (default), identities or links.
func FlushCaches(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := d.Maintenance.FlushCaches(r.Context(), r.URL.Query().Get("scope"))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
