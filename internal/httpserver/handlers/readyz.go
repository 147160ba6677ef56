package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Readyz fails only when the database is unreachable. A missing or broken
// cache degrades the service but keeps it ready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db := checkDatabase(r.Context(), d)
		cache := checkCache(r.Context(), d)

		resp := readyzResponse{Ready: db.OK, Database: "up", Cache: cache.Mode}
		if !db.OK {
			resp.Database = "down"
		}
		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, status, resp)
	}
}
