package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
)

const pingTimeout = 2 * time.Second

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports every backend and the resulting overall mode.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"database":      checkDatabase(r.Context(), d),
			"cache":         checkCache(r.Context(), d),
			"uploads":       optional(d.Uploader != nil, "uploads-disabled"),
			"linkValidator": optional(d.LinkRecheckTrigger != nil, "background-link-checks-disabled"),
			"auth":          authStatus(d),
		}
		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if db, ok := components["database"]; ok && !db.OK {
		return "critical"
	}
	if cache, ok := components["cache"]; ok && !cache.OK {
		return "degraded"
	}
	return "operational"
}

func checkDatabase(ctx context.Context, d deps.Deps) componentStatus {
	if d.DB == nil {
		return componentStatus{OK: false, Mode: "down", Error: "not initialized"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := d.DB.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: "down", Impact: "all-api-requests-fail", Error: "unreachable"}
	}
	return componentStatus{OK: true, Mode: d.DBDriver}
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.Cache == nil {
		return componentStatus{OK: true, Mode: "disabled", Impact: "identity-and-link-caches-off"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := d.Cache.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: "degraded", Impact: "identity-and-link-caches-off", Error: "unreachable"}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}

func optional(enabled bool, impact string) componentStatus {
	if !enabled {
		return componentStatus{OK: true, Mode: "disabled", Impact: impact}
	}
	return componentStatus{OK: true, Mode: "enabled"}
}

func authStatus(d deps.Deps) componentStatus {
	switch {
	case d.Tokens != nil && d.DemoMode:
		return componentStatus{OK: true, Mode: "jwt+demo"}
	case d.Tokens != nil:
		return componentStatus{OK: true, Mode: "jwt"}
	default:
		return componentStatus{OK: true, Mode: "demo"}
	}
}
