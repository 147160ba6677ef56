package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerMaintenance) }

func registerMaintenance(r chi.Router, d deps.Deps) {
	admin := r.With(restricted(d)...)
	admin.Post("/fix-user-ids", handlers.FixUserIDs(d))
	admin.Post("/links/recheck", handlers.RecheckLinks(d))
	admin.Post("/cache/flush", handlers.FlushCaches(d))
}
