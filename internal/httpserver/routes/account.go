package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerAccount) }

func registerAccount(r chi.Router, d deps.Deps) {
	r.Get("/preferences", handlers.GetPreferences(d))
	r.Post("/preferences", handlers.UpsertPreferences(d))
	r.Get("/profile", handlers.GetProfile(d))
	r.Post("/profile", handlers.UpdateProfile(d))
	r.Get("/analytics", handlers.Analytics(d))

	r.Post("/import", handlers.Import(d))
	r.Get("/export", handlers.Export(d))
	r.Post("/upload", handlers.Upload(d))
}
