package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerCapsules) }

func registerCapsules(r chi.Router, d deps.Deps) {
	r.Route("/time-capsules", func(r chi.Router) {
		r.Get("/", handlers.ListCapsules(d))
		r.Post("/", handlers.CreateCapsule(d))
		r.Get("/stats", handlers.CapsuleStats(d))
		r.Get("/{id}", handlers.GetCapsule(d))
		r.Put("/{id}", handlers.UpdateCapsule(d))
		r.Delete("/{id}", handlers.DeleteCapsule(d))
		r.Post("/{id}/restore", handlers.RestoreCapsule(d))
	})
}
