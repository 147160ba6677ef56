package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerDNA) }

func registerDNA(r chi.Router, d deps.Deps) {
	r.Route("/dna-profile", func(r chi.Router) {
		r.Get("/", handlers.DNAProfile(d))
		r.Post("/events", handlers.TrackDNAEvent(d))
		r.Get("/stats", handlers.DNAStats(d))
		r.Get("/recommendations", handlers.ListRecommendations(d))
		r.Post("/recommendations/{id}/apply", handlers.ApplyRecommendation(d))
		r.Post("/recommendations/{id}/dismiss", handlers.DismissRecommendation(d))
	})
}
