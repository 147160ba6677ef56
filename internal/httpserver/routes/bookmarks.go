package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/bookmarks", func(r chi.Router) {
		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.CreateBookmark(d))
		r.Put("/", handlers.UpdateBookmark(d))
		r.Delete("/", handlers.DeleteBookmarks(d))

		r.Get("/search", handlers.SearchBookmarks(d))
		r.Post("/reorder", handlers.ReorderBookmarks(d))
		r.Post("/validate", handlers.ValidateLinks(d))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetBookmark(d))
			r.Patch("/", handlers.UpdateBookmark(d))
			r.Delete("/", handlers.DeleteBookmarks(d))
			r.Post("/visit", handlers.VisitBookmark(d))

			r.Get("/tags", handlers.BookmarkTags(d))
			r.Post("/tags", handlers.AddBookmarkTags(d))
			r.Delete("/tags", handlers.RemoveBookmarkTags(d))

			r.Get("/related", handlers.RelatedBookmarks(d))
			r.Post("/related", handlers.CreateRelationship(d))
			r.Get("/related/candidates", handlers.RelationshipCandidates(d))
		})
	})

	r.Route("/bookmark-relationships", func(r chi.Router) {
		r.Get("/", handlers.ListRelationships(d))
		r.Post("/", handlers.CreateRelationship(d))
		r.Delete("/", handlers.DeleteRelationship(d))
	})
}
