package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerFolders) }

func registerFolders(r chi.Router, d deps.Deps) {
	r.Route("/folders", func(r chi.Router) {
		r.Get("/", handlers.ListFolders(d))
		r.Post("/", handlers.CreateFolder(d))
		r.Get("/{id}", handlers.GetFolder(d))
		r.Put("/{id}", handlers.UpdateFolder(d))
		r.Delete("/{id}", handlers.DeleteFolder(d))
		r.Post("/{id}/move", handlers.MoveFolder(d))
		r.Get("/{id}/path", handlers.FolderPath(d))
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", handlers.ListTags(d))
		r.Post("/", handlers.CreateTag(d))
		r.Delete("/{id}", handlers.DeleteTag(d))
	})
}
