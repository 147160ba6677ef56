package mw

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/auth"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/respond"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
)

type ProfileEnsurer interface {
	Ensure(ctx context.Context, identityID, email, fullName string) (domain.Profile, error)
}

// Profile resolves the authenticated identity to its canonical profile and
// stores the profile ID in the request context. Must run after auth.Identify.
func Profile(profiles ProfileEnsurer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				respond.Error(w, r, log, apperror.Unauthorized("valid authentication required"))
				return
			}
			p, err := profiles.Ensure(r.Context(), id.ID, id.Email, id.Name)
			if err != nil {
				respond.Error(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithProfileID(r.Context(), p.ID)))
		})
	}
}
