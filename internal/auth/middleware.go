package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the cookie checked when no Authorization header is sent.
const CookieName = "token"

// The identity used for anonymous requests in demo mode.
var DemoIdentity = Identity{ID: "demo-user", Email: "demo@example.com", Name: "Demo User"}

type contextKey string

const (
	identityKey  contextKey = "identity"
	profileIDKey contextKey = "profileID"
)

// Identify resolves the caller from a bearer token or the token cookie. A
// request without a valid token gets the demo identity when demo is set and
// a 401 otherwise.
func Identify(tokens *TokenService, demo bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				id  Identity
				err = ErrMissingToken
			)
			if raw := tokenFromRequest(r); raw != "" && tokens != nil {
				id, err = tokens.Validate(raw)
			}
			if err != nil {
				if !demo {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
					return
				}
				id = DemoIdentity
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.ID != ""
}

// WithProfileID stores the canonical profile ID every owned row is keyed by.
func WithProfileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileIDKey, id)
}

func ProfileIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(profileIDKey).(string)
	return id, ok && id != ""
}
