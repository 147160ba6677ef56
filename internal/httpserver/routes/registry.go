package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookhub/internal/auth"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var (
	registry    []entry // mounted at the root
	apiRegistry []entry // mounted under /api behind auth
)

// Register a root-level registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterAPI adds a registrar to the /api group. Paths are relative to /api
// and every request already carries a profile ID.
func RegisterAPI(reg Registrar, mws ...Middleware) {
	apiRegistry = append(apiRegistry, entry{reg: reg, mws: mws})
}

// RegisterAll is called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	mount(r, d, registry)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Identify(d.Tokens, d.DemoMode))
		api.Use(mw.Profile(d.Profiles, d.Logger))
		if d.RateLimitBurst > 0 {
			api.Use(mw.RateLimit(mw.RateLimitConfig{
				Burst:        d.RateLimitBurst,
				RefillPerMin: d.RateLimitPerMinute,
				MaxEntries:   10000,
				TrustProxy:   d.TrustProxy,
			}))
		}
		mount(api, d, apiRegistry)
	})
}

func mount(r chi.Router, d deps.Deps, entries []entry) {
	for _, e := range entries {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(e.mws...), d)
	}
}

// restricted guards ops and maintenance endpoints.
func restricted(d deps.Deps) []Middleware {
	return []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
}
