package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/respond"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/utils"
)

// AllowOnlyCIDRS lets through only clients whose IP matches allowed (exact IPs
// or CIDRs). An empty list disables the filter.
// trustProxy should be true when running behind a trusted reverse proxy/tunnel (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("client ip rejected",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				respond.Error(w, r, log, apperror.Forbidden("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
