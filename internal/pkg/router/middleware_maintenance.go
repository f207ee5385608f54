package router

import (
	"net/http"
	"strings"

	"github.com/ponggrid/authsvc/internal/pkg/config"
)

// middlewareMaintenance rejects requests to routes listed under
// app.maintenance.endpoints with a 503. The list is read once at router
// construction, so toggling maintenance requires a config reload plus
// restart of the router, which happens only at boot.
func middlewareMaintenance(cfg config.Config) Middleware {
	blocked := make(map[string]struct{})
	if cfg != nil {
		for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
			if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
				blocked[endpoint] = struct{}{}
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, down := blocked[matchedRoutePath(r)]; down {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
