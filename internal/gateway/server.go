package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", promhttp.Handler())

	// OAuth handshake — only mounted when the app credentials are set.
	if g.cfg.OAuth.IsConfigured() && g.exchange != nil {
		r.Get("/auth", g.handleAuth())
	}

	return r
}

// handleHealth reports liveness.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
