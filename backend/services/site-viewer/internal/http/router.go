package httpserver

import (
	"net/http"

	"siteviewer/backend/services/site-viewer/internal/http/handlers"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	StatusHandlers *handlers.StatusHandlers
	PageHandler    http.Handler
	WSHandler      http.HandlerFunc
	MetricsHandler http.Handler
	HealthHandler  http.HandlerFunc
}

// NewRouter wires HTTP routes.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", method(http.MethodGet, deps.PageHandler))
	mux.Handle("/health", method(http.MethodGet, deps.HealthHandler))
	mux.Handle("/metrics", method(http.MethodGet, deps.MetricsHandler))
	mux.Handle("/ws", method(http.MethodGet, deps.WSHandler))

	mux.Handle("/api/battery-status", method(http.MethodGet, http.HandlerFunc(deps.StatusHandlers.Get)))
	mux.Handle("/api/battery-status.xlsx", method(http.MethodGet, http.HandlerFunc(deps.StatusHandlers.Export)))
	mux.Handle("/api/refresh", method(http.MethodPost, http.HandlerFunc(deps.StatusHandlers.Refresh)))

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
