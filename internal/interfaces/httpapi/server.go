package httpapi

import (
	"net/http"

	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
)

// NewRouter wires the read-only routes. metricsHandler may be nil when the Prometheus
// endpoint is disabled.
func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string, metricsHandler http.Handler) http.Handler {
	logger = logger.Named("http")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	mux.HandleFunc("GET /v1/snapshot", handler.GetSnapshot)
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/news", handler.ListNews)
	mux.HandleFunc("GET /v1/transactions", handler.ListTransactions)
	mux.HandleFunc("GET /v1/injuries", handler.ListInjuries)
	mux.HandleFunc("GET /v1/status", handler.GetStatus)
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{sport}/{league}", handler.GetLeague)
	mux.HandleFunc("GET /v1/favorites", handler.ListFavorites)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}
