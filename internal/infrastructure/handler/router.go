package handler

import (
	"net/http"

	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RouteRegistrar is implemented by every handler
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// NewRouter builds the API router with the middleware chain. CORS wraps the
// router itself so preflight requests to POST-only routes are answered.
func NewRouter(log logger.Logger, m *metrics.Metrics, corsOrigin string, handlers ...RouteRegistrar) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	if m != nil {
		router.Use(middleware.MetricsMiddleware(m))
		router.Handle("/metrics", m.Handler()).Methods("GET")
	}

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	return middleware.CORSMiddleware(corsOrigin)(router)
}
