package handler

import (
	"net/http"

	"github.com/damon-houk/freight-forecast-service/internal/application/service"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// ForecastHandler handles HTTP requests for lane forecasts
type ForecastHandler struct {
	service *service.ForecastService
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewForecastHandler creates a new forecast handler. A nil limiter disables
// admission control.
func NewForecastHandler(service *service.ForecastService, limiter *rate.Limiter, log logger.Logger) *ForecastHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ForecastHandler{
		service: service,
		limiter: limiter,
		logger:  log,
	}
}

// Forecast returns the 12-month forecast of every model for a lane
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	laneID := mux.Vars(r)["lane_id"]

	h.logger.Info("Handling forecast request", map[string]interface{}{
		"request_id": requestID,
		"lane_id":    laneID,
	})

	forecast, err := h.service.Forecast(r.Context(), laneID)
	if err != nil {
		sendErrorResponse(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, toForecastResponse(forecast), requestID)
}

// RegisterRoutes registers the forecast route behind the rate limiter
func (h *ForecastHandler) RegisterRoutes(router *mux.Router) {
	sub := router.PathPrefix("/api/forecast").Subrouter()
	if h.limiter != nil {
		sub.Use(middleware.RateLimitMiddleware(h.limiter, h.logger))
	}
	sub.HandleFunc("/{lane_id}", h.Forecast).Methods("GET")

	h.logger.Info("Forecast routes registered", map[string]interface{}{
		"routes":       []string{"GET /api/forecast/{lane_id}"},
		"rate_limited": h.limiter != nil,
	})
}
