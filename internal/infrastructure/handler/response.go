package handler

import (
	"encoding/json"
	"net/http"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// sendJSON writes a successful JSON response
func sendJSON(w http.ResponseWriter, log logger.Logger, status int, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// sendErrorResponse sends a standardized error response. Server-side
// failures are logged at error level, client errors at warn.
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	kind := apperror.KindOf(err)
	fields := map[string]interface{}{
		"request_id":  requestID,
		"kind":        kind,
		"status_code": apperror.HTTPStatus(kind),
		"error":       err.Error(),
	}

	if apperror.HTTPStatus(kind) >= http.StatusInternalServerError {
		log.Error("Request failed", fields)
	} else {
		log.Warn("Request rejected", fields)
	}

	middleware.WriteError(w, err, requestID)
}

// HealthHandler reports liveness
type HealthHandler struct {
	logger logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(log logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &HealthHandler{logger: log}
}

// Health answers with {"status":"ok"}
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, HealthResponse{Status: "ok"}, middleware.GetRequestID(r.Context()))
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
}
