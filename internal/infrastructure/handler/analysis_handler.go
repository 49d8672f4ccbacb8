package handler

import (
	"net/http"

	"github.com/damon-houk/freight-forecast-service/internal/application/service"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// AnalysisHandler handles HTTP requests for historical statistics
type AnalysisHandler struct {
	service *service.AnalysisService
	logger  logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *service.AnalysisService, log logger.Logger) *AnalysisHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &AnalysisHandler{
		service: service,
		logger:  log,
	}
}

// HistoricalAnalysis summarises the selected historical upload
func (h *AnalysisHandler) HistoricalAnalysis(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	analysis, err := h.service.Analyze(r.Context())
	if err != nil {
		sendErrorResponse(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, analysis, requestID)
}

// Lanes lists the lanes of the selected historical upload
func (h *AnalysisHandler) Lanes(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	lanes, err := h.service.Lanes(r.Context())
	if err != nil {
		sendErrorResponse(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, LanesResponse{Lanes: lanes}, requestID)
}

// RegisterRoutes registers the analysis handler routes
func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/historical-analysis", h.HistoricalAnalysis).Methods("GET")
	router.HandleFunc("/api/lanes", h.Lanes).Methods("GET")

	h.logger.Info("Analysis routes registered", map[string]interface{}{
		"routes": []string{
			"GET /api/historical-analysis",
			"GET /api/lanes",
		},
	})
}
