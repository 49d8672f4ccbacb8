package handler

import (
	"net/http"

	"github.com/damon-houk/freight-forecast-service/internal/application/service"
	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// UploadFormField is the multipart field carrying the file
const UploadFormField = "file"

// UploadHandler handles HTTP requests for file uploads
type UploadHandler struct {
	service   *service.UploadService
	maxMemory int64
	logger    logger.Logger
}

// NewUploadHandler creates a new upload handler. maxMemory bounds the part of
// a multipart body kept in memory; the rest spills to temporary files.
func NewUploadHandler(service *service.UploadService, maxMemory int64, log logger.Logger) *UploadHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}

	return &UploadHandler{
		service:   service,
		maxMemory: maxMemory,
		logger:    log,
	}
}

// Upload stores the multipart "file" under the file type of the path
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	fileType := mux.Vars(r)["file_type"]

	h.logger.Info("Handling upload request", map[string]interface{}{
		"request_id": requestID,
		"file_type":  fileType,
	})

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		sendErrorResponse(w, h.logger, apperror.Wrap(apperror.InvalidInput, "invalid multipart form", err), requestID)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(UploadFormField)
	if err != nil {
		sendErrorResponse(w, h.logger, apperror.Wrap(apperror.InvalidInput, "missing form field \"file\"", err), requestID)
		return
	}
	defer file.Close()

	upload, err := h.service.Store(r.Context(), fileType, header.Filename, file)
	if err != nil {
		sendErrorResponse(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, UploadResponse{
		Filename: upload.OriginalName,
		Status:   "success",
	}, requestID)
}

// ListUploads returns the catalog, optionally filtered by ?category=
func (h *UploadHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	uploads, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		sendErrorResponse(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, UploadsResponse{Uploads: uploads}, requestID)
}

// RegisterRoutes registers the upload handler routes
func (h *UploadHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/upload/{file_type}", h.Upload).Methods("POST")
	router.HandleFunc("/api/uploads", h.ListUploads).Methods("GET")

	h.logger.Info("Upload routes registered", map[string]interface{}{
		"routes": []string{
			"POST /api/upload/{file_type}",
			"GET /api/uploads",
		},
	})
}
