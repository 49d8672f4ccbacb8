// Package service internal/application/service/upload_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/damon-houk/freight-forecast-service/internal/domain/repository"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
	"github.com/google/uuid"
)

// UploadService persists uploaded files and records them in the catalog
type UploadService struct {
	files   repository.FileStore
	catalog repository.UploadRepository
	metrics *metrics.Metrics
	logger  logger.Logger
	now     func() time.Time
}

// NewUploadService creates a new upload service. catalog and m may be nil.
func NewUploadService(files repository.FileStore, catalog repository.UploadRepository, m *metrics.Metrics, log logger.Logger) *UploadService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &UploadService{
		files:   files,
		catalog: catalog,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

// Store writes the content as "<category>_<filename>" in the upload
// directory, replacing any earlier file of the same name
func (s *UploadService) Store(ctx context.Context, category, filename string, content io.Reader) (*entity.Upload, error) {
	requestID := middleware.GetRequestID(ctx)

	if err := entity.ValidateCategory(category); err != nil {
		s.observe(category, "rejected")
		return nil, apperror.Wrap(apperror.InvalidInput, "invalid file type", err)
	}

	name, err := entity.SanitizeFileName(filename)
	if err != nil {
		s.observe(category, "rejected")
		return nil, apperror.Wrap(apperror.InvalidInput, "invalid file name", err)
	}

	upload := &entity.Upload{
		ID:           uuid.New().String(),
		Category:     category,
		OriginalName: filename,
		StoredName:   entity.StoredFileName(category, name),
	}

	s.logger.Info("Storing upload", map[string]interface{}{
		"request_id":  requestID,
		"category":    category,
		"stored_name": upload.StoredName,
	})

	size, err := s.files.Write(ctx, upload.StoredName, content)
	if err != nil {
		s.observe(category, "failed")
		s.logger.Error("Failed to write upload", map[string]interface{}{
			"request_id":  requestID,
			"stored_name": upload.StoredName,
			"error":       err.Error(),
		})
		return nil, apperror.Wrap(apperror.IOFailure, fmt.Sprintf("failed to save %s", upload.StoredName), err)
	}

	upload.Size = size
	upload.UploadedAt = s.now().UTC()

	if s.catalog != nil {
		if err := s.catalog.Save(ctx, upload); err != nil {
			// the file on disk is authoritative; the loader falls back to a directory scan
			s.logger.Warn("Failed to record upload in catalog", map[string]interface{}{
				"request_id":  requestID,
				"stored_name": upload.StoredName,
				"error":       err.Error(),
			})
		}
	}

	s.observe(category, "stored")
	s.logger.Info("Upload stored", map[string]interface{}{
		"request_id":  requestID,
		"id":          upload.ID,
		"stored_name": upload.StoredName,
		"size":        size,
	})

	return upload, nil
}

// List returns catalog entries, newest first. An empty category lists every upload.
func (s *UploadService) List(ctx context.Context, category string) ([]*entity.Upload, error) {
	if s.catalog == nil {
		return []*entity.Upload{}, nil
	}

	var (
		uploads []*entity.Upload
		err     error
	)
	if category == "" {
		uploads, err = s.catalog.List(ctx)
	} else {
		if verr := entity.ValidateCategory(category); verr != nil {
			return nil, apperror.Wrap(apperror.InvalidInput, "invalid category", verr)
		}
		uploads, err = s.catalog.FindByCategory(ctx, category)
	}
	if err != nil {
		s.logger.Error("Failed to list uploads", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"category":   category,
			"error":      err.Error(),
		})
		return nil, apperror.Wrap(apperror.IOFailure, "failed to list uploads", err)
	}

	if uploads == nil {
		uploads = []*entity.Upload{}
	}
	return uploads, nil
}

func (s *UploadService) observe(category, outcome string) {
	if s.metrics != nil {
		s.metrics.Uploads.WithLabelValues(category, outcome).Inc()
	}
}
