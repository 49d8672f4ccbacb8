package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/damon-houk/freight-forecast-service/internal/domain/repository"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/cache"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
)

// Loader implements repository.DatasetRepository over the upload directory.
//
// Selection policy: the newest catalog entry of the category whose file
// still exists; when the catalog knows none, the newest file on disk whose
// name starts with "<category>_" (ties broken by name).
type Loader struct {
	files   repository.FileStore
	catalog repository.UploadRepository
	cache   *cache.DatasetCache
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewLoader creates a dataset loader. catalog, datasetCache and m may be nil.
func NewLoader(files repository.FileStore, catalog repository.UploadRepository, datasetCache *cache.DatasetCache, m *metrics.Metrics, log logger.Logger) *Loader {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Loader{
		files:   files,
		catalog: catalog,
		cache:   datasetCache,
		metrics: m,
		logger:  log,
	}
}

// Load returns the selected dataset of a category
func (l *Loader) Load(ctx context.Context, category string) (*entity.Dataset, error) {
	requestID := middleware.GetRequestID(ctx)

	file, ok, err := l.Resolve(ctx, category)
	if err != nil {
		return nil, err
	}
	if !ok {
		l.logger.Warn("No upload found for category", map[string]interface{}{
			"request_id": requestID,
			"category":   category,
		})
		return nil, apperror.New(apperror.NoDataFound, fmt.Sprintf("No %s data found", category))
	}

	if l.cache != nil {
		if ds := l.cache.Get(file); ds != nil {
			l.observeCache("hit")
			return ds, nil
		}
		l.observeCache("miss")
	}

	f, err := os.Open(l.files.Path(file.Name))
	if err != nil {
		return nil, apperror.Wrap(apperror.IOFailure, "failed to open "+file.Name, err)
	}
	defer f.Close()

	ds, err := Parse(file.Name, f)
	if err != nil {
		l.logger.Error("Failed to parse dataset", map[string]interface{}{
			"request_id": requestID,
			"file":       file.Name,
			"error":      err.Error(),
		})
		return nil, apperror.Wrap(apperror.IOFailure, "failed to load dataset", err)
	}

	l.logger.Debug("Dataset loaded", map[string]interface{}{
		"request_id": requestID,
		"file":       file.Name,
		"columns":    ds.Columns,
		"rows":       ds.Len(),
	})

	if l.cache != nil {
		l.cache.Put(file, ds)
	}

	return ds, nil
}

// Resolve applies the selection policy and reports the chosen file
func (l *Loader) Resolve(ctx context.Context, category string) (repository.FileInfo, bool, error) {
	if l.catalog != nil {
		uploads, err := l.catalog.FindByCategory(ctx, category)
		if err != nil {
			// the directory is the source of truth; fall through to a scan
			l.logger.Warn("Catalog lookup failed", map[string]interface{}{
				"request_id": middleware.GetRequestID(ctx),
				"category":   category,
				"error":      err.Error(),
			})
		}
		for _, u := range uploads {
			info, exists, err := l.files.Stat(u.StoredName)
			if err != nil {
				return repository.FileInfo{}, false, apperror.Wrap(apperror.IOFailure, "failed to inspect upload", err)
			}
			if exists {
				return info, true, nil
			}
		}
	}

	files, err := l.files.ListPrefix(entity.CategoryPrefix(category))
	if err != nil {
		return repository.FileInfo{}, false, apperror.Wrap(apperror.IOFailure, "failed to list uploads", err)
	}
	if len(files) == 0 {
		return repository.FileInfo{}, false, nil
	}

	return files[0], true, nil
}

func (l *Loader) observeCache(result string) {
	if l.metrics != nil {
		l.metrics.DatasetCache.WithLabelValues(result).Inc()
	}
}
