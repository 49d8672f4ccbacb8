// Package repository internal/domain/repository/upload_repository.go
package repository

import (
	"context"
	"io"

	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
)

// UploadRepository defines the interface for the upload catalog
type UploadRepository interface {
	// Save records an upload, replacing any entry with the same stored name
	Save(ctx context.Context, upload *entity.Upload) error

	// FindByCategory lists the uploads of a category, newest first
	FindByCategory(ctx context.Context, category string) ([]*entity.Upload, error)

	// List returns every recorded upload, newest first
	List(ctx context.Context) ([]*entity.Upload, error)
}

// FileStore defines the interface for the upload directory
type FileStore interface {
	// Write streams content into the named file, overwriting it
	Write(ctx context.Context, name string, content io.Reader) (int64, error)

	// Path returns the absolute location of a stored file
	Path(name string) string

	// Stat reports whether a stored file exists along with its metadata
	Stat(name string) (FileInfo, bool, error)

	// ListPrefix returns the files whose names start with the prefix, newest first
	ListPrefix(prefix string) ([]FileInfo, error)
}

// DatasetRepository defines the interface for loading parsed uploads
type DatasetRepository interface {
	// Load returns the selected dataset of a category
	Load(ctx context.Context, category string) (*entity.Dataset, error)
}
