// Package storage implements the local upload directory
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/damon-houk/freight-forecast-service/internal/domain/repository"
)

// LocalFileStore keeps uploads as flat files in a single directory
type LocalFileStore struct {
	dir string
}

// NewLocalFileStore creates a store rooted at dir. The directory is
// created on write when absent.
func NewLocalFileStore(dir string) *LocalFileStore {
	return &LocalFileStore{dir: dir}
}

// Dir returns the upload directory
func (s *LocalFileStore) Dir() string {
	return s.dir
}

func (s *LocalFileStore) ensureDir() error {
	return os.MkdirAll(s.dir, 0755)
}

// Write streams content into the named file, truncating any previous content.
// A failure mid-stream can leave a partial file behind.
func (s *LocalFileStore) Write(ctx context.Context, name string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := s.ensureDir(); err != nil {
		return 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(s.Path(name))
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, content)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		return n, fmt.Errorf("failed to close file: %w", err)
	}

	return n, nil
}

// Path returns the location of a stored file
func (s *LocalFileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Stat reports whether a stored file exists
func (s *LocalFileStore) Stat(name string) (repository.FileInfo, bool, error) {
	info, err := os.Stat(s.Path(name))
	if os.IsNotExist(err) {
		return repository.FileInfo{}, false, nil
	}
	if err != nil {
		return repository.FileInfo{}, false, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return repository.FileInfo{}, false, nil
	}

	return repository.FileInfo{
		Name:    name,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true, nil
}

// ListPrefix returns the regular files whose names start with prefix,
// newest modification time first and ties broken by name.
// A missing directory yields an empty list.
func (s *LocalFileStore) ListPrefix(prefix string) ([]repository.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list upload directory: %w", err)
	}

	var files []repository.FileInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, repository.FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}
