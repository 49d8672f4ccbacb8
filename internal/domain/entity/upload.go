package entity

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Known upload categories. The set is open; any category passing
// ValidateCategory is accepted.
const (
	CategoryBid        = "bid"
	CategoryHistorical = "historical"
	CategoryMarket     = "market"
)

// Upload represents a file accepted by the upload store
type Upload struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// StoredFileName composes the on-disk name of an upload
func StoredFileName(category, filename string) string {
	return category + "_" + filename
}

// CategoryPrefix returns the file name prefix shared by every upload of a category
func CategoryPrefix(category string) string {
	return category + "_"
}

// ValidateCategory ensures the category can be used as a file name prefix
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return errors.New("file type must not be empty")
	}
	if strings.ContainsAny(category, `/\`) || strings.Contains(category, "..") {
		return errors.New("file type must not contain path separators")
	}
	return nil
}

// SanitizeFileName strips any directory component a client may have sent
func SanitizeFileName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "", errors.New("file name must not be empty")
	}
	return name, nil
}
