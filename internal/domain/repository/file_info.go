package repository

import "time"

// FileInfo describes a stored upload file
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}
