package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file or directory
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Backend defines the interface for filesystem access. The analyzer
// assumes any call can fail with permission, not-found, locked,
// path-too-long, or generic I/O errors; callers route those failures
// through the recovery policy. Implementations include the local
// filesystem and test fakes.
type Backend interface {
	// DirExists checks whether a directory exists
	DirExists(ctx context.Context, path string) (bool, error)

	// ListDir returns the immediate children of a directory
	// (non-recursive), files and subdirectories both
	ListDir(ctx context.Context, path string) ([]FileInfo, error)

	// Stat returns metadata for a single file
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)
}
