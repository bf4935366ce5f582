package models

import (
	"time"
)

// FileMetadata is a snapshot of one file taken at scan time.
// It is never refreshed in place; a re-scan replaces it wholesale.
type FileMetadata struct {
	// FileName is the base name of the file
	FileName string `json:"file_name"`

	// Size in bytes
	Size int64 `json:"size"`

	// LastWriteTime is the modification time at scan time
	LastWriteTime time.Time `json:"last_write_time"`
}

// FolderInfo aggregates one scanned folder. Created once by the
// scanner and replaced wholesale on re-scan, never mutated.
type FolderInfo struct {
	// Files are the absolute paths of the immediate (non-recursive) files
	Files []string `json:"files"`

	// TotalSize is the sum of file sizes in bytes
	TotalSize int64 `json:"total_size"`

	// LatestModification is the max mtime over the files,
	// nil for an empty or inaccessible folder
	LatestModification *time.Time `json:"latest_modification,omitempty"`
}

// FileCount returns the number of files recorded for the folder.
func (f *FolderInfo) FileCount() int {
	return len(f.Files)
}
