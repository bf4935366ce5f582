package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileMatch is a pair of content-identical files in two different
// folders. Pair order is canonical: PathA belongs to the
// lexicographically smaller folder, so one logical folder pair can
// never split into two aggregation groups.
type FileMatch struct {
	PathA string `json:"path_a"`
	PathB string `json:"path_b"`
}

// NewFileMatch builds a FileMatch in canonical order.
func NewFileMatch(a, b string) FileMatch {
	dirA := strings.ToLower(filepath.Dir(a))
	dirB := strings.ToLower(filepath.Dir(b))
	if dirA > dirB || (dirA == dirB && strings.ToLower(a) > strings.ToLower(b)) {
		a, b = b, a
	}
	return FileMatch{PathA: a, PathB: b}
}

// FolderMatch is an aggregated pair of folders with at least one
// confirmed duplicate file between them.
type FolderMatch struct {
	LeftFolder  string `json:"left_folder"`
	RightFolder string `json:"right_folder"`

	// DuplicateFiles are the confirmed cross-folder duplicates
	DuplicateFiles []FileMatch `json:"duplicate_files"`

	// SimilarityPercent is the count-based Jaccard index over the
	// two file sets, expressed as a percentage in [0, 100]
	SimilarityPercent float64 `json:"similarity_percent"`

	// FolderSizeBytes is the total size of the left folder
	FolderSizeBytes int64 `json:"folder_size_bytes"`

	// LatestModification is the left folder's latest mtime, if known
	LatestModification *time.Time `json:"latest_modification,omitempty"`
}

// Similarity computes the count-based Jaccard similarity percentage:
// duplicates over combined file count minus duplicates. Returns 0 when
// the denominator is not positive (both folders empty).
func Similarity(duplicateCount, leftCount, rightCount int) float64 {
	denom := leftCount + rightCount - duplicateCount
	if denom <= 0 {
		return 0
	}
	return 100 * float64(duplicateCount) / float64(denom)
}

// FileDetail classifies one file name from the union of a folder
// pair's file lists. A side can be present without metadata when the
// file could not be stat'ed; Left/Right stay nil in that case.
type FileDetail struct {
	FileName    string `json:"file_name"`
	IsDuplicate bool   `json:"is_duplicate"`

	InLeft  bool `json:"in_left"`
	InRight bool `json:"in_right"`

	Left  *FileMetadata `json:"left,omitempty"`
	Right *FileMetadata `json:"right,omitempty"`
}
