package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jvanloock/dupdirs/pkg/models"
	"github.com/jvanloock/dupdirs/pkg/storage"
)

const snapshotVersion = 1

// Snapshot is the durable form of a Store plus the scan roots it was
// built from. The maps are keyed by original (display) paths.
type Snapshot struct {
	// Version for snapshot format compatibility
	Version int `json:"version"`

	ScanRoots []string `json:"scan_roots"`

	Folders     map[string]models.FolderInfo   `json:"folders"`
	FolderFiles map[string][]string            `json:"folder_files"`
	Hashes      map[string]string              `json:"hashes"`
	Metadata    map[string]models.FileMetadata `json:"metadata"`
}

// ExportSnapshot captures the entire store for persistence.
func (s *Store) ExportSnapshot(scanRoots []string) *Snapshot {
	snap := &Snapshot{
		Version:     snapshotVersion,
		ScanRoots:   append([]string(nil), scanRoots...),
		Folders:     make(map[string]models.FolderInfo),
		FolderFiles: make(map[string][]string),
		Hashes:      make(map[string]string),
		Metadata:    make(map[string]models.FileMetadata),
	}

	s.foldersMu.RLock()
	for _, entry := range s.folders {
		info := entry.info
		files := make([]string, len(info.Files))
		copy(files, info.Files)
		info.Files = files
		snap.Folders[entry.path] = info
		snap.FolderFiles[entry.path] = append([]string(nil), files...)
	}
	s.foldersMu.RUnlock()

	s.hashesMu.RLock()
	for key, hash := range s.hashes {
		snap.Hashes[key] = hash
	}
	s.hashesMu.RUnlock()

	s.metaMu.RLock()
	for key, meta := range s.meta {
		snap.Metadata[key] = meta
	}
	s.metaMu.RUnlock()

	return snap
}

// ImportSnapshot replaces all in-memory state with the snapshot's
// content, then rebuilds the per-file metadata map by re-stating every
// cached file. Files that no longer exist or cannot be read are
// silently omitted rather than treated as errors; their folders stay
// cached and a later re-scan refreshes them.
func (s *Store) ImportSnapshot(ctx context.Context, snap *Snapshot, backend storage.Backend) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if snap.Version > snapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, snapshotVersion)
	}

	s.Clear()

	for folder, info := range snap.Folders {
		s.Put(folder, info)
	}
	for file, hash := range snap.Hashes {
		s.PutHash(file, hash)
	}

	for _, info := range snap.Folders {
		for _, file := range info.Files {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			stat, err := backend.Stat(ctx, file)
			if err != nil || stat.IsDir {
				continue
			}
			s.PutMetadata(file, models.FileMetadata{
				FileName:      stat.Name,
				Size:          stat.Size,
				LastWriteTime: stat.ModTime,
			})
		}
	}

	return nil
}

// SaveSnapshot writes a snapshot to disk as JSON, atomically via a
// temp file rename.
func SaveSnapshot(snap *Snapshot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize snapshot file: %w", err)
	}

	return nil
}

// LoadSnapshot reads a snapshot previously written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	return &snap, nil
}
