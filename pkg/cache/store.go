package cache

import (
	"sync"

	"github.com/jvanloock/dupdirs/internal/platform"
	"github.com/jvanloock/dupdirs/pkg/models"
)

// Store holds everything the analysis pipeline learns about the
// filesystem: folder aggregates, folder file lists, file hashes, and
// file metadata. Keys are normalized case-insensitive paths. Each map
// has its own lock, so scanner workers writing folder info never block
// hash lookups.
//
// The store is explicit state passed into every component that needs
// it; there is no package-level cache.
type Store struct {
	foldersMu sync.RWMutex
	folders   map[string]folderEntry

	filesMu     sync.RWMutex
	folderFiles map[string][]string

	hashesMu sync.RWMutex
	hashes   map[string]string

	metaMu sync.RWMutex
	meta   map[string]models.FileMetadata
}

// folderEntry keeps the original (display) path next to the info,
// since map keys are lowercased.
type folderEntry struct {
	path string
	info models.FolderInfo
}

// NewStore creates an empty cache store.
func NewStore() *Store {
	return &Store{
		folders:     make(map[string]folderEntry),
		folderFiles: make(map[string][]string),
		hashes:      make(map[string]string),
		meta:        make(map[string]models.FileMetadata),
	}
}

// IsCached reports whether a folder has already been analyzed.
func (s *Store) IsCached(folder string) bool {
	key := platform.NormalizeKey(folder)
	s.foldersMu.RLock()
	defer s.foldersMu.RUnlock()
	_, ok := s.folders[key]
	return ok
}

// Put stores a folder's aggregate info and derives its file list.
// A re-scan replaces both wholesale.
func (s *Store) Put(folder string, info models.FolderInfo) {
	key := platform.NormalizeKey(folder)
	files := make([]string, len(info.Files))
	copy(files, info.Files)
	info.Files = files

	s.foldersMu.Lock()
	s.folders[key] = folderEntry{path: folder, info: info}
	s.foldersMu.Unlock()

	derived := make([]string, len(files))
	copy(derived, files)
	s.filesMu.Lock()
	s.folderFiles[key] = derived
	s.filesMu.Unlock()
}

// Get returns a folder's aggregate info, if cached.
func (s *Store) Get(folder string) (models.FolderInfo, bool) {
	key := platform.NormalizeKey(folder)
	s.foldersMu.RLock()
	entry, ok := s.folders[key]
	s.foldersMu.RUnlock()
	if !ok {
		return models.FolderInfo{}, false
	}
	info := entry.info
	files := make([]string, len(info.Files))
	copy(files, info.Files)
	info.Files = files
	return info, true
}

// Files returns the cached file list for a folder, if present.
func (s *Store) Files(folder string) ([]string, bool) {
	key := platform.NormalizeKey(folder)
	s.filesMu.RLock()
	files, ok := s.folderFiles[key]
	s.filesMu.RUnlock()
	if !ok {
		return nil, false
	}
	out := make([]string, len(files))
	copy(out, files)
	return out, true
}

// PutHash caches a file's content hash.
func (s *Store) PutHash(file, hash string) {
	key := platform.NormalizeKey(file)
	s.hashesMu.Lock()
	s.hashes[key] = hash
	s.hashesMu.Unlock()
}

// GetHash returns a file's cached content hash, if present.
func (s *Store) GetHash(file string) (string, bool) {
	key := platform.NormalizeKey(file)
	s.hashesMu.RLock()
	hash, ok := s.hashes[key]
	s.hashesMu.RUnlock()
	return hash, ok
}

// PutMetadata caches a file's scan-time metadata.
func (s *Store) PutMetadata(file string, meta models.FileMetadata) {
	key := platform.NormalizeKey(file)
	s.metaMu.Lock()
	s.meta[key] = meta
	s.metaMu.Unlock()
}

// GetMetadata returns a file's cached metadata, if present.
func (s *Store) GetMetadata(file string) (models.FileMetadata, bool) {
	key := platform.NormalizeKey(file)
	s.metaMu.RLock()
	meta, ok := s.meta[key]
	s.metaMu.RUnlock()
	return meta, ok
}

// CachedFolders returns the original paths of every cached folder.
func (s *Store) CachedFolders() []string {
	s.foldersMu.RLock()
	defer s.foldersMu.RUnlock()
	out := make([]string, 0, len(s.folders))
	for _, entry := range s.folders {
		out = append(out, entry.path)
	}
	return out
}

// FolderCount returns the number of cached folders.
func (s *Store) FolderCount() int {
	s.foldersMu.RLock()
	defer s.foldersMu.RUnlock()
	return len(s.folders)
}

// RemoveSubtree removes every cached entry whose path lies at or under
// root, across all four maps. Prefix matching is separator-aware so
// removing "C:\A" leaves "C:\AB" untouched.
func (s *Store) RemoveSubtree(root string) {
	rootKey := platform.NormalizeKey(root)

	s.foldersMu.Lock()
	for key := range s.folders {
		if platform.IsDescendantKey(key, rootKey) {
			delete(s.folders, key)
		}
	}
	s.foldersMu.Unlock()

	s.filesMu.Lock()
	for key := range s.folderFiles {
		if platform.IsDescendantKey(key, rootKey) {
			delete(s.folderFiles, key)
		}
	}
	s.filesMu.Unlock()

	s.hashesMu.Lock()
	for key := range s.hashes {
		if platform.IsDescendantKey(key, rootKey) {
			delete(s.hashes, key)
		}
	}
	s.hashesMu.Unlock()

	s.metaMu.Lock()
	for key := range s.meta {
		if platform.IsDescendantKey(key, rootKey) {
			delete(s.meta, key)
		}
	}
	s.metaMu.Unlock()
}

// Clear drops all cached state.
func (s *Store) Clear() {
	s.foldersMu.Lock()
	s.folders = make(map[string]folderEntry)
	s.foldersMu.Unlock()

	s.filesMu.Lock()
	s.folderFiles = make(map[string][]string)
	s.filesMu.Unlock()

	s.hashesMu.Lock()
	s.hashes = make(map[string]string)
	s.hashesMu.Unlock()

	s.metaMu.Lock()
	s.meta = make(map[string]models.FileMetadata)
	s.metaMu.Unlock()
}
