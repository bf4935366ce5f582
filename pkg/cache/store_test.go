package cache

import (
	"testing"
	"time"

	"github.com/jvanloock/dupdirs/pkg/models"
)

func testFolderInfo(files ...string) models.FolderInfo {
	mod := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.FolderInfo{
		Files:              files,
		TotalSize:          int64(len(files)) * 100,
		LatestModification: &mod,
	}
}

// TestStorePutGet tests basic folder caching
func TestStorePutGet(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		s := NewStore()
		s.Put("/data/photos", testFolderInfo("/data/photos/a.jpg", "/data/photos/b.jpg"))

		info, ok := s.Get("/data/photos")
		if !ok {
			t.Fatal("Get() returned not cached for a cached folder")
		}
		if len(info.Files) != 2 {
			t.Errorf("Files count = %d, want 2", len(info.Files))
		}
		if info.TotalSize != 200 {
			t.Errorf("TotalSize = %d, want 200", info.TotalSize)
		}
	})

	t.Run("CaseInsensitiveLookup", func(t *testing.T) {
		s := NewStore()
		s.Put("/Data/Photos", testFolderInfo("/Data/Photos/a.jpg"))

		if !s.IsCached("/data/PHOTOS") {
			t.Error("lookup should be case-insensitive")
		}
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		s := NewStore()
		s.Put("/data/x", testFolderInfo("/data/x/a"))

		info, _ := s.Get("/data/x")
		info.Files[0] = "mutated"

		again, _ := s.Get("/data/x")
		if again.Files[0] != "/data/x/a" {
			t.Error("mutating a returned slice should not affect the store")
		}
	})

	t.Run("NotCached", func(t *testing.T) {
		s := NewStore()
		if _, ok := s.Get("/nowhere"); ok {
			t.Error("Get() on an unknown folder should report not cached")
		}
	})
}

// TestStoreHashesAndMetadata tests the per-file maps
func TestStoreHashesAndMetadata(t *testing.T) {
	s := NewStore()

	s.PutHash("/data/x/a.bin", "abc123")
	if hash, ok := s.GetHash("/DATA/X/A.BIN"); !ok || hash != "abc123" {
		t.Errorf("GetHash = %q, %v, want abc123, true", hash, ok)
	}

	meta := models.FileMetadata{FileName: "a.bin", Size: 42}
	s.PutMetadata("/data/x/a.bin", meta)
	if got, ok := s.GetMetadata("/data/x/a.bin"); !ok || got.Size != 42 {
		t.Errorf("GetMetadata = %+v, %v, want size 42", got, ok)
	}
}

// TestRemoveSubtree tests separator-boundary prefix removal
func TestRemoveSubtree(t *testing.T) {
	s := NewStore()
	s.Put("/data/a", testFolderInfo("/data/a/f1"))
	s.Put("/data/a/sub", testFolderInfo("/data/a/sub/f2"))
	s.Put("/data/ab", testFolderInfo("/data/ab/f3"))
	s.PutHash("/data/a/f1", "h1")
	s.PutHash("/data/ab/f3", "h3")

	s.RemoveSubtree("/data/a")

	if s.IsCached("/data/a") {
		t.Error("root of removed subtree should be gone")
	}
	if s.IsCached("/data/a/sub") {
		t.Error("descendant of removed subtree should be gone")
	}
	if !s.IsCached("/data/ab") {
		t.Error("sibling sharing a name prefix must survive removal")
	}
	if _, ok := s.GetHash("/data/a/f1"); ok {
		t.Error("hash under removed subtree should be gone")
	}
	if _, ok := s.GetHash("/data/ab/f3"); !ok {
		t.Error("hash outside removed subtree must survive")
	}
}

// TestStoreClear tests full reset
func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Put("/data/a", testFolderInfo("/data/a/f"))
	s.PutHash("/data/a/f", "h")

	s.Clear()

	if s.FolderCount() != 0 {
		t.Errorf("FolderCount after Clear = %d, want 0", s.FolderCount())
	}
	if _, ok := s.GetHash("/data/a/f"); ok {
		t.Error("hashes should be gone after Clear")
	}
}

// TestCachedFolders tests display-path preservation
func TestCachedFolders(t *testing.T) {
	s := NewStore()
	s.Put("/Data/Photos", testFolderInfo())

	folders := s.CachedFolders()
	if len(folders) != 1 {
		t.Fatalf("CachedFolders length = %d, want 1", len(folders))
	}
	if folders[0] != "/Data/Photos" {
		t.Errorf("CachedFolders = %q, want original display path", folders[0])
	}
}
