package dupes

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/models"
	"github.com/jvanloock/dupdirs/pkg/recovery"
	"github.com/jvanloock/dupdirs/pkg/storage"
)

// makeFolder creates a real folder with the given files and caches it
// in the store the way the scanner would.
func makeFolder(t *testing.T, store *cache.Store, root, name string, files map[string]string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create fixture folder: %v", err)
	}

	info := models.FolderInfo{}
	for fileName, content := range files {
		path := writeFile(t, dir, fileName, content)
		info.Files = append(info.Files, path)
		info.TotalSize += int64(len(content))

		stat, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat fixture: %v", err)
		}
		mod := stat.ModTime()
		info.LatestModification = &mod

		store.PutMetadata(path, models.FileMetadata{
			FileName:      fileName,
			Size:          int64(len(content)),
			LastWriteTime: stat.ModTime(),
		})
	}

	store.Put(dir, info)
	return dir
}

func newTestFinder(store *cache.Store, backend storage.Backend) *Finder {
	policy := recovery.NewPolicy(nil)
	hasher := NewHasher(backend, store, policy, 0)
	return NewFinder(store, policy, hasher, nil)
}

// TestFindDuplicates tests the three-stage pipeline end to end
func TestFindDuplicates(t *testing.T) {
	t.Run("CrossFolderDuplicate", func(t *testing.T) {
		root := t.TempDir()
		store := cache.NewStore()
		a := makeFolder(t, store, root, "a", map[string]string{"song.mp3": "identical bytes"})
		b := makeFolder(t, store, root, "b", map[string]string{"song.mp3": "identical bytes"})

		finder := newTestFinder(store, storage.NewLocal())
		matches, err := finder.FindDuplicates(context.Background(), []string{a, b})
		if err != nil {
			t.Fatalf("FindDuplicates failed: %v", err)
		}

		if len(matches) != 1 {
			t.Fatalf("matches = %d, want 1", len(matches))
		}
		if filepath.Dir(matches[0].PathA) != a || filepath.Dir(matches[0].PathB) != b {
			t.Errorf("match not in canonical folder order: %+v", matches[0])
		}
	})

	t.Run("SameNameSizeDifferentContent", func(t *testing.T) {
		root := t.TempDir()
		store := cache.NewStore()
		a := makeFolder(t, store, root, "a", map[string]string{"data.bin": "AAAAAAAA"})
		b := makeFolder(t, store, root, "b", map[string]string{"data.bin": "BBBBBBBB"})

		finder := newTestFinder(store, storage.NewLocal())
		matches, err := finder.FindDuplicates(context.Background(), []string{a, b})
		if err != nil {
			t.Fatalf("FindDuplicates failed: %v", err)
		}

		if len(matches) != 0 {
			t.Errorf("same name and size with different content matched: %+v", matches)
		}
	})

	t.Run("CaseInsensitiveNameIndex", func(t *testing.T) {
		root := t.TempDir()
		store := cache.NewStore()
		a := makeFolder(t, store, root, "a", map[string]string{"Report.TXT": "quarterly"})
		b := makeFolder(t, store, root, "b", map[string]string{"report.txt": "quarterly"})

		finder := newTestFinder(store, storage.NewLocal())
		matches, err := finder.FindDuplicates(context.Background(), []string{a, b})
		if err != nil {
			t.Fatalf("FindDuplicates failed: %v", err)
		}

		if len(matches) != 1 {
			t.Errorf("case-differing names should still bucket together, got %d matches", len(matches))
		}
	})

	t.Run("SameFolderPairsNeverCompared", func(t *testing.T) {
		root := t.TempDir()
		store := cache.NewStore()
		// Folder a holds two case-variant copies; both pair with b's
		// copy, but never with each other.
		a := makeFolder(t, store, root, "a", map[string]string{
			"Notes.txt": "shared text",
			"notes.TXT": "shared text",
		})
		b := makeFolder(t, store, root, "b", map[string]string{"notes.txt": "shared text"})

		finder := newTestFinder(store, storage.NewLocal())
		matches, err := finder.FindDuplicates(context.Background(), []string{a, b})
		if err != nil {
			t.Fatalf("FindDuplicates failed: %v", err)
		}

		if len(matches) != 2 {
			t.Fatalf("matches = %d, want 2 (each a-file with the b-file)", len(matches))
		}
		for _, m := range matches {
			if filepath.Dir(m.PathA) == filepath.Dir(m.PathB) {
				t.Errorf("same-folder pair matched: %+v", m)
			}
		}
	})

	t.Run("ShortCircuitWithoutCandidates", func(t *testing.T) {
		root := t.TempDir()
		store := cache.NewStore()
		a := makeFolder(t, store, root, "a", map[string]string{"only.txt": "alone"})
		b := makeFolder(t, store, root, "b", map[string]string{"other.txt": "different"})

		backend := newCountingBackend()
		finder := newTestFinder(store, backend)
		matches, err := finder.FindDuplicates(context.Background(), []string{a, b})
		if err != nil {
			t.Fatalf("FindDuplicates failed: %v", err)
		}

		if len(matches) != 0 {
			t.Errorf("matches = %d, want 0", len(matches))
		}
		if backend.reads.Load() != 0 {
			t.Errorf("no candidates should mean no hashing, got %d reads", backend.reads.Load())
		}
	})

	t.Run("HashFailureDegradesToSkip", func(t *testing.T) {
		root := t.TempDir()
		store := cache.NewStore()
		a := makeFolder(t, store, root, "a", map[string]string{"f.dat": "12345678"})
		b := makeFolder(t, store, root, "b", map[string]string{"f.dat": "12345678"})

		backend := newCountingBackend()
		backend.failReads = os.ErrPermission

		policy := recovery.NewPolicy(nil)
		hasher := NewHasher(backend, store, policy, 0)
		finder := NewFinder(store, policy, hasher, nil)

		matches, err := finder.FindDuplicates(context.Background(), []string{a, b})
		if err != nil {
			t.Fatalf("hash failures should not fail the run: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("unhashable files matched: %+v", matches)
		}
		if !policy.Summary().HasErrors() {
			t.Error("hash failures should be recorded with the policy")
		}
	})

	t.Run("CancellationBeforeStart", func(t *testing.T) {
		root := t.TempDir()
		store := cache.NewStore()
		a := makeFolder(t, store, root, "a", map[string]string{"f": "x"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		finder := newTestFinder(store, storage.NewLocal())
		start := time.Now()
		_, err := finder.FindDuplicates(ctx, []string{a})
		if err != context.Canceled {
			t.Errorf("FindDuplicates with cancelled context = %v, want context.Canceled", err)
		}
		if time.Since(start) > time.Second {
			t.Error("cancellation before start should return promptly")
		}
	})

	t.Run("CancellationWinsOverEmptyInput", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		finder := newTestFinder(cache.NewStore(), storage.NewLocal())
		matches, err := finder.FindDuplicates(ctx, nil)
		if err != context.Canceled {
			t.Errorf("FindDuplicates(cancelled, empty) = (%v, %v), want context.Canceled", matches, err)
		}
	})
}
