package match

import (
	"testing"

	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/models"
)

func detailStore(t *testing.T) *cache.Store {
	t.Helper()
	store := cache.NewStore()

	store.Put("/data/left", models.FolderInfo{
		Files: []string{"/data/left/shared.txt", "/data/left/only-left.txt"},
	})
	store.PutMetadata("/data/left/shared.txt", models.FileMetadata{FileName: "shared.txt", Size: 100})
	store.PutMetadata("/data/left/only-left.txt", models.FileMetadata{FileName: "only-left.txt", Size: 50})

	store.Put("/data/right", models.FolderInfo{
		Files: []string{"/data/right/SHARED.TXT", "/data/right/only-right.txt"},
	})
	store.PutMetadata("/data/right/SHARED.TXT", models.FileMetadata{FileName: "SHARED.TXT", Size: 100})
	// only-right.txt deliberately has no metadata

	return store
}

// TestBuildFileDetails tests the side-by-side union listing
func TestBuildFileDetails(t *testing.T) {
	store := detailStore(t)
	duplicates := []models.FileMatch{
		models.NewFileMatch("/data/left/shared.txt", "/data/right/SHARED.TXT"),
	}

	details := BuildFileDetails("/data/left", "/data/right", duplicates, store)

	if len(details) != 3 {
		t.Fatalf("details = %d entries, want 3 (case-insensitive union)", len(details))
	}

	byName := make(map[string]models.FileDetail)
	for _, d := range details {
		byName[d.FileName] = d
	}

	shared, ok := byName["shared.txt"]
	if !ok {
		t.Fatal("shared.txt missing from details")
	}
	if !shared.IsDuplicate {
		t.Error("shared.txt should be classified duplicate")
	}
	if !shared.InLeft || !shared.InRight {
		t.Errorf("shared.txt sides = left %v right %v, want both", shared.InLeft, shared.InRight)
	}
	if shared.Left == nil || shared.Right == nil {
		t.Error("shared.txt should carry metadata on both sides")
	}

	left := byName["only-left.txt"]
	if left.IsDuplicate {
		t.Error("only-left.txt should be unique")
	}
	if !left.InLeft || left.InRight {
		t.Errorf("only-left.txt sides = left %v right %v", left.InLeft, left.InRight)
	}

	right := byName["only-right.txt"]
	if !right.InRight {
		t.Error("only-right.txt should be present on the right")
	}
	if right.Right != nil {
		t.Error("only-right.txt has no cached metadata; Right should be nil")
	}
}

// TestFilterDetails tests duplicate-only filtering
func TestFilterDetails(t *testing.T) {
	details := []models.FileDetail{
		{FileName: "dup.txt", IsDuplicate: true},
		{FileName: "unique.txt", IsDuplicate: false},
	}

	t.Run("DuplicatesOnly", func(t *testing.T) {
		out := FilterDetails(details, false)
		if len(out) != 1 || out[0].FileName != "dup.txt" {
			t.Errorf("filtered = %+v, want only dup.txt", out)
		}
	})

	t.Run("IncludeUnique", func(t *testing.T) {
		out := FilterDetails(details, true)
		if len(out) != 2 {
			t.Errorf("filtered = %d entries, want 2", len(out))
		}
	})
}
