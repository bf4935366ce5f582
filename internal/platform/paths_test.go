package platform

import (
	"testing"
)

// TestNormalizeKey tests cache key normalization
func TestNormalizeKey(t *testing.T) {
	t.Run("CaseInsensitive", func(t *testing.T) {
		if NormalizeKey(`C:\Photos\Summer`) != NormalizeKey(`c:\photos\SUMMER`) {
			t.Error("keys differing only by case should normalize identically")
		}
	})

	t.Run("SeparatorsUnified", func(t *testing.T) {
		if NormalizeKey(`C:\Photos\Summer`) != NormalizeKey("C:/Photos/Summer") {
			t.Error("backslash and slash paths should normalize identically")
		}
	})

	t.Run("TrailingSeparatorStripped", func(t *testing.T) {
		if NormalizeKey("/data/photos/") != NormalizeKey("/data/photos") {
			t.Error("trailing separator should not change the key")
		}
	})

	t.Run("UNCMarkerPreserved", func(t *testing.T) {
		key := NormalizeKey(`\\server\share\dir`)
		if !IsUNCPath(key) {
			t.Errorf("normalized UNC key %q lost its UNC marker", key)
		}
	})
}

// TestIsDescendantKey tests separator-aware subtree matching
func TestIsDescendantKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		root string
		want bool
	}{
		{"SameFolder", "/data/a", "/data/a", true},
		{"ChildFolder", "/data/a/b", "/data/a", true},
		{"DeepDescendant", "/data/a/b/c/d", "/data/a", true},
		{"SiblingWithSharedPrefix", "/data/ab", "/data/a", false},
		{"Parent", "/data", "/data/a", false},
		{"Unrelated", "/other/a", "/data/a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDescendantKey(tt.key, tt.root); got != tt.want {
				t.Errorf("IsDescendantKey(%q, %q) = %v, want %v", tt.key, tt.root, got, tt.want)
			}
		})
	}
}

// TestUNCHost tests server extraction from UNC paths
func TestUNCHost(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{`\\fileserver\share\dir`, "fileserver"},
		{"//fileserver/share", "fileserver"},
		{`\\host`, "host"},
		{"/local/path", ""},
		{`C:\local`, ""},
	}

	for _, tt := range tests {
		if got := UNCHost(tt.path); got != tt.want {
			t.Errorf("UNCHost(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
