package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizeKey normalizes a path for use as a case-insensitive cache
// key: cleaned, separators unified, trailing separators stripped,
// lowercased. "C:\A\" and "c:\a" normalize to the same key.
func NormalizeKey(path string) string {
	normalized := filepath.ToSlash(filepath.Clean(strings.ReplaceAll(path, `\`, "/")))
	// Clean collapses "//server" to "/server"; keep the UNC marker so
	// network detection still works on the key.
	if strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//") {
		normalized = "//" + strings.TrimLeft(normalized, "/")
	}
	if len(normalized) > 1 {
		normalized = strings.TrimRight(normalized, "/")
	}
	return strings.ToLower(normalized)
}

// IsDescendantKey reports whether key lies at or under root, where
// both are normalized keys. The comparison is separator-aware, so
// "c:/a" never matches "c:/ab".
func IsDescendantKey(key, root string) bool {
	if key == root {
		return true
	}
	return strings.HasPrefix(key, root+"/")
}

// IsNetworkPath reports whether a path points at a network location:
// a UNC path on any platform, or a mapped network drive on Windows.
func IsNetworkPath(path string) bool {
	if IsUNCPath(path) {
		return true
	}
	return runtime.GOOS == "windows" && isMappedDrive(path)
}

// IsUNCPath checks for a \\server\share style path.
func IsUNCPath(path string) bool {
	return strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
}

// UNCHost extracts the server component of a UNC path, or "" if the
// path is not UNC.
func UNCHost(path string) string {
	if !IsUNCPath(path) {
		return ""
	}
	trimmed := strings.TrimLeft(filepath.ToSlash(strings.ReplaceAll(path, `\`, "/")), "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// isMappedDrive treats any drive letter past the usual local range as
// possibly mapped; callers combine this with a reachability check, so
// a false positive only costs one probe.
func isMappedDrive(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	letter := path[0] | 0x20
	return letter >= 'e' && letter <= 'z'
}
