// Package paths resolves project-relative locations.
package paths

import (
	"path/filepath"
	"strings"
)

// Resolve returns p unchanged when absolute, otherwise joined onto root.
// Configured locations such as the snapshot database are resolved this way.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// Relative names path relative to root with forward slashes.
// A root that is the file itself gives its base name; paths outside root
// keep their full, slash-normalized path.
func Relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Normalize(path)
	}
	if rel == "." {
		return filepath.Base(path)
	}
	if escapes(rel) {
		return Normalize(path)
	}
	return filepath.ToSlash(rel)
}

// IsWithin reports whether path lies under root.
func IsWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && !escapes(rel)
}

// Normalize converts separators to forward slashes.
func Normalize(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
