package documents

import (
	"path/filepath"
	"strings"
)

// resolveInside follows symlinks in path and reports whether the target stays under root.
// root must already be absolute and symlink-free.
func resolveInside(root, path string) (string, bool) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return "", false
	}
	return target, isWithin(root, target)
}

// isWithin reports whether path is root or lies beneath it.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
