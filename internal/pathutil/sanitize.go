package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeOutputPath cleans target, resolves it against root, and checks
// that the result stays inside root and is not a symlink. New files in
// missing directories are accepted. Returns the cleaned absolute path.
func SanitizeOutputPath(root, target string) (string, error) {
	absRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("pathutil: cannot resolve output root: %w", err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(absRoot, target)
	}
	abs, err := filepath.Abs(filepath.Clean(target))
	if err != nil {
		return "", fmt.Errorf("pathutil: cannot resolve absolute path: %w", err)
	}

	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("pathutil: %s escapes output root %s", abs, absRoot)
	}

	info, err := os.Lstat(abs)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("pathutil: refusing to write to symlink: %s", abs)
		}
	case os.IsNotExist(err):
	default:
		return "", fmt.Errorf("pathutil: cannot stat path: %w", err)
	}
	return abs, nil
}
