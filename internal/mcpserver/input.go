package mcpserver

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/erraggy/swaggen/discovery"
)

// resolveSource returns the absolute source root after checking that it is
// a readable directory.
func resolveSource(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", errors.New("source is required")
	}
	root, err := filepath.Abs(source)
	if err != nil {
		return "", err
	}
	if err := discovery.New(root).Check(); err != nil {
		return "", err
	}
	return root, nil
}

// relative returns path relative to root, or path when it is not below root.
func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
