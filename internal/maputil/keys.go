// Package maputil provides helpers for deterministic map iteration.
package maputil

import "slices"

// SortedKeys returns the keys of m in ascending order. A nil or empty map
// yields an empty, non-nil slice.
func SortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
