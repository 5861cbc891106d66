package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erraggy/swaggen/internal/pathutil"
)

// validatePathTemplate reports a malformed path template: empty, nested or
// unbalanced braces, duplicate variables, consecutive slashes, or a reserved
// '#' or '?'.
func validatePathTemplate(pathPattern string) error {
	if strings.Contains(pathPattern, "{}") {
		return errors.New("empty parameter name in path template")
	}
	if strings.Contains(pathPattern, "//") {
		return errors.New("path contains consecutive slashes")
	}
	if i := strings.IndexAny(pathPattern, "#?"); i >= 0 {
		return fmt.Errorf("path contains reserved character '%c'", pathPattern[i])
	}

	depth := 0
	for i, ch := range pathPattern {
		switch ch {
		case '{':
			depth++
			if depth > 1 {
				return fmt.Errorf("nested braces are not allowed at position %d", i)
			}
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("unexpected closing brace at position %d", i)
			}
		}
	}
	if depth != 0 {
		return errors.New("unclosed brace in path template")
	}

	seen := make(map[string]bool)
	for _, name := range pathutil.TemplateParams(pathPattern) {
		if strings.TrimSpace(name) == "" {
			return errors.New("empty parameter name in path template")
		}
		if seen[name] {
			return fmt.Errorf("duplicate parameter name '%s' in path template", name)
		}
		seen[name] = true
	}
	return nil
}

// extractPathParameters extracts parameter names from a path template
// e.g., "/pets/{petId}/owners/{ownerId}" -> {"petId": true, "ownerId": true}
func extractPathParameters(pathPattern string) map[string]bool {
	params := make(map[string]bool)
	for _, name := range pathutil.TemplateParams(pathPattern) {
		params[name] = true
	}
	return params
}
