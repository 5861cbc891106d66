// Package issues provides the issue type reported when validating resolved
// specifications.
package issues

import (
	"fmt"
	"strings"
)

// Severity indicates whether an issue fails a specification.
type Severity int

const (
	// SeverityError fails the specification.
	SeverityError Severity = iota
	// SeverityWarning is reported but never fails the specification.
	SeverityWarning
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Issue represents a single problem found in a resolved specification.
type Issue struct {
	// Path is the JSON path in the artifact (e.g., "paths./pets.get.responses")
	Path string
	// Message is a human-readable description of the issue
	Message string
	// Severity indicates the severity level of the issue
	Severity Severity
	// Field is the specific field name that has the issue
	Field string
	// Value is the problematic value (optional)
	Value any
	// Operation is the name of the operation the issue belongs to, if any
	Operation string
	// Document is the source document of the offending declaration
	Document string
	// Line is the 1-based line number in the source file (0 if unknown)
	Line int
	// Column is the 1-based column number in the source file (0 if unknown)
	Column int
	// File is the source file path
	File string
}

// String returns a formatted string representation of the issue.
// Errors are prefixed with "✗" and warnings with "⚠".
func (i Issue) String() string {
	symbol := "?"
	switch i.Severity {
	case SeverityError:
		symbol = "✗"
	case SeverityWarning:
		symbol = "⚠"
	}

	path := i.Path
	if i.Operation != "" {
		path = fmt.Sprintf("%s (operation: %s)", i.Path, i.Operation)
	}
	if i.HasLocation() {
		return fmt.Sprintf("%s %s (%s): %s", symbol, path, i.Location(), i.Message)
	}
	return fmt.Sprintf("%s %s: %s", symbol, path, i.Message)
}

// Location returns the source location in IDE-friendly format.
// Returns "file:line:column" if file is set, "line:column" if only line is set,
// or the JSON path if location is unknown.
func (i Issue) Location() string {
	if i.Line == 0 {
		return i.Path
	}
	if i.File != "" {
		return fmt.Sprintf("%s:%d:%d", i.File, i.Line, i.Column)
	}
	return fmt.Sprintf("%d:%d", i.Line, i.Column)
}

// HasLocation returns true if this issue has source location information.
func (i Issue) HasLocation() bool {
	return i.Line > 0
}

// FormatPath joins JSON path segments with dots.
func FormatPath(segments ...string) string {
	return strings.Join(segments, ".")
}
