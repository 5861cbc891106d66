package swagerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrDiscovery indicates the source tree could not be enumerated.
	ErrDiscovery = errors.New("discovery error")

	// ErrParse indicates a definition file could not be parsed.
	ErrParse = errors.New("parse error")

	// ErrResolution indicates a reference resolution failure of any kind.
	ErrResolution = errors.New("resolution error")

	// ErrUnresolved indicates a reference with no matching declaration.
	ErrUnresolved = errors.New("unresolved reference")

	// ErrAmbiguous indicates a reference matching more than one declaration.
	ErrAmbiguous = errors.New("ambiguous reference")

	// ErrCycle indicates an illegal reference cycle.
	ErrCycle = errors.New("reference cycle")

	// ErrDuplicateIdentifier indicates two sources claiming the same identifier or output path.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrValidation indicates a resolved specification failed validation.
	ErrValidation = errors.New("validation error")

	// ErrWrite indicates an artifact could not be written.
	ErrWrite = errors.New("write error")

	// ErrCancelled indicates the run was cancelled.
	ErrCancelled = errors.New("cancelled")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// DiscoveryError represents a failure to enumerate the source root.
// It is fatal for the whole run.
type DiscoveryError struct {
	// Root is the source root that was being walked
	Root string
	// Path is the entry that failed (empty when the root itself failed)
	Path string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *DiscoveryError) Error() string {
	msg := "discovery error"
	if e.Root != "" {
		msg += " in " + e.Root
	}
	if e.Path != "" && e.Path != e.Root {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *DiscoveryError) Is(target error) bool {
	return target == ErrDiscovery
}

// ParseError represents a failure to parse one definition file.
type ParseError struct {
	// Document is the logical document identifier (e.g., "petstore/pets")
	Document string
	// Path is the file path
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	switch {
	case e.Path != "":
		msg += " in " + e.Path
	case e.Document != "":
		msg += " in " + e.Document
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ResolutionKind classifies a ResolutionError.
type ResolutionKind string

const (
	// KindUnresolved means no declaration matched the reference.
	KindUnresolved ResolutionKind = "unresolved"
	// KindAmbiguous means several declarations matched with equal priority.
	KindAmbiguous ResolutionKind = "ambiguous"
	// KindCycle means an illegal reference cycle was found.
	KindCycle ResolutionKind = "cycle"
	// KindDuplicateIdentifier means two sources map to the same identifier or output path.
	KindDuplicateIdentifier ResolutionKind = "duplicate-identifier"
)

// ResolutionError represents a failure to link references between definitions.
type ResolutionError struct {
	// Kind classifies the failure
	Kind ResolutionKind
	// Spec is the specification identifier the error is attached to
	Spec string
	// Document is the document holding the reference (or the duplicate source)
	Document string
	// Reference is the reference token as written
	Reference string
	// Line is the line of the reference in Document (0 if unknown)
	Line int
	// Column is the column of the reference in Document (0 if unknown)
	Column int
	// Candidates lists matching (ambiguous) or near-matching (unresolved)
	// declarations as "document#Name"
	Candidates []string
	// Chain lists every declaration of a cycle, first element repeated at the end
	Chain []string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResolutionError) Error() string {
	var msg string
	switch e.Kind {
	case KindUnresolved:
		msg = "unresolved reference"
	case KindAmbiguous:
		msg = "ambiguous reference"
	case KindCycle:
		msg = "reference cycle"
	case KindDuplicateIdentifier:
		msg = "duplicate identifier"
	default:
		msg = "resolution error"
	}
	if e.Reference != "" {
		msg += " " + quote(e.Reference)
	}
	if e.Document != "" {
		msg += " in " + e.Document
		if e.Line > 0 {
			msg += fmt.Sprintf(":%d:%d", e.Line, e.Column)
		}
	}
	if len(e.Chain) > 0 {
		msg += ": " + strings.Join(e.Chain, " -> ")
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Candidates) > 0 {
		msg += " (candidates: " + strings.Join(e.Candidates, ", ") + ")"
	}
	return msg
}

// Is reports whether target matches this error type.
// Matches ErrResolution, and the sentinel of its Kind.
func (e *ResolutionError) Is(target error) bool {
	switch target {
	case ErrResolution:
		return true
	case ErrUnresolved:
		return e.Kind == KindUnresolved
	case ErrAmbiguous:
		return e.Kind == KindAmbiguous
	case ErrCycle:
		return e.Kind == KindCycle
	case ErrDuplicateIdentifier:
		return e.Kind == KindDuplicateIdentifier
	}
	return false
}

// ValidationError represents a structural violation in a resolved specification.
type ValidationError struct {
	// Spec is the specification identifier
	Spec string
	// Path is the JSON path to the problematic field (e.g., "paths./pets.post.responses")
	Path string
	// Field is the specific field name with the issue
	Field string
	// Value is the problematic value (may be nil)
	Value any
	// Document is the source document of the offending declaration, if known
	Document string
	// Line is the source line (0 if unknown)
	Line int
	// Column is the source column (0 if unknown)
	Column int
	// Message describes the validation failure
	Message string
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.Spec != "" {
		msg += " in " + e.Spec
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Field != "" {
		msg += "." + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// WriteError represents a failure to write an artifact.
type WriteError struct {
	// Spec is the specification identifier
	Spec string
	// Path is the artifact path
	Path string
	// Cause is the underlying error
	Cause error
}

// Error returns a human-readable error message.
func (e *WriteError) Error() string {
	msg := "write error"
	if e.Spec != "" {
		msg += " for " + e.Spec
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// CancelledError reports that the run stopped because its context ended.
type CancelledError struct {
	// Stage is the pipeline stage that observed the cancellation
	Stage string
	// Cause is the context error (context.Canceled or context.DeadlineExceeded)
	Cause error
}

// Error returns a human-readable error message.
func (e *CancelledError) Error() string {
	msg := "cancelled"
	if e.Stage != "" {
		msg += " during " + e.Stage
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the context error so errors.Is(err, context.Canceled) works.
func (e *CancelledError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// IsFatal reports whether err aborts a whole run rather than a single specification.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDiscovery) || errors.Is(err, ErrCancelled) || errors.Is(err, ErrConfig)
}

func quote(s string) string {
	return "\"" + s + "\""
}
