package validator

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/erraggy/swaggen/internal/issues"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/resolver"
	"github.com/erraggy/swaggen/swagerrors"
)

// Severity indicates the severity level of a validation issue
type Severity = issues.Severity

const (
	// SeverityError indicates a violation that fails the specification
	SeverityError = issues.SeverityError
	// SeverityWarning indicates a recommendation
	SeverityWarning = issues.SeverityWarning
)

const (
	defaultErrorCapacity   = 10
	defaultWarningCapacity = 10

	// maxSchemaNestingDepth bounds recursion into nested schemas.
	maxSchemaNestingDepth = 100
)

// Issue represents a single validation issue
type Issue = issues.Issue

// Result contains the results of validating one resolved specification.
type Result struct {
	// Spec is the specification identifier
	Spec string
	// Valid is true if no errors were found (warnings are allowed)
	Valid bool
	// Errors contains all validation errors
	Errors []Issue
	// Warnings contains all validation warnings
	Warnings []Issue
	// ErrorCount is the total number of errors
	ErrorCount int
	// WarningCount is the total number of warnings
	WarningCount int
}

// ValidationErrors converts the errors of the result to
// [swagerrors.ValidationError] values.
func (r *Result) ValidationErrors() []*swagerrors.ValidationError {
	out := make([]*swagerrors.ValidationError, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, &swagerrors.ValidationError{
			Spec:     r.Spec,
			Path:     e.Path,
			Field:    e.Field,
			Value:    e.Value,
			Document: e.Document,
			Line:     e.Line,
			Column:   e.Column,
			Message:  e.Message,
		})
	}
	return out
}

// Err returns nil for a valid result, and otherwise every error joined.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.ValidationErrors() {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Validate checks spec, built for the run version, and returns every issue
// found. It never modifies spec.
func Validate(spec *resolver.ResolvedSpec, version string, opts ...Option) *Result {
	cfg := applyOptions(opts)
	v := &validator{
		cfg:     cfg,
		spec:    spec,
		version: version,
		result: &Result{
			Spec:     spec.ID,
			Errors:   make([]Issue, 0, defaultErrorCapacity),
			Warnings: make([]Issue, 0, defaultWarningCapacity),
		},
	}

	v.validateInfo()
	v.validateOperations()
	v.validateDefinitions()
	v.validateParameters()
	v.validateRelocations()

	sortIssues(v.result.Errors)
	sortIssues(v.result.Warnings)
	v.result.ErrorCount = len(v.result.Errors)
	v.result.WarningCount = len(v.result.Warnings)
	v.result.Valid = v.result.ErrorCount == 0

	cfg.logger.Debug("validated specification",
		"spec", spec.ID,
		"errors", v.result.ErrorCount,
		"warnings", v.result.WarningCount)
	return v.result
}

type validator struct {
	cfg     *config
	spec    *resolver.ResolvedSpec
	version string
	result  *Result
}

// addError appends a validation error.
func (v *validator) addError(path, message string, opts ...func(*Issue)) {
	issue := Issue{Path: path, Message: message, Severity: SeverityError}
	for _, opt := range opts {
		opt(&issue)
	}
	v.result.Errors = append(v.result.Errors, issue)
}

// addWarning appends a validation warning when warnings are enabled.
func (v *validator) addWarning(path, message string, opts ...func(*Issue)) {
	if !v.cfg.includeWarnings {
		return
	}
	issue := Issue{Path: path, Message: message, Severity: SeverityWarning}
	for _, opt := range opts {
		opt(&issue)
	}
	v.result.Warnings = append(v.result.Warnings, issue)
}

func withField(field string) func(*Issue) {
	return func(i *Issue) { i.Field = field }
}

func withValue(value any) func(*Issue) {
	return func(i *Issue) { i.Value = value }
}

// withSource records the declaring document and source position.
func withSource(document string, loc parser.SourceLocation) func(*Issue) {
	return func(i *Issue) {
		i.Document = document
		i.Line = loc.Line
		i.Column = loc.Column
		i.File = loc.File
	}
}

// withOperation attributes the issue to op and its source position.
func withOperation(op *resolver.Operation) func(*Issue) {
	return func(i *Issue) {
		i.Operation = op.Name
		withSource(op.Document, op.Location)(i)
	}
}

// sortIssues orders issues by path and then message, so results do not
// depend on map iteration order.
func sortIssues(list []Issue) {
	slices.SortStableFunc(list, func(a, b Issue) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), strings.Compare(a.Message, b.Message))
	})
}
