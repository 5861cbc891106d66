package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/swagerrors"
	"github.com/erraggy/swaggen/validator"
)

// Status is the final state of one specification in a run.
type Status string

const (
	// StatusWritten means every artifact of the specification was written.
	StatusWritten Status = "written"
	// StatusFailed means the specification failed a stage and nothing was written.
	StatusFailed Status = "failed"
	// StatusWithheld means the specification passed but was not written
	// because another one failed under PolicyAllOrNothing.
	StatusWithheld Status = "withheld"
	// StatusSkipped means the run was cancelled before the specification was written.
	StatusSkipped Status = "skipped"
)

// Stage names a pipeline stage in diagnostics.
type Stage string

const (
	StageDiscovery Stage = "discovery"
	StageParse     Stage = "parse"
	StageResolve   Stage = "resolve"
	StageValidate  Stage = "validate"
	StageWrite     Stage = "write"
	StageAggregate Stage = "aggregate"
	StageConfig    Stage = "config"
)

// SpecOutcome is what happened to one specification.
type SpecOutcome struct {
	Spec      string
	Status    Status
	Documents []string
	// Artifacts are the paths written, one per format.
	Artifacts []string
	// Errors are the failures of every stage, in stage order.
	Errors []error
	// Warnings are the validation warnings.
	Warnings []validator.Issue

	Operations  int
	Definitions int
	Parameters  int
}

// Failed reports whether the specification failed on its own.
func (o *SpecOutcome) Failed() bool {
	return o.Status == StatusFailed
}

// BuildResult is the complete account of a run.
type BuildResult struct {
	// RunID identifies the run in log records.
	RunID      string
	Version    string
	SourceRoot string
	OutputRoot string
	Policy     Policy

	// Specs holds one outcome per selected specification, sorted by identifier.
	Specs []*SpecOutcome
	// Aggregate is the outcome of the combined artifact, if one was requested.
	Aggregate *SpecOutcome
	// Errors are failures not owned by a specification: root info document
	// errors and the fatal error that ended the run, if any.
	Errors []error

	Duration time.Duration
}

// Success reports whether every selected specification was written and no
// run-level error occurred.
func (r *BuildResult) Success() bool {
	if len(r.Errors) > 0 {
		return false
	}
	if r.Aggregate != nil && r.Aggregate.Status != StatusWritten {
		return false
	}
	for _, o := range r.Specs {
		if o.Status != StatusWritten {
			return false
		}
	}
	return true
}

// Outcome returns the outcome of spec, or nil if it was not part of the run.
func (r *BuildResult) Outcome(spec string) *SpecOutcome {
	for _, o := range r.Specs {
		if o.Spec == spec {
			return o
		}
	}
	return nil
}

// Failed returns the outcomes of the specifications that failed on their own.
func (r *BuildResult) Failed() []*SpecOutcome {
	var out []*SpecOutcome
	for _, o := range r.Specs {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// Count returns the number of specifications with status s.
func (r *BuildResult) Count(s Status) int {
	n := 0
	for _, o := range r.Specs {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Diagnostic is one error of a run, flattened for reporting.
type Diagnostic struct {
	Stage    Stage                 `json:"stage" yaml:"stage"`
	Spec     string                `json:"spec,omitempty" yaml:"spec,omitempty"`
	Document string                `json:"document,omitempty" yaml:"document,omitempty"`
	Location parser.SourceLocation `json:"location" yaml:"location"`
	Message  string                `json:"message" yaml:"message"`
}

// String formats the diagnostic as "stage spec document:line:col: message".
func (d Diagnostic) String() string {
	s := string(d.Stage)
	if d.Spec != "" {
		s += " " + d.Spec
	}
	if d.Document != "" {
		s += " " + d.Document
		if d.Location.IsKnown() {
			s += fmt.Sprintf(":%d:%d", d.Location.Line, d.Location.Column)
		}
	}
	return s + ": " + d.Message
}

// Diagnostics returns every error of the run in a stable order: run-level
// errors first, then each specification in identifier order, then the aggregate.
func (r *BuildResult) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, err := range r.Errors {
		out = append(out, diagnose("", err))
	}
	for _, o := range r.Specs {
		for _, err := range o.Errors {
			out = append(out, diagnose(o.Spec, err))
		}
	}
	if r.Aggregate != nil {
		for _, err := range r.Aggregate.Errors {
			out = append(out, diagnose(r.Aggregate.Spec, err))
		}
	}
	return out
}

func diagnose(spec string, err error) Diagnostic {
	d := Diagnostic{Spec: spec, Message: err.Error()}

	var (
		de *swagerrors.DiscoveryError
		pe *swagerrors.ParseError
		re *swagerrors.ResolutionError
		ve *swagerrors.ValidationError
		we *swagerrors.WriteError
		ce *swagerrors.CancelledError
	)
	switch {
	case errors.As(err, &pe):
		d.Stage = StageParse
		d.Document = pe.Document
		d.Location = parser.SourceLocation{Line: pe.Line, Column: pe.Column, File: pe.Path}
		d.Message = pe.Message
		if pe.Cause != nil {
			d.Message += ": " + pe.Cause.Error()
		}
	case errors.As(err, &re):
		d.Stage = StageResolve
		d.Document = re.Document
		d.Location = parser.SourceLocation{Line: re.Line, Column: re.Column}
	case errors.As(err, &ve):
		d.Stage = StageValidate
		d.Document = ve.Document
		d.Location = parser.SourceLocation{Line: ve.Line, Column: ve.Column}
		d.Message = ve.Message
		if ve.Path != "" {
			d.Message = ve.Path + ": " + ve.Message
		}
	case errors.As(err, &we):
		d.Stage = StageWrite
		d.Location = parser.SourceLocation{File: we.Path}
	case errors.As(err, &de):
		d.Stage = StageDiscovery
	case errors.As(err, &ce):
		d.Stage = Stage(ce.Stage)
	case errors.Is(err, swagerrors.ErrConfig):
		d.Stage = StageConfig
	default:
		// Aggregate conflicts are the only untyped errors.
		d.Stage = StageAggregate
	}
	return d
}

// flatten splits errors joined with errors.Join.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
