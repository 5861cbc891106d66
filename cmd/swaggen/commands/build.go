package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erraggy/swaggen"
	"github.com/erraggy/swaggen/builder"
	"github.com/erraggy/swaggen/internal/cliutil"
	"github.com/erraggy/swaggen/internal/config"
)

// ErrBuildFailed is returned when the build finished but not every
// specification was written. The report has already been printed.
var ErrBuildFailed = errors.New("build failed")

// BuildFlags contains flags for the build command
type BuildFlags struct {
	Version           string
	Format            string
	Policy            string
	RefMode           string
	RelocateResponses bool
	Profiles          string
	Specs             string
	Aggregate         string
	Workers           int
	Timeout           time.Duration
	OutputFormat      string
	Strict            bool
	Verbose           bool
	Quiet             bool
}

// SetupBuildFlags creates and configures a FlagSet for the build command.
// Flag defaults come from cfg, which is usually loaded from the environment.
func SetupBuildFlags(cfg *config.Config) (*flag.FlagSet, *BuildFlags) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	flags := &BuildFlags{}

	fs.StringVar(&flags.Version, "version", cfg.Version, "version string embedded in every artifact (required)")
	fs.StringVar(&flags.Format, "format", strings.Join(cfg.Formats, ","), "comma-separated artifact formats: json, yaml")
	fs.StringVar(&flags.Policy, "policy", cfg.Policy, "failure policy: partial or all-or-nothing")
	fs.StringVar(&flags.RefMode, "ref-mode", cfg.RefMode, "reference rendering: link or inline")
	fs.BoolVar(&flags.RelocateResponses, "relocate-responses", cfg.RelocateResponses, "move named inline response schemas into definitions")
	fs.StringVar(&flags.Profiles, "profiles", strings.Join(cfg.Profiles, ","), "comma-separated profiles; build only specifications tagged with one of them")
	fs.StringVar(&flags.Specs, "specs", strings.Join(cfg.Specs, ","), "comma-separated specification identifiers to build")
	fs.StringVar(&flags.Aggregate, "aggregate", cfg.Aggregate, "also write every built specification merged into this artifact")
	fs.IntVar(&flags.Workers, "workers", cfg.Workers, "worker pool size (0 means GOMAXPROCS)")
	fs.DurationVar(&flags.Timeout, "timeout", cfg.Timeout, "abort the build after this duration (0 means no limit)")
	fs.StringVar(&flags.OutputFormat, "output-format", FormatText, "report format: text, json, or yaml")
	fs.BoolVar(&flags.Strict, "strict", cfg.Strict, "enable strict validation")
	fs.BoolVar(&flags.Verbose, "verbose", cfg.Verbose, "log every stage at debug level")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: print only the summary line")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: print only the summary line")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: swaggen build [flags] <sourceDir> <outputDir>\n\n")
		cliutil.Writef(fs.Output(), "Build Swagger 2.0 artifacts from a tree of fragmentary definition files.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nEnvironment:\n")
		cliutil.Writef(fs.Output(), "  Every flag default can be set with a %s* variable,\n", config.EnvPrefix)
		cliutil.Writef(fs.Output(), "  e.g. %sVERSION, %sFORMAT, %sPOLICY.\n", config.EnvPrefix, config.EnvPrefix, config.EnvPrefix)
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  swaggen build --version 2.3.0 defs out\n")
		cliutil.Writef(fs.Output(), "  swaggen build --version 2.3.0 --format yaml --specs petstore defs out\n")
		cliutil.Writef(fs.Output(), "  swaggen build --version 2.3.0 --policy all-or-nothing --aggregate all defs out\n")
		cliutil.Writef(fs.Output(), "  swaggen build --version 2.3.0 --output-format json defs out | jq '.success'\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Every selected specification was written\n")
		cliutil.Writef(fs.Output(), "  1    At least one specification failed or was withheld\n")
	}

	return fs, flags
}

// apply returns a copy of base with the flag values applied.
func (f *BuildFlags) apply(base *config.Config) *config.Config {
	cfg := *base
	cfg.Version = f.Version
	cfg.Formats = splitList(f.Format)
	cfg.Policy = f.Policy
	cfg.RefMode = f.RefMode
	cfg.RelocateResponses = f.RelocateResponses
	cfg.Profiles = splitList(f.Profiles)
	cfg.Specs = splitList(f.Specs)
	cfg.Aggregate = f.Aggregate
	cfg.Workers = f.Workers
	cfg.Timeout = f.Timeout
	cfg.Strict = f.Strict
	cfg.Verbose = f.Verbose
	return &cfg
}

// HandleBuild executes the build command. Reports in json or yaml go to
// stdout; text reports and logs go to stderr.
func HandleBuild(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	defaults, err := config.Load()
	if err != nil {
		return err
	}
	fs, flags := SetupBuildFlags(defaults)
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("build command requires a source directory and an output directory")
	}
	if err := ValidateOutputFormat(flags.OutputFormat); err != nil {
		return err
	}

	cfg := flags.apply(defaults)
	opts, err := cfg.Options(NewLogger(stderr, cfg.Verbose))
	if err != nil {
		return err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	res, buildErr := builder.Build(ctx, fs.Arg(0), fs.Arg(1), cfg.Version, opts...)

	if flags.OutputFormat == FormatJSON || flags.OutputFormat == FormatYAML {
		if err := OutputStructured(stdout, NewBuildReport(res), flags.OutputFormat); err != nil {
			return err
		}
	} else {
		printBuildText(stderr, res, flags.Quiet)
	}

	if buildErr != nil {
		return buildErr
	}
	if !res.Success() {
		return ErrBuildFailed
	}
	return nil
}

func printBuildText(w io.Writer, res *builder.BuildResult, quiet bool) {
	if !quiet {
		cliutil.Writef(w, "Swagger Artifact Builder\n")
		cliutil.Writef(w, "========================\n\n")
		cliutil.Writef(w, "swaggen version: %s\n", swaggen.Version())
		cliutil.Writef(w, "Run ID: %s\n", res.RunID)
		cliutil.Writef(w, "Source: %s\n", res.SourceRoot)
		cliutil.Writef(w, "Output: %s\n", res.OutputRoot)
		cliutil.Writef(w, "Version: %s\n", res.Version)
		cliutil.Writef(w, "Policy: %s\n", res.Policy)
		cliutil.Writef(w, "Total Time: %v\n\n", res.Duration)

		outcomes := res.Specs
		if res.Aggregate != nil {
			outcomes = append(outcomes[:len(outcomes):len(outcomes)], res.Aggregate)
		}
		for _, o := range outcomes {
			cliutil.Writef(w, "  %s %s: %s", cliutil.Mark(o.Status == builder.StatusWritten), o.Spec, o.Status)
			if o.Status == builder.StatusWritten {
				cliutil.Writef(w, " (%s, %s, %s)",
					cliutil.Plural(o.Operations, "operation"),
					cliutil.Plural(o.Definitions, "definition"),
					cliutil.Plural(o.Parameters, "parameter"))
			}
			cliutil.Writef(w, "\n")
			for _, warning := range o.Warnings {
				cliutil.Writef(w, "      warning: %s\n", warning.String())
			}
		}

		if diags := res.Diagnostics(); len(diags) > 0 {
			cliutil.Writef(w, "\nErrors (%d):\n", len(diags))
			for _, d := range diags {
				cliutil.Writef(w, "  %s\n", d.String())
			}
		}
		cliutil.Writef(w, "\n")
	}

	written := res.Count(builder.StatusWritten)
	if res.Success() {
		cliutil.Writef(w, "✓ Build succeeded: %s written\n", cliutil.Plural(written, "specification"))
		return
	}
	cliutil.Writef(w, "✗ Build failed: %d written, %d failed, %d withheld, %d skipped",
		written,
		res.Count(builder.StatusFailed),
		res.Count(builder.StatusWithheld),
		res.Count(builder.StatusSkipped))
	if len(res.Errors) > 0 {
		cliutil.Writef(w, ", %s", cliutil.Plural(len(res.Errors), "run error"))
	}
	cliutil.Writef(w, "\n")
}

// BuildReport is the structured form of a build result.
type BuildReport struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	Version     string             `json:"version" yaml:"version"`
	SourceRoot  string             `json:"source_root" yaml:"source_root"`
	OutputRoot  string             `json:"output_root" yaml:"output_root"`
	Policy      string             `json:"policy" yaml:"policy"`
	Success     bool               `json:"success" yaml:"success"`
	Duration    string             `json:"duration" yaml:"duration"`
	Specs       []SpecReport       `json:"specs,omitempty" yaml:"specs,omitempty"`
	Aggregate   *SpecReport        `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	Diagnostics []DiagnosticReport `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// SpecReport summarizes one specification outcome.
type SpecReport struct {
	Spec        string   `json:"spec" yaml:"spec"`
	Status      string   `json:"status" yaml:"status"`
	Documents   []string `json:"documents,omitempty" yaml:"documents,omitempty"`
	Artifacts   []string `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Operations  int      `json:"operations" yaml:"operations"`
	Definitions int      `json:"definitions" yaml:"definitions"`
	Parameters  int      `json:"parameters" yaml:"parameters"`
	Errors      int      `json:"errors" yaml:"errors"`
	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// DiagnosticReport is one flattened diagnostic.
type DiagnosticReport struct {
	Stage    string `json:"stage" yaml:"stage"`
	Spec     string `json:"spec,omitempty" yaml:"spec,omitempty"`
	Document string `json:"document,omitempty" yaml:"document,omitempty"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int    `json:"column,omitempty" yaml:"column,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

// NewBuildReport converts a build result into its structured form.
func NewBuildReport(res *builder.BuildResult) *BuildReport {
	r := &BuildReport{
		RunID:      res.RunID,
		Version:    res.Version,
		SourceRoot: res.SourceRoot,
		OutputRoot: res.OutputRoot,
		Policy:     res.Policy.String(),
		Success:    res.Success(),
		Duration:   res.Duration.String(),
	}
	for _, o := range res.Specs {
		r.Specs = append(r.Specs, newSpecReport(o))
	}
	if res.Aggregate != nil {
		agg := newSpecReport(res.Aggregate)
		r.Aggregate = &agg
	}
	for _, d := range res.Diagnostics() {
		r.Diagnostics = append(r.Diagnostics, DiagnosticReport{
			Stage:    string(d.Stage),
			Spec:     d.Spec,
			Document: d.Document,
			File:     d.Location.File,
			Line:     d.Location.Line,
			Column:   d.Location.Column,
			Message:  d.Message,
		})
	}
	return r
}

func newSpecReport(o *builder.SpecOutcome) SpecReport {
	s := SpecReport{
		Spec:        o.Spec,
		Status:      string(o.Status),
		Documents:   o.Documents,
		Artifacts:   o.Artifacts,
		Operations:  o.Operations,
		Definitions: o.Definitions,
		Parameters:  o.Parameters,
		Errors:      len(o.Errors),
	}
	for _, w := range o.Warnings {
		s.Warnings = append(s.Warnings, w.String())
	}
	return s
}
