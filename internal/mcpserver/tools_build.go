package mcpserver

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/swaggen/builder"
	"github.com/erraggy/swaggen/parser"
)

type buildInput struct {
	Source            string   `json:"source"                       jsonschema:"Path to the source root directory holding the definition files"`
	Output            string   `json:"output"                       jsonschema:"Path to the output root directory; must differ from source"`
	Version           string   `json:"version,omitempty"            jsonschema:"Version embedded in every artifact (default SWAGGEN_VERSION)"`
	Formats           []string `json:"formats,omitempty"            jsonschema:"Artifact formats: json and/or yaml (default both)"`
	Policy            string   `json:"policy,omitempty"             jsonschema:"Failure policy: partial or all-or-nothing"`
	RefMode           string   `json:"ref_mode,omitempty"           jsonschema:"Reference rendering: link or inline"`
	RelocateResponses *bool    `json:"relocate_responses,omitempty" jsonschema:"Move named inline response schemas into definitions"`
	Profiles          []string `json:"profiles,omitempty"           jsonschema:"Build only specifications tagged with one of these profiles"`
	Specs             []string `json:"specs,omitempty"              jsonschema:"Build only these specification identifiers"`
	Aggregate         string   `json:"aggregate,omitempty"          jsonschema:"Also write every built specification merged into this artifact"`
	Workers           *int     `json:"workers,omitempty"            jsonschema:"Worker pool size (0 means GOMAXPROCS)"`
	Strict            *bool    `json:"strict,omitempty"             jsonschema:"Enable strict validation"`
	Offset            int      `json:"offset,omitempty"             jsonschema:"Skip the first N diagnostics (for pagination)"`
	Limit             int      `json:"limit,omitempty"              jsonschema:"Maximum number of diagnostics to return (default 100)"`
}

type buildSpec struct {
	Spec        string   `json:"spec"`
	Status      string   `json:"status"`
	Artifacts   []string `json:"artifacts,omitempty"`
	Operations  int      `json:"operations"`
	Definitions int      `json:"definitions"`
	Errors      int      `json:"errors"`
	Warnings    int      `json:"warnings"`
}

type buildDiagnostic struct {
	Stage    string `json:"stage"`
	Spec     string `json:"spec,omitempty"`
	Document string `json:"document,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Message  string `json:"message"`
}

type buildOutput struct {
	RunID           string            `json:"run_id"`
	Success         bool              `json:"success"`
	Version         string            `json:"version"`
	Policy          string            `json:"policy"`
	Written         int               `json:"written"`
	Failed          int               `json:"failed"`
	Withheld        int               `json:"withheld"`
	Specs           []buildSpec       `json:"specs,omitempty"`
	Aggregate       *buildSpec        `json:"aggregate,omitempty"`
	DiagnosticCount int               `json:"diagnostic_count"`
	Returned        int               `json:"returned"`
	Diagnostics     []buildDiagnostic `json:"diagnostics,omitempty"`
}

func handleBuild(ctx context.Context, _ *mcp.CallToolRequest, input buildInput) (*mcp.CallToolResult, buildOutput, error) {
	source, err := resolveSource(input.Source)
	if err != nil {
		return errResult(err), buildOutput{}, nil
	}
	if strings.TrimSpace(input.Output) == "" {
		return errResult(errors.New("output is required")), buildOutput{}, nil
	}
	output, err := filepath.Abs(input.Output)
	if err != nil {
		return errResult(err), buildOutput{}, nil
	}

	// Apply config defaults when input fields are omitted.
	c := *cfg.Build
	if input.Version != "" {
		c.Version = input.Version
	}
	if len(input.Formats) > 0 {
		c.Formats = input.Formats
	}
	if input.Policy != "" {
		c.Policy = input.Policy
	}
	if input.RefMode != "" {
		c.RefMode = input.RefMode
	}
	if input.RelocateResponses != nil {
		c.RelocateResponses = *input.RelocateResponses
	}
	if len(input.Profiles) > 0 {
		c.Profiles = input.Profiles
	}
	if len(input.Specs) > 0 {
		c.Specs = input.Specs
	}
	if input.Aggregate != "" {
		c.Aggregate = input.Aggregate
	}
	if input.Workers != nil {
		c.Workers = *input.Workers
	}
	if input.Strict != nil {
		c.Strict = *input.Strict
	}

	opts, err := c.Options(parser.NewSlogAdapter(slog.Default()))
	if err != nil {
		return errResult(err), buildOutput{}, nil
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	res, err := builder.Build(ctx, source, output, c.Version, opts...)
	if err != nil {
		return errResult(err), buildOutput{}, nil
	}

	out := buildOutput{
		RunID:    res.RunID,
		Success:  res.Success(),
		Version:  res.Version,
		Policy:   res.Policy.String(),
		Written:  res.Count(builder.StatusWritten),
		Failed:   res.Count(builder.StatusFailed),
		Withheld: res.Count(builder.StatusWithheld),
		Specs:    makeSlice[buildSpec](len(res.Specs)),
	}
	for _, o := range res.Specs {
		out.Specs = append(out.Specs, newBuildSpec(output, o))
	}
	if res.Aggregate != nil {
		agg := newBuildSpec(output, res.Aggregate)
		out.Aggregate = &agg
	}

	diags := res.Diagnostics()
	out.DiagnosticCount = len(diags)
	page := paginate(diags, input.Offset, input.Limit)
	out.Diagnostics = makeSlice[buildDiagnostic](len(page))
	for _, d := range page {
		out.Diagnostics = append(out.Diagnostics, buildDiagnostic{
			Stage:    string(d.Stage),
			Spec:     d.Spec,
			Document: d.Document,
			Line:     d.Location.Line,
			Column:   d.Location.Column,
			Message:  sanitize(d.Message),
		})
	}
	out.Returned = len(out.Diagnostics)

	return nil, out, nil
}

// newBuildSpec summarizes an outcome with artifact paths relative to the output root.
func newBuildSpec(outputRoot string, o *builder.SpecOutcome) buildSpec {
	s := buildSpec{
		Spec:        o.Spec,
		Status:      string(o.Status),
		Artifacts:   makeSlice[string](len(o.Artifacts)),
		Operations:  o.Operations,
		Definitions: o.Definitions,
		Errors:      len(o.Errors),
		Warnings:    len(o.Warnings),
	}
	for _, a := range o.Artifacts {
		s.Artifacts = append(s.Artifacts, relative(outputRoot, a))
	}
	return s
}
