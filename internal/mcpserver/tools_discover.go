package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/swaggen/discovery"
)

type discoverInput struct {
	Source string `json:"source"           jsonschema:"Path to the source root directory holding the definition files"`
	Offset int `json:"offset,omitempty" jsonschema:"Skip the first N specifications (for pagination)"`
	Limit  int `json:"limit,omitempty"  jsonschema:"Maximum number of specifications to return (default 100)"`
}

type discoverDocument struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	File string `json:"file"`
}

type discoverSpec struct {
	ID        string             `json:"id"`
	Documents []discoverDocument `json:"documents"`
	Errors    []string           `json:"errors,omitempty"`
}

type discoverOutput struct {
	SpecCount     int            `json:"spec_count"`
	DocumentCount int            `json:"document_count"`
	Returned      int            `json:"returned"`
	RootInfo      string         `json:"root_info,omitempty"`
	Specs         []discoverSpec `json:"specs,omitempty"`
	Shadowed      []string       `json:"shadowed,omitempty"`
	Errors        []string       `json:"errors,omitempty"`
}

func handleDiscover(ctx context.Context, _ *mcp.CallToolRequest, input discoverInput) (*mcp.CallToolResult, discoverOutput, error) {
	root, err := resolveSource(input.Source)
	if err != nil {
		return errResult(err), discoverOutput{}, nil
	}

	sources, err := discovery.Collect(ctx, discovery.New(root).Sources())
	if err != nil {
		return errResult(err), discoverOutput{}, nil
	}
	g := discovery.Group(sources)

	output := discoverOutput{SpecCount: len(g.Specs)}
	if g.RootInfo != nil {
		output.RootInfo = g.RootInfo.RelPath
	}
	for _, err := range g.Errors[""] {
		output.Errors = append(output.Errors, sanitizeError(err))
	}
	output.Shadowed = makeSlice[string](len(g.Shadowed))
	for _, src := range g.Shadowed {
		output.Shadowed = append(output.Shadowed, src.RelPath)
	}

	specs := makeSlice[discoverSpec](len(g.Specs))
	for _, spec := range g.Specs {
		s := discoverSpec{ID: spec.ID, Documents: make([]discoverDocument, 0, len(spec.Sources))}
		for _, src := range spec.Sources {
			s.Documents = append(s.Documents, discoverDocument{ID: src.ID, Kind: src.Kind.String(), File: src.RelPath})
		}
		for _, err := range g.Errors[spec.ID] {
			s.Errors = append(s.Errors, sanitizeError(err))
		}
		output.DocumentCount += len(s.Documents)
		specs = append(specs, s)
	}
	output.Specs = paginate(specs, input.Offset, input.Limit)
	output.Returned = len(output.Specs)

	return nil, output, nil
}
