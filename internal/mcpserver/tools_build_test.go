package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/swaggen/internal/testutil"
)

func TestBuildTool_Petstore(t *testing.T) {
	src := testutil.WriteTree(t, testutil.PetstoreTree())
	out := filepath.Join(t.TempDir(), "out")

	res, output, err := handleBuild(context.Background(), &mcp.CallToolRequest{}, buildInput{
		Source:    src,
		Output:    out,
		Version:   "2.3.0",
		Formats:   []string{"json"},
		Aggregate: "all",
	})
	require.NoError(t, err)
	require.Nil(t, res)

	assert.True(t, output.Success)
	assert.Equal(t, "2.3.0", output.Version)
	assert.Equal(t, "partial", output.Policy)
	assert.Equal(t, 2, output.Written)
	require.Len(t, output.Specs, 2)
	assert.Equal(t, []string{"petstore.json"}, output.Specs[0].Artifacts)
	require.NotNil(t, output.Aggregate)
	assert.Equal(t, "written", output.Aggregate.Status)
	assert.Equal(t, []string{"all.json"}, output.Aggregate.Artifacts)
	assert.FileExists(t, filepath.Join(out, "all.json"))
	assert.Zero(t, output.DiagnosticCount)
}

func TestBuildTool_Failures(t *testing.T) {
	src := testutil.WriteTree(t, map[string]string{
		"orders.yaml": "operations:\n  - name: getOrder\n    method: get\n    path: /orders/{id}\n",
		"users.yaml":  "operations:\n  - name: listUsers\n    method: get\n    path: /users\n",
	})
	strict := false

	res, output, err := handleBuild(context.Background(), &mcp.CallToolRequest{}, buildInput{
		Source:  src,
		Output:  t.TempDir(),
		Version: "2.3.0",
		Policy:  "all-or-nothing",
		Strict:  &strict,
	})
	require.NoError(t, err)
	require.Nil(t, res)

	assert.False(t, output.Success)
	assert.Equal(t, 1, output.Failed)
	assert.Equal(t, 1, output.Withheld)
	require.NotEmpty(t, output.Diagnostics)
	assert.Equal(t, "validate", output.Diagnostics[0].Stage)
	assert.Equal(t, "orders", output.Diagnostics[0].Spec)
	assert.Equal(t, output.DiagnosticCount, output.Returned)
}

func TestBuildTool_Errors(t *testing.T) {
	src := testutil.WriteTree(t, testutil.PetstoreTree())

	tests := []struct {
		name  string
		input buildInput
	}{
		{name: "missing source", input: buildInput{Output: t.TempDir(), Version: "1"}},
		{name: "missing output", input: buildInput{Source: src, Version: "1"}},
		{name: "missing version", input: buildInput{Source: src, Output: t.TempDir()}},
		{name: "bad policy", input: buildInput{Source: src, Output: t.TempDir(), Version: "1", Policy: "sometimes"}},
		{name: "bad format", input: buildInput{Source: src, Output: t.TempDir(), Version: "1", Formats: []string{"xml"}}},
		{name: "unknown spec", input: buildInput{Source: src, Output: t.TempDir(), Version: "1", Specs: []string{"nope"}}},
		{name: "output equals source", input: buildInput{Source: src, Output: src, Version: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSwaggenEnv(t)
			prev := cfg
			cfg = loadConfig()
			t.Cleanup(func() { cfg = prev })

			res, _, err := handleBuild(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.True(t, res.IsError)
		})
	}
}
