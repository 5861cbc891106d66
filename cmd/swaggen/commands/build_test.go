package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/swaggen/internal/config"
	"github.com/erraggy/swaggen/internal/testutil"
	"github.com/erraggy/swaggen/swagerrors"
)

func TestSetupBuildFlags_EnvironmentDefaults(t *testing.T) {
	t.Setenv("SWAGGEN_VERSION", "1.0.0")
	t.Setenv("SWAGGEN_FORMAT", "yaml")
	t.Setenv("SWAGGEN_POLICY", "all-or-nothing")
	defaults, err := config.Load()
	require.NoError(t, err)

	fs, flags := SetupBuildFlags(defaults)
	require.NoError(t, fs.Parse([]string{"--format", "json,yaml", "src", "out"}))

	cfg := flags.apply(defaults)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, []string{"json", "yaml"}, cfg.Formats)
	assert.Equal(t, "all-or-nothing", cfg.Policy)
	assert.Equal(t, []string{"src", "out"}, fs.Args())
}

func TestHandleBuild_JSONReport(t *testing.T) {
	src := testutil.WriteTree(t, testutil.PetstoreTree())
	out := filepath.Join(t.TempDir(), "out")

	var stdout, stderr bytes.Buffer
	err := HandleBuild(context.Background(),
		[]string{"--version", "2.3.0", "--format", "json", "--output-format", "json", "--specs", "petstore", src, out},
		&stdout, &stderr)
	require.NoError(t, err, stderr.String())

	var report BuildReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.True(t, report.Success)
	assert.Equal(t, "2.3.0", report.Version)
	assert.Equal(t, "partial", report.Policy)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Specs, 1)
	assert.Equal(t, "petstore", report.Specs[0].Spec)
	assert.Equal(t, "written", report.Specs[0].Status)
	assert.Equal(t, []string{filepath.Join(out, "petstore.json")}, report.Specs[0].Artifacts)
	assert.Empty(t, report.Diagnostics)
}

func TestHandleBuild_FailureReport(t *testing.T) {
	src := testutil.WriteTree(t, map[string]string{
		"orders.yaml": "operations:\n  - name: getOrder\n    method: get\n    path: /orders/{id}\n",
		"users.yaml":  "operations:\n  - name: listUsers\n    method: get\n    path: /users\n",
	})

	var stdout, stderr bytes.Buffer
	err := HandleBuild(context.Background(),
		[]string{"--version", "2.3.0", "--output-format", "yaml", src, t.TempDir()},
		&stdout, &stderr)
	require.ErrorIs(t, err, ErrBuildFailed)

	assert.Contains(t, stdout.String(), "success: false")
	assert.Contains(t, stdout.String(), "stage: validate")
	assert.Contains(t, stdout.String(), "spec: orders")
}

func TestHandleBuild_TextReport(t *testing.T) {
	src := testutil.WriteTree(t, testutil.PetstoreTree())

	var stdout, stderr bytes.Buffer
	require.NoError(t, HandleBuild(context.Background(),
		[]string{"--version", "2.3.0", src, filepath.Join(t.TempDir(), "out")}, &stdout, &stderr))

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Swagger Artifact Builder")
	assert.Contains(t, stderr.String(), "✓ petstore: written")
	assert.Contains(t, stderr.String(), "✓ Build succeeded: 2 specifications written")

	stderr.Reset()
	require.NoError(t, HandleBuild(context.Background(),
		[]string{"-q", "--version", "2.3.0", src, filepath.Join(t.TempDir(), "out")}, &stdout, &stderr))
	assert.NotContains(t, stderr.String(), "Swagger Artifact Builder")
	assert.Contains(t, stderr.String(), "✓ Build succeeded")
}

func TestHandleBuild_Errors(t *testing.T) {
	src := testutil.WriteTree(t, testutil.PetstoreTree())

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{name: "missing version", args: []string{src, t.TempDir()}, is: swagerrors.ErrConfig},
		{name: "bad policy", args: []string{"--version", "1", "--policy", "sometimes", src, t.TempDir()}, is: swagerrors.ErrConfig},
		{name: "bad format", args: []string{"--version", "1", "--format", "xml", src, t.TempDir()}, is: swagerrors.ErrConfig},
		{name: "missing source", args: []string{"--version", "1", filepath.Join(src, "missing"), t.TempDir()}, is: swagerrors.ErrDiscovery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := HandleBuild(context.Background(), tt.args, &stdout, &stderr)
			assert.ErrorIs(t, err, tt.is)
		})
	}

	t.Run("bad output format", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := HandleBuild(context.Background(), []string{"--version", "1", "--output-format", "xml", src, t.TempDir()}, &stdout, &stderr)
		assert.ErrorContains(t, err, "invalid output format")
	})

	t.Run("help", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.NoError(t, HandleBuild(context.Background(), []string{"--help"}, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "Usage: swaggen build")
	})
}
