package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/swaggen/internal/testutil"
)

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Typos within edit distance 2
		{"biuld", "build"},
		{"buil", "build"},
		{"bulid", "build"},
		{"mcpp", "mcp"},
		{"mc", "mcp"},
		{"versio", "version"},
		{"hep", "help"},

		// Too far - no suggestion (distance > 2)
		{"xyz", ""},
		{"foobar", ""},
		{"generate", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestCommand(tt.input))
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("build", "build"))
	assert.Equal(t, 5, levenshtein("", "build"))
	assert.Equal(t, 2, levenshtein("biuld", "build"))
}

func TestRun(t *testing.T) {
	t.Run("no arguments", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run(context.Background(), nil, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "Usage:")
	})

	t.Run("version", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 0, run(context.Background(), []string{"version"}, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "swaggen v")
	})

	t.Run("help", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 0, run(context.Background(), []string{"--help"}, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "build       Build artifacts")
	})

	t.Run("unknown command suggests", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run(context.Background(), []string{"biuld"}, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "Unknown command: biuld")
		assert.Contains(t, stderr.String(), "Did you mean 'build'?")
	})

	t.Run("build succeeds", func(t *testing.T) {
		src := testutil.WriteTree(t, testutil.PetstoreTree())
		out := filepath.Join(t.TempDir(), "out")
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), []string{"build", "--version", "2.3.0", src, out}, &stdout, &stderr)
		assert.Equal(t, 0, code, stderr.String())
		assert.FileExists(t, filepath.Join(out, "petstore.json"))
		assert.Contains(t, stderr.String(), "✓ Build succeeded")
	})

	t.Run("build failure exits one without an error line", func(t *testing.T) {
		src := testutil.WriteTree(t, map[string]string{
			"orders.yaml": "operations:\n  - name: getOrder\n    method: get\n    path: /orders/{id}\n",
		})
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), []string{"build", "--version", "2.3.0", src, t.TempDir()}, &stdout, &stderr)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr.String(), "✗ Build failed")
		assert.NotContains(t, stderr.String(), "Error: build failed")
	})

	t.Run("build usage error", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run(context.Background(), []string{"build", "only-one"}, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "Error: build command requires")
	})
}
