package cliutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWritef(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{name: "one arg", format: "Hello, %s!", args: []any{"World"}, want: "Hello, World!"},
		{name: "no args", format: "Simple message", want: "Simple message"},
		{name: "several args", format: "%s: %d specs, %v written", args: []any{"Status", 42, true}, want: "Status: 42 specs, true written"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Writef(&buf, tt.format, tt.args...)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, errors.New("simulated write error")
}

func TestWritef_WriteError(t *testing.T) {
	assert.NotPanics(t, func() { Writef(errorWriter{}, "This will fail") })
}

func TestMark(t *testing.T) {
	assert.Equal(t, "✓", Mark(true))
	assert.Equal(t, "✗", Mark(false))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "0 operations", Plural(0, "operation"))
	assert.Equal(t, "1 operation", Plural(1, "operation"))
	assert.Equal(t, "2 warnings", Plural(2, "warning"))
}
