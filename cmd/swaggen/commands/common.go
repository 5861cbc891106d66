// Package commands provides CLI command handlers for swaggen.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/swaggen/parser"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid output format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	_, err = fmt.Fprintln(w, strings.TrimRight(string(bytes), "\n"))
	return err
}

// NewLogger returns a text logger on w. Verbose enables debug records;
// otherwise only warnings and errors are logged.
func NewLogger(w io.Writer, verbose bool) parser.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return parser.NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
