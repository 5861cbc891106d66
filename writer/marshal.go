package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Format is an artifact serialization format.
type Format string

const (
	// FormatJSON writes "<spec>.json".
	FormatJSON Format = "json"
	// FormatYAML writes "<spec>.yaml".
	FormatYAML Format = "yaml"
)

// DefaultFormats is written when no format is configured.
var DefaultFormats = []Format{FormatJSON, FormatYAML}

// Ext returns the file extension of the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat parses "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("writer: unknown format %q (want json or yaml)", s)
	}
}

// ParseFormats parses a list of formats, dropping duplicates.
func ParseFormats(values []string) ([]Format, error) {
	var out []Format
	for _, v := range values {
		f, err := ParseFormat(v)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Marshal serializes doc in the given format.
func Marshal(doc *Document, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("writer: marshal json: %w", err)
	}
	switch format {
	case FormatJSON:
		return append(data, '\n'), nil
	case FormatYAML:
		return jsonToYAML(data)
	default:
		return nil, fmt.Errorf("writer: unknown format %q", format)
	}
}

// jsonToYAML re-encodes JSON as block-style YAML, keeping key order.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("writer: decode json for yaml: %w", err)
	}
	plain(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("writer: marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("writer: marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// plain clears the flow and quoting styles JSON input decodes with. Tags are
// kept, so the encoder still quotes strings that would read back as another
// type.
func plain(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plain(c)
	}
}
