package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v4"
)

// MarshalJSON implements custom JSON marshaling for Schema.
// Extensions are appended after the known fields, sorted by key.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type Alias Schema
	return MarshalWithExtra((*Alias)(s), s.Extra)
}

// MarshalJSON implements custom JSON marshaling for Parameter.
func (p *Parameter) MarshalJSON() ([]byte, error) {
	type Alias Parameter
	return MarshalWithExtra((*Alias)(p), p.Extra)
}

// MarshalJSON implements custom JSON marshaling for Header.
func (h *Header) MarshalJSON() ([]byte, error) {
	type Alias Header
	return MarshalWithExtra((*Alias)(h), h.Extra)
}

// MarshalJSON implements custom JSON marshaling for Response.
func (r *Response) MarshalJSON() ([]byte, error) {
	type Alias Response
	return MarshalWithExtra((*Alias)(r), r.Extra)
}

// MarshalJSON implements custom JSON marshaling for Info.
func (i *Info) MarshalJSON() ([]byte, error) {
	type Alias Info
	return MarshalWithExtra((*Alias)(i), i.Extra)
}

// MarshalJSON encodes the schema, or the boolean when no schema is set.
func (s *SchemaOrBool) MarshalJSON() ([]byte, error) {
	if s.Schema != nil {
		return json.Marshal(s.Schema)
	}
	return json.Marshal(s.Allowed)
}

// UnmarshalYAML accepts either a boolean scalar or a schema mapping.
func (s *SchemaOrBool) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var allowed bool
		if err := node.Decode(&allowed); err != nil {
			return fmt.Errorf("additionalProperties must be a boolean or a schema: %w", err)
		}
		s.Allowed = allowed
		return nil
	}
	var schema Schema
	if err := node.Decode(&schema); err != nil {
		return err
	}
	s.Schema = &schema
	s.Allowed = true
	return nil
}

// MarshalWithExtra encodes base and splices extension fields into the
// resulting object. Only keys starting with "x-" are emitted.
func MarshalWithExtra(base any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(base)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if strings.HasPrefix(k, "x-") {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return data, nil
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Grow(len(data) + 32*len(keys))
	buf.Write(data[:len(data)-1])
	needComma := !bytes.Equal(bytes.TrimSpace(data), []byte("{}"))
	for _, k := range keys {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(extra[k])
		if err != nil {
			return nil, fmt.Errorf("extension %s: %w", k, err)
		}
		if needComma {
			buf.WriteByte(',')
		}
		needComma = true
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
