package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"go.yaml.in/yaml/v4"
)

// nodeToValue converts a YAML node into a JSON-compatible value: mappings
// become map[string]any, sequences []any, and numbers json.Number. Aliases
// are followed. The result is what the shape check validates.
func nodeToValue(node *yaml.Node) (any, error) {
	return nodeToValueDepth(node, 0)
}

const maxNodeDepth = 512

func nodeToValueDepth(node *yaml.Node, depth int) (any, error) {
	if node == nil {
		return nil, nil
	}
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("document nesting exceeds %d levels", maxNodeDepth)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return nodeToValueDepth(node.Content[0], depth+1)

	case yaml.AliasNode:
		return nodeToValueDepth(node.Alias, depth+1)

	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			if key.Value == "<<" && key.Tag == "!!merge" {
				return nil, fmt.Errorf("line %d: merge keys are not supported", key.Line)
			}
			if _, dup := m[key.Value]; dup {
				return nil, fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
			}
			v, err := nodeToValueDepth(node.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			m[key.Value] = v
		}
		return m, nil

	case yaml.SequenceNode:
		s := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := nodeToValueDepth(child, depth+1)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil

	case yaml.ScalarNode:
		return scalarValue(node)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
}

func scalarValue(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			// Out of int64 range, keep the literal as a float.
			var f float64
			if ferr := node.Decode(&f); ferr != nil {
				return nil, err
			}
			return floatValue(f), nil
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return floatValue(f), nil
	default:
		return node.Value, nil
	}
}

// floatValue returns f as a json.Number, or its text when JSON cannot
// represent it.
func floatValue(f float64) any {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// normalizeValue rewrites values decoded into `any` fields so they can be
// encoded as JSON: map keys become strings.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeValue(child)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[fmt.Sprint(k)] = normalizeValue(child)
		}
		return m
	case []any:
		for i, child := range t {
			t[i] = normalizeValue(child)
		}
		return t
	default:
		return v
	}
}

func normalizeExtra(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	for k, v := range extra {
		extra[k] = normalizeValue(v)
	}
	return extra
}

func normalizeEnum(enum []any) []any {
	for i, v := range enum {
		enum[i] = normalizeValue(v)
	}
	return enum
}
