package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// SourceLocation represents a position in a source document.
// Line and Column are 1-based. A zero Line means the location is unknown.
type SourceLocation struct {
	// Line is the 1-based line number (0 if unknown)
	Line int
	// Column is the 1-based column number (0 if unknown)
	Column int
	// File is the path of the source document
	File string
}

// IsKnown returns true if this location has valid line information.
func (s SourceLocation) IsKnown() bool {
	return s.Line > 0
}

// String returns "file:line:column", "line:column" when there is no file,
// or "<unknown>".
func (s SourceLocation) String() string {
	if !s.IsKnown() {
		if s.File != "" {
			return s.File
		}
		return "<unknown>"
	}
	if s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// SourceMap maps JSON paths inside one definition document to their position
// in the source text. Paths use dot notation rooted at "$", with bracket
// notation for sequence indexes and for keys containing special characters:
//
//	$.operations[0].responses['200'].schema
type SourceMap struct {
	// locations maps JSON paths to value positions
	locations map[string]SourceLocation
	// keyLocations maps JSON paths to the position of their mapping key
	keyLocations map[string]SourceLocation
	// refs maps the path of a node holding a $ref to the position of the token
	refs map[string]SourceLocation
}

// NewSourceMap creates an empty SourceMap.
func NewSourceMap() *SourceMap {
	return &SourceMap{
		locations:    make(map[string]SourceLocation),
		keyLocations: make(map[string]SourceLocation),
		refs:         make(map[string]SourceLocation),
	}
}

// Get returns the source location for a JSON path, or a zero SourceLocation.
func (sm *SourceMap) Get(path string) SourceLocation {
	if sm == nil {
		return SourceLocation{}
	}
	return sm.locations[path]
}

// GetKey returns the location of the mapping key at path, falling back to
// the value location when path is not a mapping entry.
func (sm *SourceMap) GetKey(path string) SourceLocation {
	if sm == nil {
		return SourceLocation{}
	}
	if loc, ok := sm.keyLocations[path]; ok {
		return loc
	}
	return sm.locations[path]
}

// GetRef returns the location of the $ref token held by the node at path.
func (sm *SourceMap) GetRef(path string) SourceLocation {
	if sm == nil {
		return SourceLocation{}
	}
	if loc, ok := sm.refs[path]; ok {
		return loc
	}
	return sm.locations[path]
}

// Nearest returns the location of path, or of its closest recorded ancestor.
// Shape violations about a missing property point at the enclosing object.
func (sm *SourceMap) Nearest(path string) SourceLocation {
	if sm == nil {
		return SourceLocation{}
	}
	for {
		if loc, ok := sm.locations[path]; ok {
			return loc
		}
		parent, ok := parentPath(path)
		if !ok {
			return SourceLocation{}
		}
		path = parent
	}
}

// Has returns true if the path exists in the source map.
func (sm *SourceMap) Has(path string) bool {
	if sm == nil {
		return false
	}
	_, ok := sm.locations[path]
	return ok
}

// Len returns the number of paths in the source map.
func (sm *SourceMap) Len() int {
	if sm == nil {
		return 0
	}
	return len(sm.locations)
}

// Paths returns all JSON paths in the source map, sorted alphabetically.
func (sm *SourceMap) Paths() []string {
	if sm == nil {
		return nil
	}
	paths := make([]string, 0, len(sm.locations))
	for path := range sm.locations {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// buildSourceMap walks a yaml.Node tree and builds a SourceMap
// correlating JSON paths to source locations.
func buildSourceMap(root *yaml.Node, sourcePath string) *SourceMap {
	sm := NewSourceMap()
	if root == nil {
		return sm
	}
	walkNode(root, "$", sm, sourcePath)
	return sm
}

func walkNode(node *yaml.Node, path string, sm *SourceMap, file string) {
	if node == nil {
		return
	}
	sm.locations[path] = SourceLocation{Line: node.Line, Column: node.Column, File: file}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) > 0 {
			walkNode(node.Content[0], path, sm, file)
		}

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]

			childPath := buildChildPath(path, keyNode.Value)
			sm.keyLocations[childPath] = SourceLocation{Line: keyNode.Line, Column: keyNode.Column, File: file}

			if keyNode.Value == "$ref" && valNode.Kind == yaml.ScalarNode {
				sm.refs[path] = SourceLocation{Line: valNode.Line, Column: valNode.Column, File: file}
			}
			walkNode(valNode, childPath, sm, file)
		}

	case yaml.SequenceNode:
		for i, child := range node.Content {
			walkNode(child, indexPath(path, i), sm, file)
		}

	case yaml.ScalarNode, yaml.AliasNode:
	}
}

// buildChildPath constructs a JSON path for a child element,
// using bracket notation for keys with special characters.
func buildChildPath(parent, key string) string {
	if needsBracketNotation(key) {
		escaped := strings.ReplaceAll(key, "'", "\\'")
		return parent + "['" + escaped + "']"
	}
	return parent + "." + key
}

// ChildPath returns the JSON path of key below parent.
func ChildPath(parent, key string) string {
	return buildChildPath(parent, key)
}

// IndexPath returns the JSON path of sequence element i below parent.
func IndexPath(parent string, i int) string {
	return indexPath(parent, i)
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// needsBracketNotation reports whether key starts with a digit or contains
// characters that are ambiguous in dot notation.
func needsBracketNotation(key string) bool {
	if len(key) == 0 {
		return true
	}
	for i, r := range key {
		if i == 0 && r >= '0' && r <= '9' {
			return true
		}
		switch r {
		case '.', '[', ']', '\'', '"', ' ', '\t', '\n', '\r':
			return true
		}
	}
	return false
}

// parentPath strips the last segment of a JSON path.
func parentPath(path string) (string, bool) {
	if path == "$" || path == "" {
		return "", false
	}
	if strings.HasSuffix(path, "]") {
		// Bracket segments may contain dots, so scan for the matching "[".
		inQuote := false
		for i := len(path) - 2; i >= 0; i-- {
			switch path[i] {
			case '\'':
				if i == 0 || path[i-1] != '\\' {
					inQuote = !inQuote
				}
			case '[':
				if !inQuote {
					return path[:i], true
				}
			}
		}
		return "", false
	}
	if i := strings.LastIndexAny(path, ".]"); i >= 0 {
		if path[i] == ']' {
			return path[:i+1], true
		}
		return path[:i], true
	}
	return "", false
}

// pointerToPath converts a JSON pointer into the instance value into the
// source map path notation. Numeric tokens become indexes only where the
// value at that point is a sequence.
func pointerToPath(root any, pointer string) string {
	path := "$"
	if pointer == "" || pointer == "/" {
		return path
	}
	cur := root
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		switch v := cur.(type) {
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(v) {
				return buildChildPath(path, tok)
			}
			path = indexPath(path, i)
			cur = v[i]
		case map[string]any:
			path = buildChildPath(path, tok)
			cur = v[tok]
		default:
			path = buildChildPath(path, tok)
			cur = nil
		}
	}
	return path
}
