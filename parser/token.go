package parser

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/erraggy/swaggen/internal/pathutil"
)

// Token is a parsed reference token.
//
// The grammar is:
//
//	token     = name | qualifier "#" name | "#/definitions/" name | "#/parameters/" name
//	qualifier = document ID or specification ID, e.g. "petstore" or "petstore/common"
//
// A qualifier naming a file may keep its extension ("petstore/common.yaml#Error");
// the extension is dropped.
type Token struct {
	// Raw is the token as written.
	Raw string
	// Qualifier is empty for bare tokens.
	Qualifier string
	// Name is the declared name the token points at.
	Name string
	// Section is "definitions" or "parameters" for local pointer tokens.
	Section string
}

// Qualified reports whether the token carries a qualifier.
func (t Token) Qualified() bool { return t.Qualifier != "" }

// String returns the canonical form of the token.
func (t Token) String() string {
	if t.Qualifier != "" {
		return t.Qualifier + "#" + t.Name
	}
	return t.Name
}

// ParseToken parses a reference token.
func ParseToken(raw string) (Token, error) {
	tok := Token{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return tok, fmt.Errorf("empty reference")
	}

	switch {
	case strings.HasPrefix(s, pathutil.RefPrefixDefinitions):
		tok.Section = "definitions"
		tok.Name = strings.TrimPrefix(s, pathutil.RefPrefixDefinitions)
	case strings.HasPrefix(s, pathutil.RefPrefixParameters):
		tok.Section = "parameters"
		tok.Name = strings.TrimPrefix(s, pathutil.RefPrefixParameters)
	default:
		qualifier, name, found := strings.Cut(s, "#")
		if found {
			if qualifier == "" {
				return tok, fmt.Errorf("reference %q has an empty qualifier", raw)
			}
			q, err := cleanQualifier(qualifier)
			if err != nil {
				return tok, fmt.Errorf("reference %q: %w", raw, err)
			}
			tok.Qualifier = q
		}
		tok.Name = name
		if !found {
			tok.Name = s
		}
	}

	if err := checkName(tok.Name); err != nil {
		return tok, fmt.Errorf("reference %q: %w", raw, err)
	}
	return tok, nil
}

func cleanQualifier(q string) (string, error) {
	if strings.HasPrefix(q, "/") || strings.Contains(q, "\\") {
		return "", fmt.Errorf("qualifier must be a relative slash-separated identifier")
	}
	for _, seg := range strings.Split(q, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("qualifier %q has an invalid path segment", q)
		}
	}
	switch strings.ToLower(path.Ext(q)) {
	case ".yaml", ".yml", ".json":
		q = strings.TrimSuffix(q, path.Ext(q))
	}
	return q, nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	for _, r := range name {
		if r == '#' || r == '/' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("name %q contains %q", name, r)
		}
	}
	return nil
}
