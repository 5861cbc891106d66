package parser

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/erraggy/swaggen/discovery"
)

//go:embed definition.schema.json
var definitionSchemaJSON []byte

const definitionSchemaURL = "https://swaggen.dev/schemas/definition.schema.json"

// quotedNameRe matches the first quoted property name in a violation message.
var quotedNameRe = regexp.MustCompile(`'([^']*)'`)

// maxShapeViolations caps the number of violations reported per document.
const maxShapeViolations = 10

var (
	shapeOnce    sync.Once
	shapeSchemas map[discovery.Kind]*jsonschema.Schema
	shapeErr     error
)

// shapeRoots names the schema each document kind is checked against.
var shapeRoots = map[discovery.Kind]string{
	discovery.KindDefinition: "definitionDocument",
	discovery.KindInfo:       "info",
	discovery.KindAction:     "operation",
	discovery.KindModel:      "schema",
}

func compileShapes() (map[discovery.Kind]*jsonschema.Schema, error) {
	shapeOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(definitionSchemaURL, bytes.NewReader(definitionSchemaJSON)); err != nil {
			shapeErr = fmt.Errorf("loading definition schema: %w", err)
			return
		}
		schemas := make(map[discovery.Kind]*jsonschema.Schema, len(shapeRoots))
		for kind, root := range shapeRoots {
			s, err := compiler.Compile(definitionSchemaURL + "#/definitions/" + root)
			if err != nil {
				shapeErr = fmt.Errorf("compiling %s schema: %w", root, err)
				return
			}
			schemas[kind] = s
		}
		shapeSchemas = schemas
	})
	return shapeSchemas, shapeErr
}

// shapeViolation is one structural problem found in a document.
type shapeViolation struct {
	Path    string
	Message string
}

// checkShape validates a normalized document value against the schema for
// its kind. It returns the violations sorted by path.
func checkShape(kind discovery.Kind, doc any) ([]shapeViolation, error) {
	schemas, err := compileShapes()
	if err != nil {
		return nil, err
	}
	schema, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no shape schema for %s documents", kind)
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []shapeViolation
	collectViolations(ve, doc, seen, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	if len(out) > maxShapeViolations {
		out = out[:maxShapeViolations]
	}
	return out, nil
}

// collectViolations gathers the leaf causes of a validation error, one per
// instance location.
func collectViolations(ve *jsonschema.ValidationError, doc any, seen map[string]bool, out *[]shapeViolation) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectViolations(cause, doc, seen, out)
		}
		return
	}
	path := pointerToPath(doc, ve.InstanceLocation)
	if strings.HasSuffix(ve.KeywordLocation, "/additionalProperties") {
		// Point at the first offending key rather than its parent object.
		if m := quotedNameRe.FindStringSubmatch(ve.Message); m != nil {
			path = buildChildPath(path, m[1])
		}
	}
	if seen[path] {
		return
	}
	seen[path] = true
	*out = append(*out, shapeViolation{Path: path, Message: describeViolation(path, ve.Message)})
}

func describeViolation(path, msg string) string {
	field := strings.TrimPrefix(path, "$")
	field = strings.TrimPrefix(field, ".")
	if field == "" {
		return msg
	}
	return field + ": " + msg
}
