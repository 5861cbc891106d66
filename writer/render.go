package writer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/swaggen/internal/httputil"
	"github.com/erraggy/swaggen/internal/maputil"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/resolver"
)

// RequiresExtension is the operation extension listing prerequisite
// operations.
const RequiresExtension = "x-requires"

// Render builds the Swagger 2.0 document of spec. The run version replaces
// info.version verbatim. The document shares schemas and parameters with
// spec; neither should be modified afterwards.
//
// When two operations share a method and path, the first one is kept.
func Render(spec *resolver.ResolvedSpec, version string) *Document {
	doc := &Document{
		Swagger: SwaggerVersion,
		Info:    renderInfo(spec.Info, version),
		Paths:   make(map[string]*PathItem),
	}

	tags := make(map[string]bool)
	for _, op := range spec.Operations {
		item := doc.Paths[op.Path]
		if item == nil {
			item = &PathItem{}
			doc.Paths[op.Path] = item
		}
		item.setOperation(op.Method, renderOperation(op))
		for _, tag := range op.Tags {
			tags[tag] = true
		}
	}
	for _, name := range maputil.SortedKeys(tags) {
		doc.Tags = append(doc.Tags, &Tag{Name: name})
	}

	if len(spec.Definitions) > 0 {
		doc.Definitions = spec.Definitions
	}
	if len(spec.Parameters) > 0 {
		doc.Parameters = spec.Parameters
	}
	return doc
}

func renderInfo(in *parser.Info, version string) *parser.Info {
	out := &parser.Info{}
	if in != nil {
		out = in.DeepCopy()
	}
	out.Version = version
	return out
}

func renderOperation(op *resolver.Operation) *Operation {
	out := &Operation{
		Tags:        op.Tags,
		Summary:     op.Summary,
		Description: op.Description,
		OperationID: op.Name,
		Consumes:    op.Consumes,
		Produces:    op.Produces,
		Parameters:  op.Parameters,
		Responses:   op.Responses,
		Deprecated:  op.Deprecated,
		Extra:       maps.Clone(op.Extra),
	}
	if len(op.Requires) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]any, 1)
		}
		out.Extra[RequiresExtension] = slices.Clone(op.Requires)
	}
	return out
}

// Aggregate merges the documents of several specifications, keyed by
// specification identifier, into one document with one tag per
// specification. info describes the combined document; its version is taken
// from the merged documents.
//
// Two specifications declaring the same method and path, or different
// definitions or parameters under the same name, make the aggregate fail.
// Every conflict is reported.
func Aggregate(info *parser.Info, docs map[string]*Document) (*Document, error) {
	out := &Document{
		Swagger: SwaggerVersion,
		Info:    &parser.Info{},
		Paths:   make(map[string]*PathItem),
	}
	if info != nil {
		out.Info = info.DeepCopy()
	}
	if out.Info.Title == "" {
		out.Info.Title = "API"
	}

	var errs []error
	defOwner := make(map[string]string)
	paramOwner := make(map[string]string)
	for _, id := range maputil.SortedKeys(docs) {
		doc := docs[id]
		if doc == nil {
			continue
		}
		if doc.Info != nil {
			if out.Info.Version == "" {
				out.Info.Version = doc.Info.Version
			}
			out.Tags = append(out.Tags, &Tag{Name: id, Description: doc.Info.Title})
		} else {
			out.Tags = append(out.Tags, &Tag{Name: id})
		}

		for _, path := range maputil.SortedKeys(doc.Paths) {
			item := out.Paths[path]
			if item == nil {
				item = &PathItem{}
				out.Paths[path] = item
			}
			for _, method := range httputil.Methods {
				op := doc.Paths[path].operation(method)
				if op == nil {
					continue
				}
				if !item.setOperation(method, op) {
					errs = append(errs, fmt.Errorf("%s %s of %s is already declared by another specification",
						strings.ToUpper(method), path, id))
				}
			}
		}

		if err := mergeNamed(&out.Definitions, doc.Definitions, defOwner, id, "definition"); err != nil {
			errs = append(errs, err)
		}
		if err := mergeNamed(&out.Parameters, doc.Parameters, paramOwner, id, "parameter"); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("writer: aggregate: %w", errors.Join(errs...))
	}
	return out, nil
}

// mergeNamed adds src to *dst. A name already present must hold an
// identical value.
func mergeNamed[V any](dst *map[string]V, src map[string]V, owner map[string]string, id, kind string) error {
	var errs []error
	for _, name := range maputil.SortedKeys(src) {
		if *dst == nil {
			*dst = make(map[string]V)
		}
		prev, ok := (*dst)[name]
		if !ok {
			(*dst)[name] = src[name]
			owner[name] = id
			continue
		}
		same, err := sameJSON(prev, src[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s of %s: %w", kind, name, id, err))
			continue
		}
		if !same {
			errs = append(errs, fmt.Errorf("%s %s of %s differs from the one declared by %s", kind, name, id, owner[name]))
		}
	}
	return errors.Join(errs...)
}

func sameJSON(a, b any) (bool, error) {
	x, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	y, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(x, y), nil
}
