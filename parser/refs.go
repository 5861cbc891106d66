package parser

import (
	"fmt"
	"sort"

	"github.com/erraggy/swaggen/internal/maputil"
)

type collectErr struct {
	loc SourceLocation
	msg string
}

// collector walks a decoded definition, normalizes free-form values and
// records every reference token with its location.
type collector struct {
	def  *SpecDefinition
	errs []collectErr
}

type owner struct {
	kind ReferenceKind
	name string
}

func (c *collector) run() {
	d := c.def
	for _, name := range maputil.SortedKeys(d.Schemas) {
		c.schema(d.Schemas[name], d.SchemaPath(name), owner{RefSchema, name}, true)
	}
	for _, name := range maputil.SortedKeys(d.Parameters) {
		c.parameter(d.Parameters[name], d.ParameterPath(name), owner{RefParameter, name})
	}
	for i, op := range d.Operations {
		c.operation(op, d.OperationPath(i))
	}

	sort.SliceStable(d.References, func(i, j int) bool {
		a, b := d.References[i].Location, d.References[j].Location
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// schema visits s and its nested schemas. compose is true while s is
// reachable from its declaration through allOf members only.
func (c *collector) schema(s *Schema, path string, o owner, compose bool) {
	WalkSchema(s, path, compose, func(node *Schema, nodePath string, nodeCompose bool) bool {
		node.Default = normalizeValue(node.Default)
		node.Example = normalizeValue(node.Example)
		node.Enum = normalizeEnum(node.Enum)
		node.Extra = normalizeExtra(node.Extra)
		if node.Ref != "" {
			c.reference(RefSchema, node.Ref, nodePath, true, o, nodeCompose)
		}
		return true
	})
}

// WalkSchema calls visit for s and every schema nested in it, in a fixed
// order, passing the JSON path of each node. compose is passed through allOf
// members and reset for every other kind of nesting. When visit returns false
// the children of that node are skipped.
func WalkSchema(s *Schema, path string, compose bool, visit func(s *Schema, path string, compose bool) bool) {
	if s == nil || !visit(s, path, compose) {
		return
	}
	WalkSchema(s.Items, path+".items", false, visit)
	for _, name := range maputil.SortedKeys(s.Properties) {
		WalkSchema(s.Properties[name], buildChildPath(path+".properties", name), false, visit)
	}
	if s.AdditionalProperties != nil {
		WalkSchema(s.AdditionalProperties.Schema, path+".additionalProperties", false, visit)
	}
	for i, member := range s.AllOf {
		WalkSchema(member, indexPath(path+".allOf", i), compose, visit)
	}
}

func (c *collector) parameter(p *Parameter, path string, o owner) {
	if p == nil {
		return
	}
	p.Extra = normalizeExtra(p.Extra)
	if p.Ref != "" {
		c.reference(RefParameter, p.Ref, path, true, o, false)
		return
	}
	p.Default = normalizeValue(p.Default)
	p.Enum = normalizeEnum(p.Enum)
	c.schema(p.Schema, path+".schema", o, false)
	c.schema(p.Items, path+".items", o, false)
}

func (c *collector) operation(op *Operation, path string) {
	o := owner{RefOperation, op.Name}
	op.Extra = normalizeExtra(op.Extra)

	for i, p := range op.Parameters {
		c.parameter(p, indexPath(path+".parameters", i), o)
	}
	if op.Request != nil {
		if op.Request.Model != "" {
			c.reference(RefSchema, op.Request.Model, path+".request.model", false, o, false)
		}
		c.schema(op.Request.Schema, path+".request.schema", o, false)
	}
	if op.Response != nil {
		c.response(op.Response, path+".response", o)
	}
	for _, code := range maputil.SortedKeys(op.Responses) {
		c.response(op.Responses[code], buildChildPath(path+".responses", code), o)
	}
	for i, req := range op.Requires {
		c.reference(RefOperation, req, indexPath(path+".requires", i), false, o, false)
	}
}

func (c *collector) response(r *Response, path string, o owner) {
	if r == nil {
		return
	}
	r.SourcePath = path
	r.Extra = normalizeExtra(r.Extra)
	r.Examples = normalizeExtra(r.Examples)
	if r.Model != "" {
		c.reference(RefSchema, r.Model, path+".model", false, o, false)
	}
	c.schema(r.Schema, path+".schema", o, false)
	for _, name := range maputil.SortedKeys(r.Headers) {
		h := r.Headers[name]
		if h == nil {
			continue
		}
		h.Default = normalizeValue(h.Default)
		h.Enum = normalizeEnum(h.Enum)
		h.Extra = normalizeExtra(h.Extra)
		c.schema(h.Items, buildChildPath(path+".headers", name)+".items", o, false)
	}
}

// reference validates a token and records it. isRef is set when the token is
// the value of a $ref key on the node at path.
func (c *collector) reference(kind ReferenceKind, raw, path string, isRef bool, o owner, compose bool) {
	loc := c.def.SourceMap.Get(path)
	if isRef {
		loc = c.def.SourceMap.GetRef(path)
	}
	if loc.File == "" {
		loc.File = c.def.Path
	}

	tok, err := ParseToken(raw)
	if err != nil {
		c.errs = append(c.errs, collectErr{loc: loc, msg: err.Error()})
		return
	}
	if want := sectionFor(kind); tok.Section != "" && tok.Section != want {
		c.errs = append(c.errs, collectErr{
			loc: loc,
			msg: fmt.Sprintf("reference %q points into #/%s but a %s is expected", raw, tok.Section, kind),
		})
		return
	}

	c.def.References = append(c.def.References, Reference{
		Kind:      kind,
		Token:     raw,
		OwnerKind: o.kind,
		Owner:     o.name,
		Path:      path,
		Location:  loc,
		Compose:   compose && o.kind == RefSchema,
	})
}

func sectionFor(kind ReferenceKind) string {
	switch kind {
	case RefSchema:
		return "definitions"
	case RefParameter:
		return "parameters"
	default:
		return ""
	}
}

