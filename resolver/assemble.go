package resolver

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/swaggen/discovery"
	"github.com/erraggy/swaggen/internal/maputil"
	"github.com/erraggy/swaggen/internal/naming"
	"github.com/erraggy/swaggen/internal/pathutil"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/swagerrors"
)

// RefMode selects how resolved references are materialized.
type RefMode int

const (
	// RefModeLink keeps references as $ref links into the artifact's
	// definitions and parameters sections.
	RefModeLink RefMode = iota
	// RefModeInline replaces references with deep copies of their targets.
	// Targets that take part in a recursive structure stay linked.
	RefModeInline
)

// String returns "link" or "inline".
func (m RefMode) String() string {
	switch m {
	case RefModeLink:
		return "link"
	case RefModeInline:
		return "inline"
	default:
		return "RefMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseRefMode parses "link" or "inline".
func ParseRefMode(s string) (RefMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "link":
		return RefModeLink, nil
	case "inline":
		return RefModeInline, nil
	default:
		return 0, fmt.Errorf("resolver: unknown reference mode %q (want link or inline)", s)
	}
}

// ResolvedSpec is one specification with every reference replaced by a link
// to, or a copy of, the declaration it resolved to. It is self-contained:
// foreign declarations reached from the specification are part of it.
type ResolvedSpec struct {
	ID        string
	Documents []string
	// Info is the merged info header. Title defaults to a title derived from ID.
	Info *parser.Info
	// InfoSources lists every info block of the specification in document order.
	InfoSources []InfoSource

	Operations  []*Operation
	Definitions map[string]*parser.Schema
	Parameters  map[string]*parser.Parameter

	// DefinitionOrigins and ParameterOrigins map output names to the
	// declarations they came from.
	DefinitionOrigins map[string]Origin
	ParameterOrigins  map[string]Origin

	// RelocationConflicts lists response schemas that could not be moved into
	// definitions because their name was taken.
	RelocationConflicts []RelocationConflict

	Mode RefMode
}

// InfoSource is one info block and where it was declared.
type InfoSource struct {
	Document string
	Info     *parser.Info
	Location parser.SourceLocation
}

// Origin records where an emitted definition or parameter was declared.
type Origin struct {
	Document string
	Name     string
	Location parser.SourceLocation
	// Foreign is set for declarations of another specification.
	Foreign bool
	// Relocated is set for response schemas moved into definitions.
	Relocated bool
}

// RelocationConflict is a named response schema whose name is already used.
type RelocationConflict struct {
	Name      string
	Operation string
	Code      string
	Location  parser.SourceLocation
}

// Operation is a resolved operation. The request body is materialized as the
// last parameter, and response models are materialized as schemas.
type Operation struct {
	Name        string
	Method      string
	Path        string
	Summary     string
	Description string
	Tags        []string
	Consumes    []string
	Produces    []string
	Deprecated  bool
	Parameters  []*parser.Parameter
	Responses   map[string]*parser.Response
	// Requires names the prerequisite operations: the operation name for the
	// same specification, "document#name" otherwise.
	Requires []string
	Extra    map[string]any

	Document string
	Location parser.SourceLocation
}

// Assemble builds the resolved specification spec from the graph.
//
// The specification's own declarations and every foreign schema or parameter
// reachable from them form its closure. If any declaration of the closure
// owns a resolution error, Assemble returns those errors, attached to spec,
// and no specification.
func Assemble(g *Graph, spec string, opts ...Option) (*ResolvedSpec, []error) {
	cfg := applyOptions(opts)
	a := &assembler{
		g:        g,
		ns:       g.ns,
		spec:     spec,
		cfg:      cfg,
		inlined:  make(map[int]*parser.Schema),
		inlinedP: make(map[int]*parser.Parameter),
	}

	closure := a.closure()
	if errs := a.errors(closure); len(errs) > 0 {
		return nil, errs
	}

	a.recursive = g.recursiveSet
	a.names, a.paramNames = a.outputNames(closure)

	rs := &ResolvedSpec{
		ID:                spec,
		Definitions:       make(map[string]*parser.Schema),
		Parameters:        make(map[string]*parser.Parameter),
		DefinitionOrigins: make(map[string]Origin),
		ParameterOrigins:  make(map[string]Origin),
		Mode:              cfg.mode,
	}
	a.info(rs)

	for _, idx := range closure {
		d := a.ns.Decl(idx)
		foreign := d.Spec != spec
		origin := Origin{Document: d.Document, Name: d.Name, Location: d.Location, Foreign: foreign}
		switch d.Kind {
		case parser.RefSchema:
			if cfg.mode == RefModeInline && foreign && !a.recursive[idx] {
				continue
			}
			name := a.names[idx]
			rs.Definitions[name] = a.expandSchema(d.Document, d.Schema, d.Path, true)
			rs.DefinitionOrigins[name] = origin
		case parser.RefParameter:
			if cfg.mode == RefModeInline && foreign {
				continue
			}
			name := a.paramNames[idx]
			rs.Parameters[name] = a.declParameter(idx)
			rs.ParameterOrigins[name] = origin
		case parser.RefOperation:
			if !foreign {
				rs.Operations = append(rs.Operations, a.operation(d))
			}
		}
	}

	if cfg.relocate {
		a.relocate(rs)
	}

	cfg.logger.Debug("assembled specification",
		"spec", spec,
		"mode", cfg.mode.String(),
		"operations", len(rs.Operations),
		"definitions", len(rs.Definitions),
		"parameters", len(rs.Parameters))
	return rs, nil
}

type assembler struct {
	g    *Graph
	ns   *Namespace
	spec string
	cfg  *config

	recursive  map[int]bool
	names      map[int]string
	paramNames map[int]string
	inlined    map[int]*parser.Schema
	inlinedP   map[int]*parser.Parameter
}

// closure returns the declarations of the specification and every schema and
// parameter reachable from them, in arena order. Foreign operations reached
// through requires are not followed.
func (a *assembler) closure() []int {
	seen := make(map[int]bool)
	var queue []int
	for i := range a.ns.Len() {
		if a.ns.Decl(i).Spec == a.spec {
			seen[i] = true
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range a.g.Edges(n) {
			if seen[e.To] {
				continue
			}
			seen[e.To] = true
			if a.ns.Decl(e.To).Kind == parser.RefOperation && a.ns.Decl(e.To).Spec != a.spec {
				continue
			}
			queue = append(queue, e.To)
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		if d := a.ns.Decl(i); d.Kind == parser.RefOperation && d.Spec != a.spec {
			continue
		}
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// errors collects the resolution errors owned by the closure, attached to
// the specification. An error shared by several declarations, such as a
// cycle, is reported once.
func (a *assembler) errors(closure []int) []error {
	var out []error
	seen := make(map[error]bool)
	for _, idx := range closure {
		for _, err := range a.g.Errors(idx) {
			if seen[err] {
				continue
			}
			seen[err] = true
			out = append(out, attach(err, a.spec))
		}
	}
	return out
}

// attach returns err with its specification set to spec.
func attach(err error, spec string) error {
	re, ok := err.(*swagerrors.ResolutionError)
	if !ok || re.Spec == spec {
		return err
	}
	cp := *re
	cp.Spec = spec
	cp.Candidates = slices.Clone(re.Candidates)
	cp.Chain = slices.Clone(re.Chain)
	return &cp
}

// outputNames assigns unique output names. A name declared once keeps its
// plain form; every declaration of a colliding name is qualified with its
// document.
func (a *assembler) outputNames(closure []int) (schemas, params map[int]string) {
	var schemaDecls, paramDecls []int
	for _, idx := range closure {
		switch a.ns.Decl(idx).Kind {
		case parser.RefSchema:
			if a.cfg.mode == RefModeInline && a.ns.Decl(idx).Spec != a.spec && !a.recursive[idx] {
				continue
			}
			schemaDecls = append(schemaDecls, idx)
		case parser.RefParameter:
			if a.cfg.mode == RefModeInline && a.ns.Decl(idx).Spec != a.spec {
				continue
			}
			paramDecls = append(paramDecls, idx)
		}
	}
	return a.uniqueNames(schemaDecls), a.uniqueNames(paramDecls)
}

func (a *assembler) uniqueNames(decls []int) map[int]string {
	count := make(map[string]int, len(decls))
	for _, idx := range decls {
		count[a.ns.Decl(idx).Name]++
	}
	out := make(map[int]string, len(decls))
	used := make(map[string]bool, len(decls))
	for _, idx := range decls {
		if d := a.ns.Decl(idx); count[d.Name] == 1 {
			out[idx] = d.Name
			used[d.Name] = true
		}
	}
	for _, idx := range decls {
		d := a.ns.Decl(idx)
		if count[d.Name] == 1 {
			continue
		}
		name := naming.Qualify(d.Document, d.Name)
		for i := 2; used[name]; i++ {
			name = naming.Qualify(d.Document, d.Name) + "_" + strconv.Itoa(i)
		}
		out[idx] = name
		used[name] = true
	}
	return out
}

// info merges the specification's info blocks. Earlier documents win; later
// ones only fill fields left empty.
func (a *assembler) info(rs *ResolvedSpec) {
	merged := &parser.Info{}
	for _, def := range a.ns.SpecDocuments(a.spec) {
		rs.Documents = append(rs.Documents, def.ID)
		if def.Info == nil {
			continue
		}
		loc := def.Location("$")
		if def.Kind != discovery.KindInfo {
			loc = def.Location("$.info")
		}
		rs.InfoSources = append(rs.InfoSources, InfoSource{Document: def.ID, Info: def.Info, Location: loc})

		in := def.Info
		if merged.Title == "" {
			merged.Title = in.Title
		}
		if merged.Description == "" {
			merged.Description = in.Description
		}
		if merged.Version == "" {
			merged.Version = in.Version
		}
		if merged.TermsOfService == "" {
			merged.TermsOfService = in.TermsOfService
		}
		if merged.Contact == nil && in.Contact != nil {
			c := *in.Contact
			merged.Contact = &c
		}
		if merged.License == nil && in.License != nil {
			l := *in.License
			merged.License = &l
		}
		for _, p := range in.Profiles {
			if !slices.Contains(merged.Profiles, p) {
				merged.Profiles = append(merged.Profiles, p)
			}
		}
		for k, v := range in.DeepCopy().Extra {
			if merged.Extra == nil {
				merged.Extra = make(map[string]any)
			}
			if _, ok := merged.Extra[k]; !ok {
				merged.Extra[k] = v
			}
		}
	}
	if merged.Title == "" {
		merged.Title = naming.Title(a.spec)
	}
	rs.Info = merged
}

// linked reports whether references to idx stay links.
func (a *assembler) linked(idx int) bool {
	return a.cfg.mode == RefModeLink || a.recursive[idx]
}

// expandSchema returns a copy of s with every reference materialized. root
// is set when s is a declaration, whose own top-level $ref is an alias.
func (a *assembler) expandSchema(document string, s *parser.Schema, path string, root bool) *parser.Schema {
	if s == nil {
		return nil
	}
	cp := s.DeepCopy()
	parser.WalkSchema(cp, path, root, func(node *parser.Schema, nodePath string, _ bool) bool {
		if node.Ref == "" {
			return true
		}
		t, ok := a.g.target(document, nodePath)
		if !ok {
			return false
		}
		a.useSchema(node, t)
		return false
	})
	return cp
}

// useSchema turns node into a link to, or a copy of, schema declaration t.
func (a *assembler) useSchema(node *parser.Schema, t int) {
	if a.linked(t) {
		node.Ref = pathutil.DefinitionRef(a.names[t])
		return
	}
	desc := node.Description
	*node = *a.inlineSchema(t)
	if desc != "" {
		node.Description = desc
	}
}

// inlineSchema returns a fresh copy of the fully expanded declaration t.
// t is never recursive, so expansion terminates.
func (a *assembler) inlineSchema(t int) *parser.Schema {
	expanded, ok := a.inlined[t]
	if !ok {
		d := a.ns.Decl(t)
		expanded = a.expandSchema(d.Document, d.Schema, d.Path, true)
		a.inlined[t] = expanded
	}
	return expanded.DeepCopy()
}

// schemaAt materializes the schema reference held as a plain token (a
// request or response model) at path.
func (a *assembler) schemaAt(document, path string) *parser.Schema {
	t, ok := a.g.target(document, path)
	if !ok {
		return nil
	}
	node := &parser.Schema{}
	a.useSchema(node, t)
	return node
}

// declParameter returns the emitted form of parameter declaration idx.
func (a *assembler) declParameter(idx int) *parser.Parameter {
	d := a.ns.Decl(idx)
	return a.parameter(d.Document, d.Parameter, d.Path, true)
}

// parameter materializes p found at path: a $ref becomes a link or a copy of
// its target, and nested schemas are expanded. A declared parameter that
// aliases another is always copied, since a parameters entry cannot be a $ref.
func (a *assembler) parameter(document string, p *parser.Parameter, path string, decl bool) *parser.Parameter {
	if p == nil {
		return nil
	}
	if p.Ref != "" {
		t, ok := a.g.target(document, path)
		if !ok {
			return p.DeepCopy()
		}
		if a.cfg.mode == RefModeLink && !decl {
			return &parser.Parameter{Ref: pathutil.ParameterRef(a.paramNames[t])}
		}
		expanded, ok := a.inlinedP[t]
		if !ok {
			expanded = a.declParameter(t)
			a.inlinedP[t] = expanded
		}
		return expanded.DeepCopy()
	}
	cp := p.DeepCopy()
	cp.Schema = a.expandSchema(document, p.Schema, path+".schema", false)
	cp.Items = a.expandSchema(document, p.Items, path+".items", false)
	return cp
}

func (a *assembler) operation(d *Decl) *Operation {
	src := d.Operation
	doc := d.Document
	op := &Operation{
		Name:        src.Name,
		Method:      src.Method,
		Path:        src.Path,
		Summary:     src.Summary,
		Description: src.Description,
		Tags:        slices.Clone(src.Tags),
		Consumes:    slices.Clone(src.Consumes),
		Produces:    slices.Clone(src.Produces),
		Deprecated:  src.Deprecated,
		Responses:   make(map[string]*parser.Response, len(src.Responses)),
		Extra:       src.DeepCopy().Extra,
		Document:    doc,
		Location:    src.Location,
	}

	for i, p := range src.Parameters {
		op.Parameters = append(op.Parameters, a.parameter(doc, p, parser.IndexPath(d.Path+".parameters", i), false))
	}
	if req := src.Request; req != nil {
		body := &parser.Parameter{
			Name:        req.Name,
			In:          "body",
			Description: req.Description,
			Required:    req.Required == nil || *req.Required,
		}
		if req.Model != "" {
			body.Schema = a.schemaAt(doc, d.Path+".request.model")
		} else {
			body.Schema = a.expandSchema(doc, req.Schema, d.Path+".request.schema", false)
		}
		op.Parameters = append(op.Parameters, body)
	}

	for code, r := range src.Responses {
		out := r.DeepCopy()
		if r.Model != "" {
			out.Schema = a.schemaAt(doc, r.SourcePath+".model")
		} else {
			out.Schema = a.expandSchema(doc, r.Schema, r.SourcePath+".schema", false)
		}
		for name, h := range out.Headers {
			if h != nil {
				h.Items = a.expandSchema(doc, r.Headers[name].Items, parser.ChildPath(r.SourcePath+".headers", name)+".items", false)
			}
		}
		op.Responses[code] = out
	}

	for i := range src.Requires {
		t, ok := a.g.target(doc, parser.IndexPath(d.Path+".requires", i))
		if !ok {
			continue
		}
		target := a.ns.Decl(t)
		if target.Spec == a.spec {
			op.Requires = append(op.Requires, target.Name)
		} else {
			op.Requires = append(op.Requires, target.Key())
		}
	}
	return op
}

// relocate moves named inline response schemas into definitions and replaces
// them with links. A name that is already taken is reported as a conflict and
// the schema stays inline.
func (a *assembler) relocate(rs *ResolvedSpec) {
	for _, op := range rs.Operations {
		for _, code := range maputil.SortedKeys(op.Responses) {
			r := op.Responses[code]
			if r.Schema == nil || r.Schema.Ref != "" || r.Name == "" {
				continue
			}
			loc := op.Location
			if def, ok := a.ns.Document(op.Document); ok && r.SourcePath != "" {
				loc = def.Location(r.SourcePath)
			}
			if _, taken := rs.Definitions[r.Name]; taken {
				rs.RelocationConflicts = append(rs.RelocationConflicts, RelocationConflict{
					Name: r.Name, Operation: op.Name, Code: code, Location: loc,
				})
				continue
			}
			rs.Definitions[r.Name] = r.Schema
			rs.DefinitionOrigins[r.Name] = Origin{Document: op.Document, Name: r.Name, Location: loc, Relocated: true}
			r.Schema = &parser.Schema{Ref: pathutil.DefinitionRef(r.Name)}
		}
	}
}
