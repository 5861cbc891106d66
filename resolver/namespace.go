package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/swaggen/internal/maputil"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/swagerrors"
)

// Decl is one named declaration: a schema, a reusable parameter or an
// operation. Declarations live in the namespace arena and are addressed by
// index.
type Decl struct {
	Kind     parser.ReferenceKind
	Name     string
	Document string
	Spec     string
	// Path is the JSON path of the declaration in its document.
	Path     string
	Location parser.SourceLocation

	Schema    *parser.Schema
	Parameter *parser.Parameter
	Operation *parser.Operation
}

// Key returns the qualified form "document#Name" used in diagnostics.
func (d *Decl) Key() string {
	return d.Document + "#" + d.Name
}

type declKey struct {
	kind parser.ReferenceKind
	name string
}

// Namespace indexes every declaration of every parsed document. It is built
// once and never mutated afterwards, so lookups need no locking.
type Namespace struct {
	decls []Decl

	docs     map[string]*parser.SpecDefinition
	docOrder []string
	specDocs map[string][]string
	specs    []string
	failed   map[string]string

	byDoc  map[string]map[declKey][]int
	bySpec map[string]map[declKey][]int
	global map[declKey][]int
}

// NewNamespace builds the namespace from parsed documents. failed maps the
// IDs of documents that did not parse to their specification, so lookups that
// miss can point at them.
func NewNamespace(defs []*parser.SpecDefinition, failed map[string]string) *Namespace {
	ns := &Namespace{
		docs:     make(map[string]*parser.SpecDefinition, len(defs)),
		specDocs: make(map[string][]string),
		failed:   make(map[string]string, len(failed)),
		byDoc:    make(map[string]map[declKey][]int),
		bySpec:   make(map[string]map[declKey][]int),
		global:   make(map[declKey][]int),
	}
	for id, spec := range failed {
		ns.failed[id] = spec
	}

	sorted := slices.Clone(defs)
	slices.SortFunc(sorted, func(a, b *parser.SpecDefinition) int { return strings.Compare(a.ID, b.ID) })

	for _, def := range sorted {
		if def == nil {
			continue
		}
		if _, dup := ns.docs[def.ID]; dup {
			continue
		}
		ns.docs[def.ID] = def
		ns.docOrder = append(ns.docOrder, def.ID)
		if def.Spec != "" {
			if _, ok := ns.specDocs[def.Spec]; !ok {
				ns.specs = append(ns.specs, def.Spec)
			}
			ns.specDocs[def.Spec] = append(ns.specDocs[def.Spec], def.ID)
		}

		for _, name := range maputil.SortedKeys(def.Schemas) {
			path := def.SchemaPath(name)
			ns.add(Decl{
				Kind: parser.RefSchema, Name: name, Document: def.ID, Spec: def.Spec,
				Path: path, Location: def.Location(path), Schema: def.Schemas[name],
			})
		}
		for _, name := range maputil.SortedKeys(def.Parameters) {
			path := def.ParameterPath(name)
			ns.add(Decl{
				Kind: parser.RefParameter, Name: name, Document: def.ID, Spec: def.Spec,
				Path: path, Location: def.Location(path), Parameter: def.Parameters[name],
			})
		}
		for i, op := range def.Operations {
			path := def.OperationPath(i)
			ns.add(Decl{
				Kind: parser.RefOperation, Name: op.Name, Document: def.ID, Spec: def.Spec,
				Path: path, Location: op.Location, Operation: op,
			})
		}
	}
	slices.Sort(ns.specs)
	return ns
}

func (ns *Namespace) add(d Decl) {
	idx := len(ns.decls)
	ns.decls = append(ns.decls, d)
	key := declKey{d.Kind, d.Name}

	if ns.byDoc[d.Document] == nil {
		ns.byDoc[d.Document] = make(map[declKey][]int)
	}
	ns.byDoc[d.Document][key] = append(ns.byDoc[d.Document][key], idx)
	if d.Spec != "" {
		if ns.bySpec[d.Spec] == nil {
			ns.bySpec[d.Spec] = make(map[declKey][]int)
		}
		ns.bySpec[d.Spec][key] = append(ns.bySpec[d.Spec][key], idx)
	}
	ns.global[key] = append(ns.global[key], idx)
}

// Len returns the number of declarations.
func (ns *Namespace) Len() int { return len(ns.decls) }

// Decl returns the declaration at index i.
func (ns *Namespace) Decl(i int) *Decl { return &ns.decls[i] }

// Document returns a parsed document by ID.
func (ns *Namespace) Document(id string) (*parser.SpecDefinition, bool) {
	def, ok := ns.docs[id]
	return def, ok
}

// Documents returns every document in ID order.
func (ns *Namespace) Documents() []*parser.SpecDefinition {
	out := make([]*parser.SpecDefinition, 0, len(ns.docOrder))
	for _, id := range ns.docOrder {
		out = append(out, ns.docs[id])
	}
	return out
}

// Specs returns the identifiers of every specification with at least one
// parsed document, sorted.
func (ns *Namespace) Specs() []string {
	return slices.Clone(ns.specs)
}

// SpecDocuments returns the parsed documents of a specification in ID order.
func (ns *Namespace) SpecDocuments(spec string) []*parser.SpecDefinition {
	ids := ns.specDocs[spec]
	out := make([]*parser.SpecDefinition, 0, len(ids))
	for _, id := range ids {
		out = append(out, ns.docs[id])
	}
	return out
}

// Profiles returns the union of build profiles declared by a specification's
// info blocks.
func (ns *Namespace) Profiles(spec string) []string {
	var out []string
	for _, def := range ns.SpecDocuments(spec) {
		if def.Info == nil {
			continue
		}
		for _, p := range def.Info.Profiles {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	slices.Sort(out)
	return out
}

// owner returns the declaration in document that contains a reference.
func (ns *Namespace) owner(document string, kind parser.ReferenceKind, name string) (int, bool) {
	idx := ns.byDoc[document][declKey{kind, name}]
	if len(idx) == 0 {
		return 0, false
	}
	return idx[0], true
}

// Lookup resolves a reference written in document to a declaration index.
//
// A qualified token searches the document with that ID, or failing that the
// specification with that ID. A bare token searches the defining document,
// then the rest of its specification, then every document; the first level
// with any match decides. Exactly one match resolves. No match yields an
// unresolved error with case-insensitive near matches as candidates, and
// several matches yield an ambiguous error listing them.
func (ns *Namespace) Lookup(document string, ref parser.Reference) (int, error) {
	def := ns.docs[document]
	spec := ""
	if def != nil {
		spec = def.Spec
	}
	fail := func(kind swagerrors.ResolutionKind, candidates []string, msg string) error {
		return &swagerrors.ResolutionError{
			Kind:       kind,
			Spec:       spec,
			Document:   document,
			Reference:  ref.Token,
			Line:       ref.Location.Line,
			Column:     ref.Location.Column,
			Candidates: candidates,
			Message:    msg,
		}
	}

	tok, err := parser.ParseToken(ref.Token)
	if err != nil {
		return 0, fail(swagerrors.KindUnresolved, nil, err.Error())
	}
	key := declKey{ref.Kind, tok.Name}

	var levels [][]int
	if tok.Qualified() {
		switch {
		case ns.docs[tok.Qualifier] != nil:
			levels = [][]int{ns.byDoc[tok.Qualifier][key]}
		case ns.specDocs[tok.Qualifier] != nil:
			levels = [][]int{ns.bySpec[tok.Qualifier][key]}
		default:
			msg := fmt.Sprintf("no document or specification named %q", tok.Qualifier)
			if ns.failedIn(tok.Qualifier) {
				msg = fmt.Sprintf("%q did not parse", tok.Qualifier)
			}
			return 0, fail(swagerrors.KindUnresolved, ns.nearMatches(key), msg)
		}
	} else {
		levels = [][]int{ns.byDoc[document][key], ns.bySpec[spec][key], ns.global[key]}
	}

	for _, matches := range levels {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			candidates := make([]string, len(matches))
			for i, idx := range matches {
				candidates[i] = ns.decls[idx].Key()
			}
			slices.Sort(candidates)
			return 0, fail(swagerrors.KindAmbiguous, candidates, "")
		}
	}

	msg := fmt.Sprintf("no %s named %q", ref.Kind, tok.Name)
	scope := spec
	if tok.Qualified() {
		scope = tok.Qualifier
	}
	if ns.failedIn(scope) {
		msg += "; a document of " + scope + " did not parse"
	}
	return 0, fail(swagerrors.KindUnresolved, ns.nearMatches(key), msg)
}

// nearMatches lists declarations of the same kind whose name matches
// case-insensitively.
func (ns *Namespace) nearMatches(key declKey) []string {
	var out []string
	for i := range ns.decls {
		d := &ns.decls[i]
		if d.Kind == key.kind && strings.EqualFold(d.Name, key.name) {
			out = append(out, d.Key())
		}
	}
	slices.Sort(out)
	return out
}

// failedIn reports whether a failed document has the given document or
// specification ID.
func (ns *Namespace) failedIn(id string) bool {
	if id == "" {
		return false
	}
	for doc, spec := range ns.failed {
		if doc == id || spec == id {
			return true
		}
	}
	return false
}

