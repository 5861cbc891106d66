package discovery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/swaggen/swagerrors"
)

// Spec is one specification unit: every source sharing a specification identifier.
type Spec struct {
	// ID is the specification identifier.
	ID string
	// Sources are the member documents in lexicographic order.
	Sources []Source
}

// Documents returns the document identifiers of the specification.
func (s *Spec) Documents() []string {
	ids := make([]string, 0, len(s.Sources))
	for _, src := range s.Sources {
		ids = append(ids, src.ID)
	}
	return ids
}

// Grouping is the result of grouping discovered sources into specifications.
type Grouping struct {
	// Specs are the specification units sorted by identifier.
	Specs []*Spec
	// RootInfo is the root info document, if present.
	RootInfo *Source
	// Errors maps specification identifiers to their duplicate-identifier
	// errors. Errors about the root info document use the empty key.
	Errors map[string][]error
	// Shadowed lists sources dropped because an earlier source already
	// claimed their document identifier. They are not parsed.
	Shadowed []Source
}

// Spec returns the specification with the given identifier, or nil.
func (g *Grouping) Spec(id string) *Spec {
	i, found := slices.BinarySearchFunc(g.Specs, id, func(s *Spec, id string) int {
		return strings.Compare(s.ID, id)
	})
	if !found {
		return nil
	}
	return g.Specs[i]
}

// Sources returns every non-shadowed source in lexicographic order.
func (g *Grouping) Sources() []Source {
	var out []Source
	if g.RootInfo != nil {
		out = append(out, *g.RootInfo)
	}
	for _, spec := range g.Specs {
		out = append(out, spec.Sources...)
	}
	slices.SortFunc(out, func(a, b Source) int { return strings.Compare(a.RelPath, b.RelPath) })
	return out
}

// Group assigns sources to specifications and detects identifier collisions.
// Sources must be in discovery order; the first source claiming an identifier
// wins the tie-break and later ones are reported.
//
// Three collisions are reported as swagerrors.KindDuplicateIdentifier:
//   - two files with the same document identifier (pets.yaml and pets.json)
//   - a root-level file and a directory both forming the same specification
//   - two specifications whose artifact paths differ only by case
func Group(sources []Source) *Grouping {
	g := &Grouping{Errors: make(map[string][]error)}
	claimed := make(map[string]Source, len(sources))
	byID := make(map[string]*Spec)

	for _, src := range sources {
		if first, ok := claimed[src.ID]; ok {
			g.Shadowed = append(g.Shadowed, src)
			g.Errors[src.Spec] = append(g.Errors[src.Spec], &swagerrors.ResolutionError{
				Kind:     swagerrors.KindDuplicateIdentifier,
				Spec:     src.Spec,
				Document: src.ID,
				Message:  fmt.Sprintf("%s and %s map to the same document identifier", first.RelPath, src.RelPath),
			})
			continue
		}
		claimed[src.ID] = src

		if src.IsRootInfo() {
			s := src
			g.RootInfo = &s
			continue
		}
		spec, ok := byID[src.Spec]
		if !ok {
			spec = &Spec{ID: src.Spec}
			byID[src.Spec] = spec
		}
		spec.Sources = append(spec.Sources, src)
	}

	for _, spec := range byID {
		g.Specs = append(g.Specs, spec)
	}
	slices.SortFunc(g.Specs, func(a, b *Spec) int { return strings.Compare(a.ID, b.ID) })

	for _, spec := range g.Specs {
		checkUnitConflict(g, spec)
	}
	checkOutputCollisions(g)
	return g
}

// checkUnitConflict reports a root-level file and a directory claiming the same specification.
func checkUnitConflict(g *Grouping, spec *Spec) {
	var standalone, nested []string
	for _, src := range spec.Sources {
		if src.Standalone {
			standalone = append(standalone, src.RelPath)
		} else {
			nested = append(nested, src.RelPath)
		}
	}
	if len(standalone) == 0 || len(nested) == 0 {
		return
	}
	g.Errors[spec.ID] = append(g.Errors[spec.ID], &swagerrors.ResolutionError{
		Kind:     swagerrors.KindDuplicateIdentifier,
		Spec:     spec.ID,
		Document: strings.TrimSuffix(standalone[0], "."+extOf(standalone[0])),
		Message: fmt.Sprintf("file %s and directory %s/ both define specification %q",
			standalone[0], spec.ID, spec.ID),
		Candidates: append(slices.Clone(standalone), nested[0]),
	})
}

// checkOutputCollisions reports specifications whose artifacts would land on
// the same path on a case-insensitive filesystem.
func checkOutputCollisions(g *Grouping) {
	byFolded := make(map[string][]string)
	for _, spec := range g.Specs {
		key := strings.ToLower(spec.ID)
		byFolded[key] = append(byFolded[key], spec.ID)
	}
	for _, ids := range byFolded {
		if len(ids) < 2 {
			continue
		}
		for _, id := range ids {
			g.Errors[id] = append(g.Errors[id], &swagerrors.ResolutionError{
				Kind:       swagerrors.KindDuplicateIdentifier,
				Spec:       id,
				Message:    "specifications map to the same output path",
				Candidates: slices.Clone(ids),
			})
		}
	}
}

func extOf(relPath string) string {
	i := strings.LastIndexByte(relPath, '.')
	if i < 0 {
		return ""
	}
	return relPath[i+1:]
}
