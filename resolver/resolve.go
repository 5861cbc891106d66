package resolver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/swagerrors"
)

// Edge is a resolved reference from one declaration to another.
type Edge struct {
	From, To int
	Kind     parser.ReferenceKind
	// Compose marks edges that cannot be expanded if they form a cycle:
	// allOf members, schema aliases and parameter aliases.
	Compose  bool
	Token    string
	Location parser.SourceLocation
}

// site identifies the node holding a reference.
type site struct {
	document string
	path     string
}

// Graph is the resolved reference graph over the namespace arena.
type Graph struct {
	ns      *Namespace
	out     [][]Edge
	targets map[site]int
	// errs holds the resolution errors owned by each declaration.
	errs   [][]error
	cycles []*swagerrors.ResolutionError
	// recursiveSet holds schema declarations on a cycle of schema references.
	recursiveSet map[int]bool
}

// Namespace returns the namespace the graph was resolved against.
func (g *Graph) Namespace() *Namespace { return g.ns }

// Edges returns the outgoing edges of declaration i.
func (g *Graph) Edges(i int) []Edge { return g.out[i] }

// Cycles returns every illegal cycle found, in discovery order.
func (g *Graph) Cycles() []*swagerrors.ResolutionError { return g.cycles }

// Errors returns the resolution errors owned by declaration i.
func (g *Graph) Errors(i int) []error { return g.errs[i] }

// target returns the declaration a reference at document/path resolved to.
func (g *Graph) target(document, path string) (int, bool) {
	t, ok := g.targets[site{document, path}]
	return t, ok
}

type docResult struct {
	edges   []Edge
	targets map[site]int
	errs    []ownedErr
}

type ownedErr struct {
	decl int
	err  error
}

// Resolve resolves every reference of every document against the namespace
// and then checks the graph for illegal cycles. Documents are resolved in
// parallel on a bounded pool; results are merged in document order, so the
// graph does not depend on scheduling.
func Resolve(ctx context.Context, ns *Namespace, opts ...Option) (*Graph, error) {
	cfg := applyOptions(opts)
	log := cfg.logger

	docs := ns.Documents()
	results := make([]docResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i, def := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = resolveDocument(ns, def)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &swagerrors.CancelledError{Stage: "resolve", Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &swagerrors.CancelledError{Stage: "resolve", Cause: err}
	}

	graph := &Graph{
		ns:      ns,
		out:     make([][]Edge, ns.Len()),
		targets: make(map[site]int),
		errs:    make([][]error, ns.Len()),
	}
	var refs, failures int
	for _, r := range results {
		for _, e := range r.edges {
			graph.out[e.From] = append(graph.out[e.From], e)
		}
		for s, t := range r.targets {
			graph.targets[s] = t
		}
		for _, oe := range r.errs {
			graph.errs[oe.decl] = append(graph.errs[oe.decl], oe.err)
		}
		refs += len(r.edges)
		failures += len(r.errs)
	}

	graph.findCycles()
	graph.recursiveSet = graph.recursive()
	for _, c := range graph.cycles {
		log.Debug("reference cycle", "chain", c.Chain)
	}
	log.Debug("resolved references",
		"documents", len(docs),
		"declarations", ns.Len(),
		"resolved", refs,
		"failed", failures,
		"cycles", len(graph.cycles))
	return graph, nil
}

func resolveDocument(ns *Namespace, def *parser.SpecDefinition) docResult {
	res := docResult{targets: make(map[site]int, len(def.References))}
	for _, ref := range def.References {
		from, ok := ns.owner(def.ID, ref.OwnerKind, ref.Owner)
		if !ok {
			// Every reference is collected inside a declaration, so this only
			// happens for a document that was not indexed.
			continue
		}
		to, err := ns.Lookup(def.ID, ref)
		if err != nil {
			res.errs = append(res.errs, ownedErr{decl: from, err: err})
			continue
		}
		res.edges = append(res.edges, Edge{
			From:     from,
			To:       to,
			Kind:     ref.Kind,
			Compose:  ref.Compose || (ref.Kind == parser.RefParameter && ref.OwnerKind == parser.RefParameter),
			Token:    ref.Token,
			Location: ref.Location,
		})
		res.targets[site{def.ID, ref.Path}] = to
	}
	return res
}

// Option configures resolution and assembly.
type Option func(*config)

type config struct {
	workers  int
	mode     RefMode
	relocate bool
	logger   parser.Logger
}

func applyOptions(opts []Option) *config {
	cfg := &config{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	cfg.logger = parser.OrNop(cfg.logger)
	return cfg
}

// WithWorkers bounds the number of documents resolved concurrently.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithRefMode selects link or inline materialization of references.
func WithRefMode(m RefMode) Option {
	return func(c *config) { c.mode = m }
}

// WithRelocateResponses moves named inline response schemas into definitions.
func WithRelocateResponses(enabled bool) Option {
	return func(c *config) { c.relocate = enabled }
}

// WithLogger sets the logger for resolution diagnostics.
func WithLogger(l parser.Logger) Option {
	return func(c *config) { c.logger = l }
}
