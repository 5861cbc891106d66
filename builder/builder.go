package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/erraggy/swaggen/discovery"
	"github.com/erraggy/swaggen/internal/fileutil"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/resolver"
	"github.com/erraggy/swaggen/swagerrors"
	"github.com/erraggy/swaggen/validator"
	"github.com/erraggy/swaggen/writer"
)

// Build compiles every specification under sourceRoot into Swagger 2.0
// artifacts under outputRoot, embedding version as the API version.
//
// The returned error is non-nil only for conditions that end the whole run:
// an invalid configuration, an unreadable source root, or cancellation of ctx.
// Failures of single specifications are recorded in their outcomes. The
// result is never nil and accounts for every specification either way.
func Build(ctx context.Context, sourceRoot, outputRoot, version string, opts ...Option) (*BuildResult, error) {
	start := time.Now()
	res := &BuildResult{
		RunID:      uuid.NewString(),
		Version:    version,
		SourceRoot: sourceRoot,
		OutputRoot: outputRoot,
	}

	cfg, err := applyOptions(opts)
	if err == nil {
		err = checkRoots(sourceRoot, outputRoot, version)
	}
	if err != nil {
		res.Errors = append(res.Errors, err)
		res.Duration = time.Since(start)
		return res, err
	}
	res.Policy = cfg.policy

	b := &build{
		cfg:        cfg,
		log:        cfg.logger.With("run_id", res.RunID),
		res:        res,
		sourceRoot: sourceRoot,
		outputRoot: outputRoot,
		version:    version,
		outcomes:   make(map[string]*SpecOutcome),
	}
	b.log.Info("build started",
		"source", sourceRoot,
		"output", outputRoot,
		"version", version,
		"policy", cfg.policy.String(),
		"workers", cfg.workers)

	err = b.run(ctx)
	res.Duration = time.Since(start)
	if err != nil {
		res.Errors = append(res.Errors, err)
		b.log.Error("build aborted", "error", err, "duration", res.Duration)
		return res, err
	}
	b.log.Info("build finished",
		"written", res.Count(StatusWritten),
		"failed", res.Count(StatusFailed),
		"withheld", res.Count(StatusWithheld),
		"duration", res.Duration)
	return res, nil
}

func checkRoots(sourceRoot, outputRoot, version string) error {
	if strings.TrimSpace(version) == "" {
		return &swagerrors.ConfigError{Option: "version", Message: "a version is required"}
	}
	if sourceRoot == "" {
		return &swagerrors.ConfigError{Option: "source", Message: "a source root is required"}
	}
	if outputRoot == "" {
		return &swagerrors.ConfigError{Option: "output", Message: "an output root is required"}
	}
	src, err := filepath.Abs(sourceRoot)
	if err != nil {
		return &swagerrors.ConfigError{Option: "source", Value: sourceRoot, Cause: err}
	}
	out, err := filepath.Abs(outputRoot)
	if err != nil {
		return &swagerrors.ConfigError{Option: "output", Value: outputRoot, Cause: err}
	}
	if src == out {
		return &swagerrors.ConfigError{Option: "output", Value: outputRoot, Message: "output root must differ from the source root"}
	}
	return nil
}

// build holds the state of one run.
type build struct {
	cfg        *config
	log        parser.Logger
	res        *BuildResult
	sourceRoot string
	outputRoot string
	version    string

	grouping *discovery.Grouping
	outcomes map[string]*SpecOutcome
	graph    *resolver.Graph
}

func (b *build) run(ctx context.Context) error {
	if err := b.discover(ctx); err != nil {
		return err
	}
	defs, failed, err := b.parse(ctx)
	if err != nil {
		return err
	}

	ns := resolver.NewNamespace(defs, failed)
	b.graph, err = resolver.Resolve(ctx, ns,
		resolver.WithWorkers(b.cfg.workers),
		resolver.WithLogger(b.log))
	if err != nil {
		return err
	}

	selected := b.selectSpecs(ns, failed)
	b.res.Specs = selected

	docs, err := b.compile(ctx, selected)
	if err != nil {
		return err
	}

	anyFailed := len(b.res.Errors) > 0
	for _, o := range selected {
		if o.Status == StatusFailed {
			anyFailed = true
		}
	}
	if anyFailed && b.cfg.policy == PolicyAllOrNothing {
		for _, o := range selected {
			if o.Status != StatusFailed {
				o.Status = StatusWithheld
			}
		}
		if b.cfg.aggregate != "" {
			b.res.Aggregate = &SpecOutcome{Spec: b.cfg.aggregate, Status: StatusWithheld}
		}
		b.log.Warn("artifacts withheld", "withheld", b.res.Count(StatusWithheld))
		return nil
	}

	if err := b.write(ctx, selected, docs); err != nil {
		return err
	}
	if b.cfg.aggregate != "" {
		return b.writeAggregate(ctx, ns, selected, docs)
	}
	return nil
}

// discover walks the source root and groups the sources into specifications.
func (b *build) discover(ctx context.Context) error {
	walker := discovery.New(b.sourceRoot, discovery.WithSkipDir(b.outputRoot))
	sources, err := discovery.Collect(ctx, walker.Sources())
	if err != nil {
		return err
	}
	b.grouping = discovery.Group(sources)

	for _, id := range b.cfg.specs {
		if b.grouping.Spec(id) == nil {
			return &swagerrors.ConfigError{Option: "specs", Value: id, Message: "no such specification"}
		}
	}

	for _, spec := range b.grouping.Specs {
		b.outcomes[spec.ID] = &SpecOutcome{
			Spec:      spec.ID,
			Documents: spec.Documents(),
			Errors:    slices.Clone(b.grouping.Errors[spec.ID]),
		}
	}
	b.res.Errors = append(b.res.Errors, b.grouping.Errors[""]...)

	b.log.Debug("discovered sources",
		"sources", len(sources),
		"specs", len(b.grouping.Specs),
		"shadowed", len(b.grouping.Shadowed))
	return nil
}

// parse parses every source on a bounded pool. It returns the parsed
// documents in source order and the identifiers of the documents that failed,
// mapped to their specification.
func (b *build) parse(ctx context.Context) ([]*parser.SpecDefinition, map[string]string, error) {
	popts := []parser.Option{parser.WithLogger(b.log)}
	if b.cfg.readTimeout > 0 {
		popts = append(popts, parser.WithReadTimeout(b.cfg.readTimeout))
	}
	if b.cfg.maxFileSize > 0 {
		popts = append(popts, parser.WithMaxFileSize(b.cfg.maxFileSize))
	}
	p := parser.New(popts...)

	sources := b.grouping.Sources()
	defs := make([]*parser.SpecDefinition, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for i, src := range sources {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			def, err := p.Parse(gctx, src)
			if errors.Is(err, swagerrors.ErrCancelled) {
				return err
			}
			defs[i], errs[i] = def, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, &swagerrors.CancelledError{Stage: string(StageParse), Cause: err}
	}

	parsed := make([]*parser.SpecDefinition, 0, len(sources))
	failed := make(map[string]string)
	for i, src := range sources {
		if errs[i] == nil {
			parsed = append(parsed, defs[i])
			continue
		}
		failed[src.ID] = src.Spec
		if src.IsRootInfo() {
			b.res.Errors = append(b.res.Errors, flatten(errs[i])...)
			continue
		}
		o := b.outcomes[src.Spec]
		o.Errors = append(o.Errors, flatten(errs[i])...)
	}
	b.log.Debug("parsed documents", "parsed", len(parsed), "failed", len(failed))
	return parsed, failed, nil
}

// selectSpecs applies the specification and profile filters. A specification
// with a document that did not parse has unknown profiles and is kept, so
// that its failure is reported.
func (b *build) selectSpecs(ns *resolver.Namespace, failed map[string]string) []*SpecOutcome {
	hasFailed := make(map[string]bool, len(failed))
	for _, spec := range failed {
		hasFailed[spec] = true
	}

	var out []*SpecOutcome
	for _, spec := range b.grouping.Specs {
		if len(b.cfg.specs) > 0 && !slices.Contains(b.cfg.specs, spec.ID) {
			continue
		}
		if len(b.cfg.profiles) > 0 && !hasFailed[spec.ID] {
			profiles := ns.Profiles(spec.ID)
			if !slices.ContainsFunc(b.cfg.profiles, func(p string) bool { return slices.Contains(profiles, p) }) {
				b.log.Debug("specification filtered out", "spec", spec.ID, "profiles", profiles)
				continue
			}
		}
		out = append(out, b.outcomes[spec.ID])
	}
	return out
}

// compile assembles, validates and renders the selected specifications in
// parallel. A specification that fails any of these, or failed earlier, gets
// no document.
func (b *build) compile(ctx context.Context, selected []*SpecOutcome) ([]*writer.Document, error) {
	docs := make([]*writer.Document, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for i, o := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i] = b.compileSpec(o)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &swagerrors.CancelledError{Stage: string(StageValidate), Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &swagerrors.CancelledError{Stage: string(StageValidate), Cause: err}
	}

	for i, o := range selected {
		if len(o.Errors) > 0 {
			o.Status = StatusFailed
			docs[i] = nil
			b.log.Warn("specification failed", "spec", o.Spec, "errors", len(o.Errors))
			continue
		}
		// Until written.
		o.Status = StatusSkipped
	}
	return docs, nil
}

func (b *build) compileSpec(o *SpecOutcome) *writer.Document {
	if len(b.graph.Namespace().SpecDocuments(o.Spec)) == 0 {
		return nil
	}
	rs, errs := resolver.Assemble(b.graph, o.Spec,
		resolver.WithRefMode(b.cfg.mode),
		resolver.WithRelocateResponses(b.cfg.relocate),
		resolver.WithLogger(b.log))
	if len(errs) > 0 {
		o.Errors = append(o.Errors, errs...)
		return nil
	}
	o.Operations = len(rs.Operations)
	o.Definitions = len(rs.Definitions)
	o.Parameters = len(rs.Parameters)

	result := validator.Validate(rs, b.version,
		validator.WithStrictMode(b.cfg.strict),
		validator.WithLogger(b.log))
	o.Warnings = result.Warnings
	for _, ve := range result.ValidationErrors() {
		o.Errors = append(o.Errors, ve)
	}
	if len(o.Errors) > 0 {
		return nil
	}
	return writer.Render(rs, b.version)
}

// write writes the rendered documents in parallel. Nothing is renamed into
// place once cancellation is observed.
func (b *build) write(ctx context.Context, selected []*SpecOutcome, docs []*writer.Document) error {
	if err := os.MkdirAll(b.outputRoot, fileutil.DirMode); err != nil {
		return &swagerrors.ConfigError{Option: "output", Value: b.outputRoot, Message: "cannot create output root", Cause: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for i, o := range selected {
		if docs[i] == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			paths, err := writer.Write(gctx, b.outputRoot, o.Spec, docs[i], b.cfg.formats)
			if errors.Is(err, swagerrors.ErrCancelled) {
				return err
			}
			if err != nil {
				o.Errors = append(o.Errors, err)
				o.Status = StatusFailed
				b.log.Warn("specification failed", "spec", o.Spec, "errors", len(o.Errors))
				return nil
			}
			o.Artifacts = paths
			o.Status = StatusWritten
			b.log.Debug("wrote specification", "spec", o.Spec, "artifacts", len(paths))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, swagerrors.ErrCancelled) {
			return err
		}
		return &swagerrors.CancelledError{Stage: string(StageWrite), Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return &swagerrors.CancelledError{Stage: string(StageWrite), Cause: err}
	}
	return nil
}

// writeAggregate merges every written specification into one artifact
// headed by the root info document.
func (b *build) writeAggregate(ctx context.Context, ns *resolver.Namespace, selected []*SpecOutcome, docs []*writer.Document) error {
	agg := &SpecOutcome{Spec: b.cfg.aggregate, Status: StatusFailed}
	b.res.Aggregate = agg

	for _, spec := range b.grouping.Specs {
		if strings.EqualFold(spec.ID, b.cfg.aggregate) {
			agg.Errors = append(agg.Errors, &swagerrors.ResolutionError{
				Kind:       swagerrors.KindDuplicateIdentifier,
				Spec:       b.cfg.aggregate,
				Message:    "aggregate artifact would overwrite a specification artifact",
				Candidates: []string{spec.ID},
			})
			return nil
		}
	}

	merged := make(map[string]*writer.Document)
	for i, o := range selected {
		if o.Status == StatusWritten {
			merged[o.Spec] = docs[i]
			agg.Documents = append(agg.Documents, o.Spec)
		}
	}

	info := &parser.Info{}
	if b.grouping.RootInfo != nil {
		if def, ok := ns.Document(b.grouping.RootInfo.ID); ok && def.Info != nil {
			info = def.Info.DeepCopy()
		}
	}
	info.Version = b.version

	doc, err := writer.Aggregate(info, merged)
	if err != nil {
		agg.Errors = append(agg.Errors, err)
		b.log.Warn("aggregate failed", "name", agg.Spec, "error", err)
		return nil
	}
	agg.Operations = countOperations(doc)
	agg.Definitions = len(doc.Definitions)
	agg.Parameters = len(doc.Parameters)

	paths, err := writer.Write(ctx, b.outputRoot, agg.Spec, doc, b.cfg.formats)
	if errors.Is(err, swagerrors.ErrCancelled) {
		agg.Status = StatusSkipped
		return err
	}
	if err != nil {
		agg.Errors = append(agg.Errors, err)
		return nil
	}
	agg.Artifacts = paths
	agg.Status = StatusWritten
	b.log.Debug("wrote aggregate", "name", agg.Spec, "specs", len(merged))
	return nil
}

func countOperations(doc *writer.Document) int {
	n := 0
	for _, item := range doc.Paths {
		for _, op := range []*writer.Operation{item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch} {
			if op != nil {
				n++
			}
		}
	}
	return n
}
