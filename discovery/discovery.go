// Package discovery enumerates definition files under a source root.
//
// Each recognized file becomes a [Source] carrying its document identifier
// (relative slash path without extension), the identifier of the specification
// it belongs to, and its document kind. Enumeration is lazy, restartable and
// strictly lexicographic by relative path, so duplicate detection always picks
// the same winner.
//
// Layout rules:
//
//   - sourceRoot/orders.yaml is a standalone specification "orders"
//   - sourceRoot/petstore/*.yaml belong to specification "petstore"
//   - sourceRoot/petstore/actions/*.yaml hold one operation each
//   - sourceRoot/petstore/models/*.yaml hold one schema each
//   - info.yaml files hold the info block of their directory's specification;
//     sourceRoot/info.yaml is the root info used by aggregate artifacts
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/erraggy/swaggen/swagerrors"
)

// Kind classifies a definition document by its position in the tree.
type Kind int

const (
	// KindDefinition is a general document with info, operations, schemas and parameters.
	KindDefinition Kind = iota
	// KindInfo is an info document (file stem "info").
	KindInfo
	// KindAction holds exactly one operation (parent directory "actions").
	KindAction
	// KindModel holds exactly one schema (parent directory "models").
	KindModel
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindInfo:
		return "info"
	case KindAction:
		return "action"
	case KindModel:
		return "model"
	default:
		return "unknown"
	}
}

const (
	actionsDir = "actions"
	modelsDir  = "models"
	infoStem   = "info"
)

// Extensions lists the recognized definition file extensions.
var Extensions = []string{".json", ".yaml", ".yml"}

// Source is one discovered definition file.
type Source struct {
	// ID is the document identifier: relative slash path without extension.
	ID string
	// Spec is the identifier of the specification this document belongs to.
	// Empty for the root info document.
	Spec string
	// Kind is the document kind.
	Kind Kind
	// Standalone is true for root-level files that form a specification on their own.
	Standalone bool
	// RelPath is the relative slash path including extension.
	RelPath string
	// Path is the absolute file path.
	Path string
}

// Name returns the last segment of the document identifier (the file stem).
func (s Source) Name() string {
	return path.Base(s.ID)
}

// IsRootInfo reports whether s is the root info document.
func (s Source) IsRootInfo() bool {
	return s.Kind == KindInfo && s.Spec == ""
}

// Open opens the file for reading.
func (s Source) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// Option configures a Walker.
type Option func(*Walker)

// WithSkipDir excludes a directory (and everything below it) from discovery.
// Typically used to exclude an output directory nested in the source root.
func WithSkipDir(dir string) Option {
	return func(w *Walker) {
		if abs, err := filepath.Abs(dir); err == nil {
			w.skip = append(w.skip, abs)
		}
	}
}

// Walker enumerates definition files under a root directory.
type Walker struct {
	root string
	skip []string
}

// New creates a Walker for root. The root is checked when Sources is iterated.
func New(root string, opts ...Option) *Walker {
	w := &Walker{root: root}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the absolute source root, or the root as given if it cannot be made absolute.
func (w *Walker) Root() string {
	if abs, err := filepath.Abs(w.root); err == nil {
		return abs
	}
	return w.root
}

// Check verifies that the root exists, is a directory and is readable.
func (w *Walker) Check() error {
	root := w.Root()
	info, err := os.Stat(root)
	if err != nil {
		msg := "cannot access source root"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "source root does not exist"
		}
		return &swagerrors.DiscoveryError{Root: root, Message: msg, Cause: err}
	}
	if !info.IsDir() {
		return &swagerrors.DiscoveryError{Root: root, Message: "source root is not a directory"}
	}
	f, err := os.Open(root)
	if err != nil {
		return &swagerrors.DiscoveryError{Root: root, Message: "source root is not readable", Cause: err}
	}
	_ = f.Close()
	return nil
}

// Sources returns a lazy sequence of every recognized definition file in
// lexicographic order of relative path. The sequence can be ranged over any
// number of times; each iteration walks the tree again. A non-nil error ends
// the sequence and is always a *swagerrors.DiscoveryError.
func (w *Walker) Sources() iter.Seq2[Source, error] {
	return func(yield func(Source, error) bool) {
		if err := w.Check(); err != nil {
			yield(Source{}, err)
			return
		}
		root := w.Root()
		_ = w.walk(root, root, "", yield)
	}
}

// errStop ends a walk early when the consumer stops ranging.
var errStop = errors.New("stop")

func (w *Walker) walk(root, dir, rel string, yield func(Source, error) bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		yield(Source{}, &swagerrors.DiscoveryError{Root: root, Path: dir, Message: "cannot read directory", Cause: err})
		return errStop
	}

	// Sort so that the concatenated relative paths come out in byte order:
	// a directory "a" sorts as "a/", after "a.yaml".
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(sortKey(a), sortKey(b))
	})

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		relPath := name
		if rel != "" {
			relPath = rel + "/" + name
		}

		if entry.IsDir() {
			if w.skipped(full) {
				continue
			}
			if err := w.walk(root, full, relPath, yield); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		src, ok := classify(relPath, full)
		if !ok {
			continue
		}
		if !yield(src, nil) {
			return errStop
		}
	}
	return nil
}

func (w *Walker) skipped(dir string) bool {
	return slices.Contains(w.skip, dir)
}

func sortKey(e fs.DirEntry) string {
	if e.IsDir() {
		return e.Name() + "/"
	}
	return e.Name()
}

// classify derives the identifiers and kind of a file from its relative path.
func classify(relPath, full string) (Source, bool) {
	ext := strings.ToLower(path.Ext(relPath))
	if !slices.Contains(Extensions, ext) {
		return Source{}, false
	}
	id := strings.TrimSuffix(relPath, path.Ext(relPath))
	stem := path.Base(id)
	dir := path.Dir(id)
	if dir == "." {
		dir = ""
	}

	src := Source{ID: id, RelPath: relPath, Path: full, Kind: KindDefinition}

	switch {
	case dir == "":
		if stem == infoStem {
			src.Kind = KindInfo
			return src, true
		}
		src.Spec = stem
		src.Standalone = true
		return src, true
	case stem == infoStem && !underKindDir(dir):
		src.Kind = KindInfo
		src.Spec = dir
		return src, true
	}

	parent := path.Base(dir)
	specDir := path.Dir(dir)
	switch parent {
	case actionsDir:
		src.Kind = KindAction
	case modelsDir:
		src.Kind = KindModel
	}
	if src.Kind != KindDefinition && specDir != "." {
		src.Spec = specDir
	} else {
		src.Kind = KindDefinition
		src.Spec = dir
	}
	return src, true
}

// underKindDir reports whether dir is the actions or models directory of a
// spec, where every file is a declaration whatever its name.
func underKindDir(dir string) bool {
	switch path.Base(dir) {
	case actionsDir, modelsDir:
		return path.Dir(dir) != "."
	}
	return false
}

// Collect drains the sequence into a slice, stopping at the first error or
// when ctx is done.
func Collect(ctx context.Context, seq iter.Seq2[Source, error]) ([]Source, error) {
	var out []Source
	for src, err := range seq {
		if err != nil {
			return out, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, &swagerrors.CancelledError{Stage: "discovery", Cause: ctxErr}
		}
		out = append(out, src)
	}
	return out, nil
}

// OutputPath maps a specification identifier to its artifact path (without
// extension) under outputRoot. The identifier is a slash path, so the
// layout of the source tree is preserved.
func OutputPath(outputRoot, spec string) string {
	return filepath.Join(outputRoot, filepath.FromSlash(spec))
}

// String implements fmt.Stringer for log output.
func (s Source) String() string {
	return fmt.Sprintf("%s (%s, spec %q)", s.RelPath, s.Kind, s.Spec)
}
