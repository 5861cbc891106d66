package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/swaggen/discovery"
	"github.com/erraggy/swaggen/swagerrors"
)

const (
	// DefaultMaxFileSize is the default maximum definition file size (10MB).
	DefaultMaxFileSize int64 = 10 * 1024 * 1024
	// DefaultReadTimeout bounds reading a single definition file.
	DefaultReadTimeout = 30 * time.Second
)

// Parser converts discovered source files into SpecDefinitions.
// A Parser holds no per-file state and is safe for concurrent use.
type Parser struct {
	// ReadTimeout bounds reading one file. Zero disables the per-file timeout;
	// the caller's context still applies.
	ReadTimeout time.Duration
	// MaxFileSize is the maximum file size in bytes. Zero uses DefaultMaxFileSize.
	MaxFileSize int64
	// Logger is used for debug output. Nil disables logging.
	Logger Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithReadTimeout sets the per-file read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(p *Parser) { p.ReadTimeout = d }
}

// WithMaxFileSize sets the maximum file size in bytes.
func WithMaxFileSize(n int64) Option {
	return func(p *Parser) { p.MaxFileSize = n }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(p *Parser) { p.Logger = l }
}

// New creates a Parser with default settings.
func New(opts ...Option) *Parser {
	p := &Parser{ReadTimeout: DefaultReadTimeout, MaxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads and parses one source file with a default Parser.
func Parse(ctx context.Context, src discovery.Source, opts ...Option) (*SpecDefinition, error) {
	return New(opts...).Parse(ctx, src)
}

// Parse reads and parses one source file.
//
// The returned error is a *swagerrors.CancelledError when ctx is done, and
// otherwise one or more *swagerrors.ParseError values joined with errors.Join.
func (p *Parser) Parse(ctx context.Context, src discovery.Source) (*SpecDefinition, error) {
	data, err := p.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(src, data)
}

type readResult struct {
	data []byte
	err  error
}

func (p *Parser) read(ctx context.Context, src discovery.Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &swagerrors.CancelledError{Stage: "parse", Cause: err}
	}
	readCtx := ctx
	if p.ReadTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, p.ReadTimeout)
		defer cancel()
	}

	limit := p.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}

	done := make(chan readResult, 1)
	go func() {
		f, err := src.Open()
		if err != nil {
			done <- readResult{err: err}
			return
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(io.LimitReader(f, limit+1))
		done <- readResult{data: data, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, p.fail(src, 0, 0, "cannot read file", res.err)
		}
		if int64(len(res.data)) > limit {
			return nil, p.fail(src, 0, 0, fmt.Sprintf("file exceeds maximum size of %d bytes", limit), nil)
		}
		return res.data, nil
	case <-readCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, &swagerrors.CancelledError{Stage: "parse", Cause: err}
		}
		return nil, p.fail(src, 0, 0, fmt.Sprintf("read timed out after %s", p.ReadTimeout), readCtx.Err())
	}
}

func (p *Parser) fail(src discovery.Source, line, col int, msg string, cause error) *swagerrors.ParseError {
	return &swagerrors.ParseError{
		Document: src.ID,
		Path:     src.RelPath,
		Line:     line,
		Column:   col,
		Message:  msg,
		Cause:    cause,
	}
}

// yamlLineRe extracts the line number from go-yaml error messages.
var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func errorLine(err error) int {
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// definitionFile is the top-level shape of a definition document.
type definitionFile struct {
	Info       *Info                 `yaml:"info,omitempty"`
	Operations []*Operation          `yaml:"operations,omitempty"`
	Schemas    map[string]*Schema    `yaml:"schemas,omitempty"`
	Parameters map[string]*Parameter `yaml:"parameters,omitempty"`
	Extra      map[string]any        `yaml:",inline"`
}

// ParseBytes parses the content of one source file.
func (p *Parser) ParseBytes(src discovery.Source, data []byte) (*SpecDefinition, error) {
	log := ForDocument(p.Logger, src.Spec, src.ID)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, p.fail(src, 0, 0, "document is empty", nil)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, p.fail(src, errorLine(err), 0, "invalid YAML or JSON", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, p.fail(src, 0, 0, "document is empty", nil)
	}
	body := root.Content[0]
	if body.Kind != yaml.MappingNode {
		return nil, p.fail(src, body.Line, body.Column, "document must be a mapping", nil)
	}

	sm := buildSourceMap(&root, src.RelPath)

	value, err := nodeToValue(&root)
	if err != nil {
		return nil, p.fail(src, errorLine(err), 0, "unsupported document content", err)
	}
	violations, err := checkShape(src.Kind, value)
	if err != nil {
		return nil, p.fail(src, 0, 0, "shape check failed", err)
	}
	if len(violations) > 0 {
		errs := make([]error, 0, len(violations))
		for _, v := range violations {
			loc := sm.GetKey(v.Path)
			if !loc.IsKnown() {
				loc = sm.Nearest(v.Path)
			}
			errs = append(errs, p.fail(src, loc.Line, loc.Column, v.Message, nil))
		}
		return nil, errors.Join(errs...)
	}

	def := &SpecDefinition{
		ID:        src.ID,
		Spec:      src.Spec,
		Path:      src.RelPath,
		Kind:      src.Kind,
		SourceMap: sm,
	}
	if err := p.decode(src, body, def); err != nil {
		return nil, err
	}

	if errs := p.checkResponseShorthand(src, def); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	c := &collector{def: def}
	c.run()
	if len(c.errs) > 0 {
		errs := make([]error, 0, len(c.errs))
		for _, e := range c.errs {
			errs = append(errs, p.fail(src, e.loc.Line, e.loc.Column, e.msg, nil))
		}
		return nil, errors.Join(errs...)
	}
	for _, op := range def.Operations {
		applyOperationDefaults(op, src.Spec)
	}

	log.Debug("parsed definition",
		"kind", def.Kind.String(),
		"operations", len(def.Operations),
		"schemas", len(def.Schemas),
		"parameters", len(def.Parameters),
		"references", len(def.References))
	return def, nil
}

// decode fills def from the document body according to the document kind.
func (p *Parser) decode(src discovery.Source, body *yaml.Node, def *SpecDefinition) error {
	decodeErr := func(err error) error {
		return p.fail(src, errorLine(err), 0, "invalid field value", err)
	}

	switch src.Kind {
	case discovery.KindInfo:
		var info Info
		if err := body.Decode(&info); err != nil {
			return decodeErr(err)
		}
		def.Info = &info

	case discovery.KindAction:
		var op Operation
		if err := body.Decode(&op); err != nil {
			return decodeErr(err)
		}
		if op.Name == "" {
			op.Name = src.Name()
		}
		def.Operations = []*Operation{&op}

	case discovery.KindModel:
		var schema Schema
		if err := body.Decode(&schema); err != nil {
			return decodeErr(err)
		}
		def.Schemas = map[string]*Schema{src.Name(): &schema}

	default:
		var file definitionFile
		if err := body.Decode(&file); err != nil {
			return decodeErr(err)
		}
		def.Info = file.Info
		def.Operations = file.Operations
		def.Schemas = file.Schemas
		def.Parameters = file.Parameters
		def.Extra = normalizeExtra(file.Extra)
	}

	seen := make(map[string]int, len(def.Operations))
	for i, op := range def.Operations {
		if op == nil {
			loc := def.Location(def.OperationPath(i))
			return p.fail(src, loc.Line, loc.Column, "operation must be a mapping", nil)
		}
		if first, dup := seen[op.Name]; dup {
			loc := def.Location(def.OperationPath(i))
			return p.fail(src, loc.Line, loc.Column,
				fmt.Sprintf("operation %q is declared twice (first at operations[%d])", op.Name, first), nil)
		}
		seen[op.Name] = i
		op.Location = def.Location(def.OperationPath(i))
	}
	if def.Info != nil {
		def.Info.Extra = normalizeExtra(def.Info.Extra)
	}
	return nil
}

// checkResponseShorthand rejects operations that declare the same success
// response twice, once through the response shorthand and once under
// responses["200"].
func (p *Parser) checkResponseShorthand(src discovery.Source, def *SpecDefinition) []error {
	var errs []error
	for i, op := range def.Operations {
		if op.Response == nil {
			continue
		}
		if _, dup := op.Responses["200"]; !dup {
			continue
		}
		at := buildChildPath(def.OperationPath(i)+".responses", "200")
		loc := def.SourceMap.GetKey(at)
		if !loc.IsKnown() {
			loc = def.Location(at)
		}
		errs = append(errs, p.fail(src, loc.Line, loc.Column,
			fmt.Sprintf("operation %q declares both response and responses[\"200\"]", op.Name), nil))
	}
	return errs
}

// applyOperationDefaults fills in the values the generator derives when a
// definition leaves them out.
func applyOperationDefaults(op *Operation, spec string) {
	op.Method = strings.ToLower(op.Method)
	if op.Method == "" {
		op.Method = "post"
	}
	if op.Path == "" {
		op.Path = "/" + spec + "/actions/" + op.Name
	}
	if op.Summary == "" {
		op.Summary = op.Name
	}
	if len(op.Tags) == 0 && spec != "" {
		op.Tags = []string{spec}
	}
	if len(op.Consumes) == 0 {
		op.Consumes = []string{"application/json"}
	}
	if len(op.Produces) == 0 {
		op.Produces = []string{"application/json"}
	}
	if op.Request != nil && op.Request.Name == "" {
		op.Request.Name = op.Name + "Request"
	}

	if op.Response != nil {
		if op.Responses == nil {
			op.Responses = make(map[string]*Response, 1)
		}
		op.Responses["200"] = op.Response
		op.Response = nil
	}
	if len(op.Responses) == 0 {
		op.Responses = map[string]*Response{
			"200": {Description: "Successful response", Defaulted: true},
		}
	}
	if ok, found := op.Responses["200"]; found && ok != nil && ok.Name == "" {
		ok.Name = op.Name + "Result"
	}
}
