package builder

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/resolver"
	"github.com/erraggy/swaggen/swagerrors"
	"github.com/erraggy/swaggen/writer"
)

// Policy decides what happens to passing specifications when others fail.
type Policy int

const (
	// PolicyPartial writes every specification that passed on its own.
	PolicyPartial Policy = iota
	// PolicyAllOrNothing withholds every artifact when any specification fails.
	PolicyAllOrNothing
)

// String returns the policy name used on the command line.
func (p Policy) String() string {
	switch p {
	case PolicyPartial:
		return "partial"
	case PolicyAllOrNothing:
		return "all-or-nothing"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "partial" or "all-or-nothing".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "partial":
		return PolicyPartial, nil
	case "all-or-nothing", "allornothing", "strict":
		return PolicyAllOrNothing, nil
	}
	return 0, &swagerrors.ConfigError{Option: "policy", Value: s, Message: `must be "partial" or "all-or-nothing"`}
}

// Option configures a build.
type Option func(*config) error

type config struct {
	workers     int
	policy      Policy
	mode        resolver.RefMode
	formats     []writer.Format
	relocate    bool
	profiles    []string
	specs       []string
	aggregate   string
	readTimeout time.Duration
	maxFileSize int64
	strict      bool
	logger      parser.Logger
}

func applyOptions(opts []Option) (*config, error) {
	cfg := &config{
		workers: runtime.GOMAXPROCS(0),
		formats: writer.DefaultFormats,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	cfg.logger = parser.OrNop(cfg.logger)
	return cfg, nil
}

// WithWorkers bounds every worker pool of the run. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return &swagerrors.ConfigError{Option: "workers", Value: n, Message: "must not be negative"}
		}
		if n == 0 {
			n = runtime.GOMAXPROCS(0)
		}
		c.workers = n
		return nil
	}
}

// WithPolicy sets the failure policy. The default is PolicyPartial.
func WithPolicy(p Policy) Option {
	return func(c *config) error {
		if p != PolicyPartial && p != PolicyAllOrNothing {
			return &swagerrors.ConfigError{Option: "policy", Value: int(p), Message: "unknown policy"}
		}
		c.policy = p
		return nil
	}
}

// WithRefMode selects whether references become $ref links (the default) or inline copies.
func WithRefMode(m resolver.RefMode) Option {
	return func(c *config) error {
		if m != resolver.RefModeLink && m != resolver.RefModeInline {
			return &swagerrors.ConfigError{Option: "ref-mode", Value: int(m), Message: "unknown reference mode"}
		}
		c.mode = m
		return nil
	}
}

// WithFormats sets the artifact formats. The default is JSON and YAML.
func WithFormats(formats ...writer.Format) Option {
	return func(c *config) error {
		if len(formats) == 0 {
			return &swagerrors.ConfigError{Option: "format", Message: "at least one format is required"}
		}
		var out []writer.Format
		for _, f := range formats {
			parsed, err := writer.ParseFormat(string(f))
			if err != nil {
				return &swagerrors.ConfigError{Option: "format", Value: string(f), Message: "unknown format", Cause: err}
			}
			if !slices.Contains(out, parsed) {
				out = append(out, parsed)
			}
		}
		c.formats = out
		return nil
	}
}

// WithRelocateResponses moves named inline response schemas into definitions.
func WithRelocateResponses(enabled bool) Option {
	return func(c *config) error {
		c.relocate = enabled
		return nil
	}
}

// WithProfiles restricts the build to specifications tagged with at least one
// of the profiles.
func WithProfiles(profiles ...string) Option {
	return func(c *config) error {
		c.profiles = nonEmpty(profiles)
		return nil
	}
}

// WithSpecs restricts the build to the named specifications.
func WithSpecs(specs ...string) Option {
	return func(c *config) error {
		c.specs = nonEmpty(specs)
		return nil
	}
}

// WithAggregate also writes every written specification merged into one
// artifact named name, using the root info document as its header.
func WithAggregate(name string) Option {
	return func(c *config) error {
		name = strings.Trim(strings.TrimSpace(name), "/")
		if name == "" {
			return &swagerrors.ConfigError{Option: "aggregate", Message: "name must not be empty"}
		}
		for _, seg := range strings.Split(name, "/") {
			if seg == "." || seg == ".." || seg == "" {
				return &swagerrors.ConfigError{Option: "aggregate", Value: name, Message: "name must be a relative path without dot segments"}
			}
		}
		c.aggregate = name
		return nil
	}
}

// WithReadTimeout bounds the time spent reading one definition file.
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return &swagerrors.ConfigError{Option: "timeout", Value: d.String(), Message: "must not be negative"}
		}
		c.readTimeout = d
		return nil
	}
}

// WithMaxFileSize rejects definition files larger than n bytes.
func WithMaxFileSize(n int64) Option {
	return func(c *config) error {
		if n < 0 {
			return &swagerrors.ConfigError{Option: "max-file-size", Value: n, Message: "must not be negative"}
		}
		c.maxFileSize = n
		return nil
	}
}

// WithStrictMode enables the validator's strict checks.
func WithStrictMode(enabled bool) Option {
	return func(c *config) error {
		c.strict = enabled
		return nil
	}
}

// WithLogger sets the logger for the run. Every record carries the run ID.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
