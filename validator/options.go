package validator

import "github.com/erraggy/swaggen/parser"

// Option configures validation.
type Option func(*config)

type config struct {
	includeWarnings bool
	strictMode      bool
	logger          parser.Logger
}

func applyOptions(opts []Option) *config {
	cfg := &config{includeWarnings: true}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = parser.OrNop(cfg.logger)
	return cfg
}

// WithIncludeWarnings enables or disables warnings.
// Default: true
func WithIncludeWarnings(enabled bool) Option {
	return func(c *config) { c.includeWarnings = enabled }
}

// WithStrictMode enables checks beyond the Swagger 2.0 requirements.
// Default: false
func WithStrictMode(enabled bool) Option {
	return func(c *config) { c.strictMode = enabled }
}

// WithLogger sets the logger for validation diagnostics.
func WithLogger(l parser.Logger) Option {
	return func(c *config) { c.logger = l }
}
