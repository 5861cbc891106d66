// Package config loads build defaults from SWAGGEN_* environment variables.
package config

import (
	"time"

	env "github.com/caarlos0/env/v11"

	"github.com/erraggy/swaggen/builder"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/resolver"
	"github.com/erraggy/swaggen/swagerrors"
	"github.com/erraggy/swaggen/writer"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "SWAGGEN_"

// Config holds the defaults shared by the command line and the MCP server.
type Config struct {
	Version           string        `env:"VERSION"`
	Formats           []string      `env:"FORMAT" envDefault:"json,yaml" envSeparator:","`
	Policy            string        `env:"POLICY" envDefault:"partial"`
	RefMode           string        `env:"REF_MODE" envDefault:"link"`
	RelocateResponses bool          `env:"RELOCATE_RESPONSES" envDefault:"false"`
	Profiles          []string      `env:"PROFILES" envSeparator:","`
	Specs             []string      `env:"SPECS" envSeparator:","`
	Aggregate         string        `env:"AGGREGATE"`
	Workers           int           `env:"WORKERS" envDefault:"0"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"0s"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	MaxFileSize       int64         `env:"MAX_FILE_SIZE" envDefault:"10485760"`
	Strict            bool          `env:"STRICT" envDefault:"false"`
	Verbose           bool          `env:"VERBOSE" envDefault:"false"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, &swagerrors.ConfigError{Option: "environment", Message: "invalid " + EnvPrefix + "* variable", Cause: err}
	}
	return &cfg, nil
}

// Options converts the configuration into build options. The timeout is not
// a build option; callers bound the context with it.
func (c *Config) Options(logger parser.Logger) ([]builder.Option, error) {
	formats, err := writer.ParseFormats(c.Formats)
	if err != nil {
		return nil, &swagerrors.ConfigError{Option: "format", Value: c.Formats, Cause: err}
	}
	policy, err := builder.ParsePolicy(c.Policy)
	if err != nil {
		return nil, err
	}
	mode, err := resolver.ParseRefMode(c.RefMode)
	if err != nil {
		return nil, &swagerrors.ConfigError{Option: "ref-mode", Value: c.RefMode, Cause: err}
	}

	opts := []builder.Option{
		builder.WithFormats(formats...),
		builder.WithPolicy(policy),
		builder.WithRefMode(mode),
		builder.WithRelocateResponses(c.RelocateResponses),
		builder.WithWorkers(c.Workers),
		builder.WithReadTimeout(c.ReadTimeout),
		builder.WithMaxFileSize(c.MaxFileSize),
		builder.WithStrictMode(c.Strict),
	}
	if len(c.Profiles) > 0 {
		opts = append(opts, builder.WithProfiles(c.Profiles...))
	}
	if len(c.Specs) > 0 {
		opts = append(opts, builder.WithSpecs(c.Specs...))
	}
	if c.Aggregate != "" {
		opts = append(opts, builder.WithAggregate(c.Aggregate))
	}
	if logger != nil {
		opts = append(opts, builder.WithLogger(logger))
	}
	return opts, nil
}
