package mcpserver

import (
	"log/slog"

	env "github.com/caarlos0/env/v11"

	"github.com/erraggy/swaggen/internal/config"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Build holds the defaults of the build tool, shared with the command line.
	Build *config.Config
	limits
}

// limits bounds tool output.
type limits struct {
	// DiagnosticLimit is the default page size for diagnostics and specs.
	DiagnosticLimit int `env:"MCP_DIAGNOSTIC_LIMIT" envDefault:"100"`
	// MaxLimit caps any requested page size.
	MaxLimit int `env:"MCP_MAX_LIMIT" envDefault:"1000"`
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from SWAGGEN_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	c := &serverConfig{limits: limits{DiagnosticLimit: 100, MaxLimit: 1000}}

	build, err := config.Load()
	if err != nil {
		slog.Warn("invalid build env var, using defaults", "error", err)
		build = &config.Config{
			Formats:     []string{"json", "yaml"},
			Policy:      "partial",
			RefMode:     "link",
			MaxFileSize: 10 << 20,
		}
	}
	c.Build = build

	var l limits
	if err := env.ParseWithOptions(&l, env.Options{Prefix: config.EnvPrefix}); err != nil {
		slog.Warn("invalid limit env var, using defaults", "error", err)
		return c
	}
	if l.DiagnosticLimit > 0 {
		c.DiagnosticLimit = l.DiagnosticLimit
	}
	if l.MaxLimit > 0 {
		c.MaxLimit = l.MaxLimit
	}
	return c
}
