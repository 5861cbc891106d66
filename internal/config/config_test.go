package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/swaggen/swagerrors"
)

// clearEnv isolates tests from SWAGGEN_* variables of the ambient environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VERSION", "FORMAT", "POLICY", "REF_MODE", "RELOCATE_RESPONSES",
		"PROFILES", "SPECS", "AGGREGATE", "WORKERS", "TIMEOUT",
		"READ_TIMEOUT", "MAX_FILE_SIZE", "STRICT", "VERBOSE",
	} {
		t.Setenv(EnvPrefix+key, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Empty(t, c.Version)
	assert.Equal(t, []string{"json", "yaml"}, c.Formats)
	assert.Equal(t, "partial", c.Policy)
	assert.Equal(t, "link", c.RefMode)
	assert.False(t, c.RelocateResponses)
	assert.Empty(t, c.Profiles)
	assert.Zero(t, c.Workers)
	assert.Zero(t, c.Timeout)
	assert.Equal(t, 30*time.Second, c.ReadTimeout)
	assert.Equal(t, int64(10*1024*1024), c.MaxFileSize)
	assert.False(t, c.Verbose)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SWAGGEN_VERSION", "2.3.0")
	t.Setenv("SWAGGEN_FORMAT", "yaml")
	t.Setenv("SWAGGEN_POLICY", "all-or-nothing")
	t.Setenv("SWAGGEN_REF_MODE", "inline")
	t.Setenv("SWAGGEN_RELOCATE_RESPONSES", "true")
	t.Setenv("SWAGGEN_PROFILES", "public,internal")
	t.Setenv("SWAGGEN_SPECS", "petstore")
	t.Setenv("SWAGGEN_AGGREGATE", "all")
	t.Setenv("SWAGGEN_WORKERS", "4")
	t.Setenv("SWAGGEN_TIMEOUT", "2m")
	t.Setenv("SWAGGEN_VERBOSE", "true")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "2.3.0", c.Version)
	assert.Equal(t, []string{"yaml"}, c.Formats)
	assert.Equal(t, "all-or-nothing", c.Policy)
	assert.Equal(t, "inline", c.RefMode)
	assert.True(t, c.RelocateResponses)
	assert.Equal(t, []string{"public", "internal"}, c.Profiles)
	assert.Equal(t, []string{"petstore"}, c.Specs)
	assert.Equal(t, "all", c.Aggregate)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, 2*time.Minute, c.Timeout)
	assert.True(t, c.Verbose)

	opts, err := c.Options(nil)
	require.NoError(t, err)
	assert.Len(t, opts, 11)
}

func TestLoad_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("SWAGGEN_WORKERS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, swagerrors.ErrConfig))
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		option string
	}{
		{name: "format", cfg: Config{Formats: []string{"xml"}}, option: "format"},
		{name: "policy", cfg: Config{Formats: []string{"json"}, Policy: "sometimes"}, option: "policy"},
		{name: "ref mode", cfg: Config{Formats: []string{"json"}, RefMode: "copy"}, option: "ref-mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Options(nil)
			require.Error(t, err)
			var ce *swagerrors.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.option, ce.Option)
		})
	}
}
