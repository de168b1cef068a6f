package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stricttuple/render"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stricttuple.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("format", DefaultFormat, "")
	fs.String("style", DefaultStyle, "")
	fs.Bool("verbose", false, "")
	fs.String("schema", "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "light", cfg.Style)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Schema)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "format: json\nstyle: rounded\nschema: schemas/point.cue\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, string(render.StyleRounded), cfg.Style)
	assert.Equal(t, "schemas/point.cue", cfg.Schema)
	assert.Equal(t, path, cfg.File)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "style: rounded\n")
	t.Setenv("STRICTTUPLE_STYLE", "markdown")
	t.Setenv("STRICTTUPLE_VERBOSE", "true")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.Style)
	assert.True(t, cfg.Verbose)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("STRICTTUPLE_FORMAT", "json")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--format", "text", "--schema", "s.yaml"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "s.yaml", cfg.Schema)
}

func TestLoadUnchangedFlagsKeepLowerLayers(t *testing.T) {
	t.Setenv("STRICTTUPLE_STYLE", "plain")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.Style)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		_, err := Load(writeConfig(t, "format: xml\n"), nil)
		assert.ErrorContains(t, err, "invalid format")
	})
	t.Run("style", func(t *testing.T) {
		_, err := Load(writeConfig(t, "style: fancy\n"), nil)
		assert.ErrorContains(t, err, "invalid style")
	})
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")
}
