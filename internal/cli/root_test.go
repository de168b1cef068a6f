package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "stricttuple", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "describe", "check"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
	assert.Contains(t, formatFlag.Usage, "text|json")

	styleFlag := cmd.PersistentFlags().Lookup("style")
	require.NotNil(t, styleFlag)
	assert.Equal(t, "light", styleFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestCheckCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	checkCmd, _, err := cmd.Find([]string{"check"})
	require.NoError(t, err)

	tableFlag := checkCmd.Flags().Lookup("table")
	require.NotNil(t, tableFlag)
	assert.Equal(t, "t", tableFlag.Shorthand)

	watchFlag := checkCmd.Flags().Lookup("watch")
	require.NotNil(t, watchFlag)
	assert.Equal(t, "w", watchFlag.Shorthand)
}

func TestRootLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", pointSchemaYAML)
	cfg := writeFile(t, dir, "stricttuple.yaml", "format: json\nschema: "+schema+"\n")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", "--config", cfg})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"status": "ok"`)
}

func TestRootFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", pointSchemaYAML)
	cfg := writeFile(t, dir, "stricttuple.yaml", "format: json\n")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", "--config", cfg, "--format", "text", schema})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "record type(s) valid")
}

func TestRootInvalidConfig(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "stricttuple.yaml", "format: xml\n")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", "--config", cfg})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "loading configuration")
	assert.False(t, IsReported(err))
}

func TestRootVerboseLogsToStderr(t *testing.T) {
	schema := writeFile(t, t.TempDir(), "schema.yaml", pointSchemaYAML)

	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"validate", "-v", schema})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "schema compiled")
}
