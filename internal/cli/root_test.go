package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand(nil, nil)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil, nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "sysfail", cmd.Use)
	assert.Contains(t, cmd.Long, "failure policy")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil, nil)
	commands := []string{"generate", "check", "simulate", "policies"}

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
	cmd := NewRootCommand(nil, nil)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := NewRootCommand(nil, nil)
	generateCmd, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	dryRun := generateCmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)
}

func TestSimulateCommandFlags(t *testing.T) {
	cmd := NewRootCommand(nil, nil)
	simulateCmd, _, err := cmd.Find([]string{"simulate"})
	require.NoError(t, err)

	assert.NotNil(t, simulateCmd.Flags().Lookup("filter"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "policies", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestDirsOrDefault(t *testing.T) {
	assert.Equal(t, []string{"."}, dirsOrDefault(nil))
	assert.Equal(t, []string{"a", "b"}, dirsOrDefault([]string{"a", "b"}))
}

func TestVerboseLowersLevel(t *testing.T) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	cmd := NewRootCommand(nil, level)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"policies", "--verbose"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, slog.LevelDebug, level.Level())
}
