package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/storytrack/storytrack/internal/config"
)

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storytrack", cmd.Use)
	assert.Contains(t, cmd.Long, "mcpServers")
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()

	for _, name := range []string{"serve", "config", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := newRootCommand()

	for _, name := range []string{"config", "data-dir", "log-level", "no-journal"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag --%s", name)
	}
	assert.Equal(t, "false", cmd.PersistentFlags().Lookup("no-journal").DefValue)
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "storytrack vdev\n", out.String())
}

// runConfig executes the config command with the given args and an
// isolated environment, returning the decoded output.
func runConfig(t *testing.T, env map[string]string, args ...string) config.Config {
	t.Helper()

	cmd := buildRootCommand(func(k string) string { return env[k] })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"config"}, args...))

	require.NoError(t, cmd.Execute())

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &cfg))
	return cfg
}

func TestConfigCommand_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("data_dir: "+filepath.Join(dir, "from-file")+"\nlog_level: info\n"), 0o644))

	// File only.
	cfg := runConfig(t, nil, "--config", file)
	assert.Equal(t, filepath.Join(dir, "from-file"), cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Journal)

	// Environment beats the file.
	cfg = runConfig(t, map[string]string{
		config.EnvLogLevel: "debug",
		config.EnvJournal:  "false",
	}, "--config", file)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Journal)

	// Flags beat the environment.
	flagDir := filepath.Join(dir, "from-flag")
	cfg = runConfig(t, map[string]string{
		config.EnvDataDir: filepath.Join(dir, "from-env"),
	}, "--config", file, "--data-dir", flagDir, "--log-level", "error", "--no-journal")
	assert.Equal(t, flagDir, cfg.DataDir)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.False(t, cfg.Journal)
}

func TestConfigCommand_InvalidLogLevel(t *testing.T) {
	cmd := buildRootCommand(func(string) string { return "" })
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--log-level", "loud"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
