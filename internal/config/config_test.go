package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/perfmon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "perfmon.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
enabled = true
database = "/path/to/perf.db"
measure_memory = true
auto_flush = true
flush_timeout = "5s"
log_level = "debug"
`)
	t.Setenv("PERFMON_CONFIG", configPath)

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.True(t, cfg.Enabled, "Expected Enabled true")
	assert.Equal(t, "/path/to/perf.db", cfg.Database, "Expected Database /path/to/perf.db")
	assert.True(t, cfg.MeasureMemory, "Expected MeasureMemory true")
	assert.True(t, cfg.AutoFlush, "Expected AutoFlush true")
	assert.Equal(t, 5*time.Second, cfg.FlushTimeout, "Expected FlushTimeout 5s")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PERFMON_CONFIG", "")

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err, "Failed to load config")

	assert.True(t, cfg.Enabled, "Expected default Enabled true")
	assert.Empty(t, cfg.Database, "Expected default Database empty")
	assert.False(t, cfg.MeasureMemory, "Expected default MeasureMemory false")
	assert.False(t, cfg.AutoFlush, "Expected default AutoFlush false")
	assert.Equal(t, config.DefaultFlushTimeout, cfg.FlushTimeout)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.Empty(t, cfg.Args)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("PERFMON_CONFIG", configPath)

	_, err := config.Load(config.WithArgs(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(
		config.WithArgs(nil),
		config.WithConfigFile(filepath.Join(t.TempDir(), "missing.toml")),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	configPath := writeConfig(t, `
log_level = "invalid"
`)
	t.Setenv("PERFMON_CONFIG", configPath)

	_, err := config.Load(config.WithArgs(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_log_level")
}

func TestInvalidFlushTimeout(t *testing.T) {
	t.Setenv("PERFMON_CONFIG", "")

	_, err := config.Load(config.WithArgs([]string{"--flush-timeout=-1s"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "performance_invalid_config")
}

func TestFlagsOverrideFile(t *testing.T) {
	configPath := writeConfig(t, `
database = "/from/file.db"
log_level = "error"
`)
	t.Setenv("PERFMON_CONFIG", configPath)

	cfg, err := config.Load(config.WithArgs([]string{
		"--log-level", "debug", "--database", "/from/flag.db", "--measure-memory", "show",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
	assert.Equal(t, "/from/flag.db", cfg.Database)
	assert.True(t, cfg.MeasureMemory)
	assert.Equal(t, []string{"show"}, cfg.Args)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	configPath := writeConfig(t, `
enabled = true
auto_flush = false
`)
	t.Setenv("PERFMON_CONFIG", configPath)
	t.Setenv("PERFMON_ENABLED", "false")
	t.Setenv("PERFMON_AUTO_FLUSH", "true")

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.AutoFlush)
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("PERFMON_CONFIG", "")

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "--log-level", "debug"}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}

func TestPerformanceConfig(t *testing.T) {
	cfg := &config.Config{
		Enabled:       false,
		Database:      "/tmp/perf.db",
		MeasureMemory: true,
		AutoFlush:     true,
		FlushTimeout:  time.Second,
		LogLevel:      "info",
	}

	perf := cfg.Performance()
	assert.False(t, perf.Enabled)
	assert.Equal(t, "/tmp/perf.db", perf.Destination)
	assert.True(t, perf.MeasureMemory)
	assert.True(t, perf.AutoFlush)
	assert.Equal(t, time.Second, perf.FlushTimeout)

	var p config.Provider = cfg
	assert.Equal(t, "/tmp/perf.db", p.GetDatabase())
	assert.Equal(t, "info", p.GetLogLevel())
}
