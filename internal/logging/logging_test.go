package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/proposal-tracker/internal/config"
)

func setupTest(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", tmp)
	config.Load()
	return tmp
}

func enableLogging(t *testing.T) Config {
	t.Helper()
	setupTest(t)
	t.Setenv("PROPOSALS_LOGGING_ENABLED", "true")
	config.Load()
	return FromGlobalConfig()
}

// lastEntry reads the last JSON line written to the single log file.
func lastEntry(t *testing.T) map[string]any {
	t.Helper()
	logDir := filepath.Join(config.Get("state_dir", ""), "logs")
	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := os.ReadFile(filepath.Join(logDir, entries[len(entries)-1].Name()))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestConfigFromGlobal(t *testing.T) {
	setupTest(t)
	t.Setenv("PROPOSALS_LOGGING_ENABLED", "true")
	t.Setenv("PROPOSALS_LOGGING_LEVEL", "warn")
	t.Setenv("PROPOSALS_LOGGING_MAX_FILES", "5")
	config.Load()

	cfg := FromGlobalConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.Equal(t, filepath.Base(os.Args[0]), cfg.Command)
	assert.Equal(t, os.Getpid(), cfg.PID)
}

func TestLogLevelMapping(t *testing.T) {
	setupTest(t)

	t.Setenv("PROPOSALS_DEBUG", "true")
	t.Setenv("PROPOSALS_QUIET", "true")
	t.Setenv("PROPOSALS_LOGGING_LEVEL", "info")
	config.Load()
	assert.Equal(t, "debug", FromGlobalConfig().Level, "debug wins over quiet")

	t.Setenv("PROPOSALS_DEBUG", "")
	config.Load()
	assert.Equal(t, "error", FromGlobalConfig().Level)

	t.Setenv("PROPOSALS_QUIET", "")
	config.Load()
	assert.Equal(t, "info", FromGlobalConfig().Level)
}

func TestLogDir(t *testing.T) {
	tmp := setupTest(t)

	stateDir := config.Get("state_dir", "")
	require.True(t, strings.HasPrefix(stateDir, tmp))

	logDir, err := LogDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(stateDir, "logs"), logDir)
	info, err := os.Stat(logDir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestLogDirFallback(t *testing.T) {
	tmp := setupTest(t)
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	// A state dir below a regular file can never be created.
	t.Setenv("PROPOSALS_STATE_DIR", filepath.Join(blocker, "state"))
	config.Load()

	logDir, err := LogDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(logDir, os.TempDir()))
	assert.True(t, strings.HasSuffix(logDir, filepath.Join("proposals", "logs")))
}

func TestInitDisabled(t *testing.T) {
	logger, err := Init(Config{Enabled: false})
	require.NoError(t, err)
	require.IsType(t, noopLogger{}, logger)
	logger.Info("ignored")
	assert.NoError(t, logger.Shutdown())
}

func TestInitEnabledCreatesFile(t *testing.T) {
	cfg := enableLogging(t)
	cfg.Command = "list cmd"

	logger, err := Init(cfg)
	require.NoError(t, err)
	defer logger.Shutdown()

	logDir := filepath.Join(config.Get("state_dir", ""), "logs")
	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	fname := entries[0].Name()
	assert.True(t, strings.HasPrefix(fname, filePrefix))
	assert.Contains(t, fname, fmt.Sprintf("_PID%d_", os.Getpid()))
	assert.True(t, strings.HasSuffix(fname, "_list_cmd.log"))
	info, err := os.Stat(filepath.Join(logDir, fname))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoggingWritesJSON(t *testing.T) {
	logger, err := Init(enableLogging(t))
	require.NoError(t, err)

	logger.Info("proposals fetched", "count", 42, "backend", "sqlite")
	require.NoError(t, logger.Shutdown())

	entry := lastEntry(t)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "proposals fetched", entry["msg"])
	assert.Equal(t, float64(os.Getpid()), entry["pid"])
	assert.Equal(t, float64(42), entry["count"])
	assert.Equal(t, "sqlite", entry["backend"])
}

func TestRedaction(t *testing.T) {
	logger, err := Init(enableLogging(t))
	require.NoError(t, err)

	child := logger.With("apikey", "anon-key")
	child.Info("signed in", "access_token", "jwt", "password", "hunter2", "email", "ana@example.com")
	require.NoError(t, logger.Shutdown())

	entry := lastEntry(t)
	assert.Equal(t, redacted, entry["apikey"])
	assert.Equal(t, redacted, entry["access_token"])
	assert.Equal(t, redacted, entry["password"])
	assert.Equal(t, "ana@example.com", entry["email"])
}

func TestRedactionEdgeCases(t *testing.T) {
	r := newRedactor()

	assert.Equal(t, []any{"PASSWORD", redacted}, r.redact([]any{"PASSWORD", "x"}))
	assert.Equal(t, []any{"refresh-token", redacted}, r.redact([]any{"refresh-token", "x"}))
	assert.Equal(t, []any{"api.key", redacted}, r.redact([]any{"api.key", "x"}))
	assert.Equal(t, []any{"Authorization", redacted}, r.redact([]any{"Authorization", "Bearer x"}))

	assert.Equal(t, []any{"secretary", "v"}, r.redact([]any{"secretary", "v"}))
	assert.Equal(t, []any{"client_name", "Acme"}, r.redact([]any{"client_name", "Acme"}))

	odd := []any{"password", "hidden", "extra"}
	assert.Equal(t, []any{"password", redacted, "extra"}, r.redact(odd))
	assert.Equal(t, "hidden", odd[1], "input is not modified")
	assert.Empty(t, r.redact([]any{}))
}

func TestRotation(t *testing.T) {
	setupTest(t)
	t.Setenv("PROPOSALS_LOGGING_ENABLED", "true")
	t.Setenv("PROPOSALS_LOGGING_MAX_FILES", "2")
	config.Load()

	logDir, err := LogDir()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		path := filepath.Join(logDir, fmt.Sprintf("%s20250101_12000%d_PID999_test.log", filePrefix, i))
		require.NoError(t, os.WriteFile(path, nil, 0600))
		old := time.Now().Add(-time.Duration(i+1) * time.Hour)
		require.NoError(t, os.Chtimes(path, old, old))
	}
	unrelated := filepath.Join(logDir, "other.log")
	require.NoError(t, os.WriteFile(unrelated, nil, 0600))

	logger, err := Init(FromGlobalConfig())
	require.NoError(t, err)
	logger.Shutdown()

	_, err = os.Stat(filepath.Join(logDir, filePrefix+"20250101_120002_PID999_test.log"))
	assert.True(t, os.IsNotExist(err), "oldest file is rotated out")
	_, err = os.Stat(filepath.Join(logDir, filePrefix+"20250101_120000_PID999_test.log"))
	assert.NoError(t, err)
	_, err = os.Stat(unrelated)
	assert.NoError(t, err, "files outside the naming pattern are kept")
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsole(&buf, "info")

	logger.Debug("hidden")
	logger.With("component", "server").Info("listening", "addr", ":8080", "token", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "listening")
	assert.Contains(t, out, "component=server")
	assert.Contains(t, out, "token="+redacted)
	assert.NoError(t, logger.Shutdown())
}

func TestGlobalLogger(t *testing.T) {
	enableLogging(t)

	require.NoError(t, InitGlobal())
	defer ShutdownGlobal()

	assert.NotEmpty(t, CurrentLogFile())
	Warn("global warning", "count", 1)

	entry := lastEntry(t)
	assert.Equal(t, "global warning", entry["msg"])
}

func TestGetGlobalDefaultsToNoop(t *testing.T) {
	require.NoError(t, ShutdownGlobal())
	assert.IsType(t, noopLogger{}, GetGlobal())
	assert.Empty(t, CurrentLogFile())
}

func TestLevelParsing(t *testing.T) {
	assert.Equal(t, clog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, clog.InfoLevel, parseLevel("info"))
	assert.Equal(t, clog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, clog.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, clog.InfoLevel, parseLevel("loud"))
}
