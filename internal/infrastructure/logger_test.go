package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcli/internal/config"
)

func TestInitializeLoggerFileOutput(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logPath := filepath.Join(t.TempDir(), "logs", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("processing workbook", slog.String("file", "一号舍.xlsx"))
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(firstLine(t, data), &record))
	assert.Equal(t, "processing workbook", record["msg"])
	assert.Equal(t, "一号舍.xlsx", record["file"])
	assert.Contains(t, record, "source", "AddSource is on")
}

func firstLine(t *testing.T, data []byte) []byte {
	t.Helper()
	for i, b := range data {
		if b == '\n' {
			return data[:i]
		}
	}
	return data
}

func TestInitializeLoggerOnce(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	first, err := InitializeLogger(config.LoggingConfig{Output: "console"})
	require.NoError(t, err)

	second, err := InitializeLogger(config.LoggingConfig{Output: "console", Level: "error"})
	require.NoError(t, err)
	assert.Same(t, first, second, "initialization runs once per process")
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))

	ctx = WithRunID(ctx, "run-123")
	assert.Equal(t, "run-123", GetRunID(ctx))
}

func TestRunIDInjectedIntoRecords(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-abc")
	logger.InfoContext(ctx, "aggregating")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(firstLine(t, data), &record))
	assert.Equal(t, "run-abc", record["run_id"])
}

func TestLoggerFromContext(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logger := LoggerFromContext(context.Background())
	require.NotNil(t, logger)

	withRun := LoggerFromContext(WithRunID(context.Background(), "run-xyz"))
	require.NotNil(t, withRun)
	assert.NotSame(t, logger, withRun, "run-scoped logger carries run_id attr")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("unknown"))
}
