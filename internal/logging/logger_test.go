package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("build").
		With("task", "styles").
		Error(context.Background(), errors.New("disk full"), "Step failed", "files", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Step failed", entry["msg"])
	assert.Equal(t, "build", entry["component"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "styles", entry["task"])
	assert.Equal(t, float64(3), entry["files"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, nil, "warn message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})
	_ = parent.With("child", true)

	parent.Info(context.Background(), "parent")
	assert.NotContains(t, buf.String(), "child")
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	op := StartOperation(logger, "scripts")
	d := op.End(context.Background(), "Finished")

	assert.GreaterOrEqual(t, int64(d), int64(0))
	out := buf.String()
	assert.True(t, strings.Contains(out, "operation=scripts"), out)
	assert.Contains(t, out, "duration=")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("x"), "ignored")
		logger.With("k", "v").Warn(context.TODO(), errors.New("x"), "ignored")
	})
}
