package build

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	primeerrors "github.com/conneroisu/prime-website/internal/errors"
	"github.com/conneroisu/prime-website/internal/logging"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "docker", Args: []string{"rm", "prime-website"}}
	assert.Equal(t, "docker rm prime-website", cmd.String())
	assert.True(t, cmd.succeeded(0))
	assert.False(t, cmd.succeeded(1))

	lenient := Command{Name: "docker", Success: func(code int) bool { return code <= 1 }}
	assert.True(t, lenient.succeeded(1))
	assert.False(t, lenient.succeeded(2))
}

func TestShellExecutorSuccess(t *testing.T) {
	requireShell(t)
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelInfo, Output: &buf})
	dir := t.TempDir()

	result, err := NewShellExecutor(logger).Execute(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "pwd; echo warn >&2"},
		Dir:  dir,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, string(result.Stdout), dir)
	assert.Equal(t, "warn\n", string(result.Stderr))
	assert.Contains(t, buf.String(), "stream=stderr")
}

func TestShellExecutorNonZeroExit(t *testing.T) {
	requireShell(t)

	result, err := NewShellExecutor(logging.NewNopLogger()).Execute(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo nope >&2; exit 3"},
	})
	require.Error(t, err)

	assert.Equal(t, 3, result.ExitCode)
	assert.True(t, primeerrors.IsBuildError(err))
	assert.Contains(t, err.Error(), "exited with code 3")
	assert.Contains(t, err.Error(), "nope")
}

func TestShellExecutorCustomSuccess(t *testing.T) {
	requireShell(t)

	_, err := NewShellExecutor(logging.NewNopLogger()).Execute(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "exit 1"},
		Success: func(code int) bool { return code == 1 },
	})
	assert.NoError(t, err)
}

func TestShellExecutorMissingBinary(t *testing.T) {
	_, err := NewShellExecutor(logging.NewNopLogger()).Execute(context.Background(), Command{
		Name: "prime-definitely-not-installed",
	})
	require.Error(t, err)
	assert.True(t, primeerrors.IsBuildError(err))
	assert.Contains(t, err.Error(), "code -1")
}
