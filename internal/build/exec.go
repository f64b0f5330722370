package build

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"

	"github.com/conneroisu/prime-website/internal/errors"
	"github.com/conneroisu/prime-website/internal/logging"
)

// Command describes an external program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Success decides whether an exit code counts as success. Nil means
	// only exit code 0 succeeds.
	Success func(exitCode int) bool
}

// String returns the command line as it would be typed.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

func (c Command) succeeded(exitCode int) bool {
	if c.Success != nil {
		return c.Success(exitCode)
	}
	return exitCode == 0
}

// Result carries what a finished command produced.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Executor runs external commands. Tests substitute a fake.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (Result, error)
}

// ShellExecutor runs commands with os/exec and logs their output.
type ShellExecutor struct {
	logger logging.Logger
}

// NewShellExecutor creates an executor that logs through logger.
func NewShellExecutor(logger logging.Logger) *ShellExecutor {
	return &ShellExecutor{logger: logger.WithComponent("exec")}
}

// Execute runs cmd to completion. A command that cannot be started, or whose
// exit code fails cmd's success predicate, yields an ErrCommandFailed error.
func (e *ShellExecutor) Execute(ctx context.Context, cmd Command) (Result, error) {
	var stdout, stderr bytes.Buffer

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = &stdout
	c.Stderr = &stderr

	e.logger.Debug(ctx, "Running command", "command", cmd.String(), "dir", cmd.Dir)
	runErr := c.Run()

	result := Result{
		ExitCode: exitCodeOf(c, runErr),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}
	e.logOutput(ctx, cmd, "stdout", result.Stdout)
	e.logOutput(ctx, cmd, "stderr", result.Stderr)

	var exitErr *exec.ExitError
	if runErr != nil && !stderrors.As(runErr, &exitErr) {
		// Never started: missing binary, bad working directory, cancelled context.
		return result, errors.ErrCommandFailed(cmd.String(), result.ExitCode, runErr)
	}

	if !cmd.succeeded(result.ExitCode) {
		cause := runErr
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			cause = stderrors.Join(runErr, stderrors.New(msg))
		}
		return result, errors.ErrCommandFailed(cmd.String(), result.ExitCode, cause)
	}

	return result, nil
}

func exitCodeOf(c *exec.Cmd, runErr error) int {
	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if c.ProcessState != nil {
		return c.ProcessState.ExitCode()
	}
	return -1
}

func (e *ShellExecutor) logOutput(ctx context.Context, cmd Command, stream string, output []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		e.logger.Info(ctx, line, "command", cmd.Name, "stream", stream)
	}
}
