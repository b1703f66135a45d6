package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Command is one external invocation: a binary plus its arguments.
type Command struct {
	Name string
	Args []string
	// Display overrides how the command is echoed to the user (e.g. quoted paths).
	// When empty, String joins Name and Args with spaces.
	Display string
}

// String returns the command line as it is shown to the user.
func (c Command) String() string {
	if c.Display != "" {
		return c.Display
	}
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// ProcessResult is the outcome of a single external invocation.
type ProcessResult struct {
	Command string
	Code    int
}

// Success reports whether the process exited with status 0.
func (r ProcessResult) Success() bool {
	return r.Code == 0
}

// Runner abstracts local command execution so callers can be tested without
// spawning processes.
type Runner interface {
	// Run executes cmd in the current working directory, streaming its output,
	// and blocks until it exits. A non-nil error means the process could not be
	// started at all; a started process that fails is reported through Code.
	Run(ctx context.Context, cmd Command) (ProcessResult, error)
	// LookPath reports whether name resolves to an executable on PATH.
	LookPath(name string) bool
}

// ExecRunner implements Runner with os/exec, bound to the process stdio.
type ExecRunner struct {
	Logger *slog.Logger
}

func (r ExecRunner) Run(ctx context.Context, c Command) (ProcessResult, error) {
	result := ProcessResult{Command: c.String()}
	r.logger().Debug("exec", "command", result.Command)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.Code = exitErr.ExitCode()
		if result.Code < 0 {
			// Killed by a signal.
			result.Code = 1
		}
		r.logger().Debug("exec failed", "command", result.Command, "code", result.Code)
		return result, nil
	}

	result.Code = 1
	return result, fmt.Errorf("run %s: %w", c.Name, err)
}

func (r ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (r ExecRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
