// SPDX-License-Identifier: MPL-2.0

// Package execx provides the subprocess execution boundary. Every external
// tool this program touches (the python launcher, pip, the levo CLI) is
// invoked through the CommandRunner interface so command construction can be
// tested without spawning real processes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ErrSpawn is the sentinel error wrapped when a subprocess cannot be started
// or fails for a reason other than a non-zero exit.
var ErrSpawn = errors.New("subprocess execution failed")

type (
	// Command describes a single subprocess invocation.
	Command struct {
		// Name is the executable name or path.
		Name string
		// Args are the arguments passed to the executable.
		Args []string
		// Dir is the working directory. Empty means the caller's cwd.
		Dir string
		// Env contains extra KEY=VALUE entries appended to the host environment.
		Env []string
		// Stdout receives standard output. Nil discards it.
		Stdout io.Writer
		// Stderr receives standard error. Nil discards it.
		Stderr io.Writer
	}

	// CommandRunner executes subprocesses. Implementations must block until
	// the process exits; there is no timeout here, so a hung external
	// process hangs the run (cancellation comes only from the context).
	CommandRunner interface {
		Run(ctx context.Context, cmd Command) *Result
	}

	// ExecRunner is the production CommandRunner backed by os/exec.
	ExecRunner struct{}
)

// NewExecRunner creates the production runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and blocks until it exits. A non-zero exit is
// reported through the Result's ExitCode with a nil Error; only spawn-level
// failures populate Error.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) *Result {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(1, fmt.Errorf("%w: %s: %v", ErrSpawn, cmd.Name, err))
	}
	return NewSuccessResult()
}

// RunCapture runs the command through the given runner with stdout and stderr
// captured into in-memory buffers, overriding any writers set on cmd.
func RunCapture(ctx context.Context, runner CommandRunner, cmd Command) (*Result, string, string) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	res := runner.Run(ctx, cmd)
	return res, stdout.String(), stderr.String()
}
