// SPDX-License-Identifier: MPL-2.0

// Package venv provisions and reuses the isolated Python environment that
// holds the levo CLI. The environment directory is the only artifact that
// persists across invocations.
package venv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"levorun/internal/execx"
	"levorun/internal/issue"
	"levorun/internal/python"
)

// ErrCreationFailed is returned when `python -m venv` exits non-zero or the
// environment directory cannot be prepared.
var ErrCreationFailed = errors.New("virtual environment creation failed")

type (
	// Venv is a provisioned virtual environment rooted at Dir.
	Venv struct {
		// Dir is the environment root directory.
		Dir string
	}
)

// New wraps an environment directory without provisioning it.
func New(dir string) Venv {
	return Venv{Dir: dir}
}

// Python returns the path of the environment's interpreter binary.
func (v Venv) Python() string {
	return v.Tool("python")
}

// Tool returns the path of a console script installed into the environment
// (e.g. "levo", "pip"). Windows keeps scripts under Scripts\ with an .exe
// suffix; everything else uses bin/.
func (v Venv) Tool(name string) string {
	if runtime.GOOS == "windows" {
		if !strings.HasSuffix(name, ".exe") {
			name += ".exe"
		}
		return filepath.Join(v.Dir, "Scripts", name)
	}
	return filepath.Join(v.Dir, "bin", name)
}

// Interpreter returns the environment's interpreter as a python.Interpreter
// so it can be probed and used for pip invocations.
func (v Venv) Interpreter() python.Interpreter {
	return python.Interpreter{Command: v.Python()}
}

// Exists reports whether the environment's interpreter binary is present.
func (v Venv) Exists() bool {
	info, err := os.Stat(v.Python())
	return err == nil && !info.IsDir()
}

// Ensure makes sure a virtual environment with a compatible interpreter
// exists at dir, creating it with interp when needed. An existing
// environment whose interpreter is missing or older than 3.12 is deleted
// and recreated. Re-running against a healthy environment is a no-op beyond
// the version check.
func Ensure(ctx context.Context, runner execx.CommandRunner, interp python.Interpreter, dir string) (Venv, error) {
	v := New(dir)

	if v.Exists() {
		if version, ok := python.Probe(ctx, runner, v.Interpreter()); ok {
			slog.Debug("reusing virtual environment", "dir", dir, "version", version)
			return v, nil
		}
		slog.Info("recreating stale virtual environment", "dir", dir)
		if err := os.RemoveAll(dir); err != nil {
			return Venv{}, fmt.Errorf("%w: remove stale environment: %v", ErrCreationFailed, err)
		}
	} else if _, err := os.Stat(dir); err == nil {
		// Directory exists but the interpreter binary is gone: a broken or
		// foreign directory. Recreate from scratch.
		slog.Info("recreating broken virtual environment", "dir", dir)
		if err := os.RemoveAll(dir); err != nil {
			return Venv{}, fmt.Errorf("%w: remove broken environment: %v", ErrCreationFailed, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return Venv{}, fmt.Errorf("%w: prepare parent directory: %v", ErrCreationFailed, err)
	}

	slog.Info("creating virtual environment", "dir", dir, "python", interp.String())
	name, args := interp.Invocation("-m", "venv", dir)
	res, _, stderr := execx.RunCapture(ctx, runner, execx.Command{Name: name, Args: args})
	var cause error
	switch {
	case res.Error != nil:
		cause = fmt.Errorf("%w: %v", ErrCreationFailed, res.Error)
	case !res.ExitCode.IsSuccess():
		cause = fmt.Errorf("%w: %s -m venv exited with code %s: %s",
			ErrCreationFailed, interp.String(), res.ExitCode, strings.TrimSpace(stderr))
	default:
		return v, nil
	}

	return Venv{}, issue.NewErrorContext().
		WithOperation("create virtual environment").
		WithResource(dir).
		WithSuggestion("Check that the directory is writable, then re-run").
		WithSuggestion("On Debian/Ubuntu install the venv module: sudo apt install python3-venv").
		Wrap(cause).
		BuildError()
}
