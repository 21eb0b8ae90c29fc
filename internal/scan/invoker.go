// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"levorun/internal/execx"
)

type (
	// Invoker executes the levo CLI for one resolved RunConfig. The
	// subprocess's stdout and stderr are captured into temp files that are
	// removed on every exit path; the combined output is written to LogPath
	// and echoed to Console.
	Invoker struct {
		Runner execx.CommandRunner
		// LevoPath is the levo binary inside the virtual environment.
		LevoPath string
		// LogPath is the fixed test-output log file, overwritten each run.
		LogPath string
		// Console receives the combined output for display. Nil discards it.
		Console io.Writer
	}

	// ExecutionResult is the per-invocation outcome: the combined captured
	// output and the subprocess exit code. It is written to the log file and
	// discarded after display.
	ExecutionResult struct {
		Output   string
		ExitCode execx.ExitCode
	}
)

// Run executes `levo remote-test-run` with the config's argument vector and
// returns the combined output and the subprocess exit code. There is no
// timeout: a hung levo process hangs the run until the context is canceled.
func (iv *Invoker) Run(ctx context.Context, cfg RunConfig) (*ExecutionResult, error) {
	stdoutFile, err := os.CreateTemp("", "levo-stdout-*.log")
	if err != nil {
		return nil, fmt.Errorf("create stdout capture file: %w", err)
	}
	defer removeTemp(stdoutFile)

	stderrFile, err := os.CreateTemp("", "levo-stderr-*.log")
	if err != nil {
		return nil, fmt.Errorf("create stderr capture file: %w", err)
	}
	defer removeTemp(stderrFile)

	cmd := execx.Command{
		Name:   iv.LevoPath,
		Args:   cfg.Args(),
		Env:    childEnv(cfg),
		Stdout: stdoutFile,
		Stderr: stderrFile,
	}

	slog.Debug("running levo", "app", cfg.AppName, "env", cfg.Env, "target", cfg.TargetURL)
	res := iv.Runner.Run(ctx, cmd)
	if res.Error != nil {
		return nil, res.Error
	}

	combined, err := combineCaptures(stdoutFile, stderrFile)
	if err != nil {
		return nil, err
	}

	if iv.LogPath != "" {
		if werr := os.WriteFile(iv.LogPath, []byte(combined), 0o644); werr != nil {
			slog.Warn("failed to write test output log", "path", iv.LogPath, "error", werr)
		}
	}
	if iv.Console != nil && combined != "" {
		_, _ = io.WriteString(iv.Console, combined)
	}

	return &ExecutionResult{Output: combined, ExitCode: res.ExitCode}, nil
}

// childEnv builds the extra environment for the levo subprocess: the
// credentials the tool reads from its own environment, plus the
// LEVOAI_BASE_URL override mapped to the LEVO_BASE_URL variable it expects.
func childEnv(cfg RunConfig) []string {
	env := []string{
		"LEVOAI_AUTH_KEY=" + cfg.AuthKey,
		"LEVOAI_ORG_ID=" + cfg.OrgID,
	}
	if cfg.BaseURL != "" {
		env = append(env, "LEVO_BASE_URL="+cfg.BaseURL)
	}
	return env
}

// combineCaptures concatenates the captured streams: output-only, error-only,
// or both, depending on which are non-empty.
func combineCaptures(stdoutFile, stderrFile *os.File) (string, error) {
	stdout, err := readBack(stdoutFile)
	if err != nil {
		return "", fmt.Errorf("read stdout capture: %w", err)
	}
	stderr, err := readBack(stderrFile)
	if err != nil {
		return "", fmt.Errorf("read stderr capture: %w", err)
	}

	combined := stdout
	if stderr != "" {
		if combined != "" && !endsWithNewline(combined) {
			combined += "\n"
		}
		combined += stderr
	}
	return combined, nil
}

func readBack(f *os.File) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func endsWithNewline(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '\n'
}

func removeTemp(f *os.File) {
	name := f.Name()
	if err := f.Close(); err != nil {
		slog.Debug("capture file close failed", "path", name, "error", err)
	}
	if err := os.Remove(name); err != nil {
		slog.Debug("capture file removal failed", "path", name, "error", err)
	}
}
