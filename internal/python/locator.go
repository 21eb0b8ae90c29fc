// SPDX-License-Identifier: MPL-2.0

// Package python locates a host Python interpreter new enough to run the
// levo CLI (3.12+).
package python

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"levorun/internal/execx"
	"levorun/internal/issue"
)

const (
	// MinMajor and MinMinor define the lowest acceptable interpreter version.
	MinMajor = 3
	MinMinor = 12
)

// ErrInterpreterNotFound is returned when no candidate reports a compatible version.
var ErrInterpreterNotFound = errors.New("no compatible python interpreter found")

// launcherVersions are the version pins tried through the `py` launcher,
// newest first. The list is fixed; anything below 3.12 cannot run levo.
var launcherVersions = []string{"3.14", "3.13", "3.12"}

// binaryNames are explicitly versioned or generic interpreter binaries tried
// after the launcher, in order.
var binaryNames = []string{"python3.14", "python3.13", "python3.12", "python3", "python"}

// versionRe matches the `python --version` output ("Python 3.12.1").
var versionRe = regexp.MustCompile(`Python (\d+)\.(\d+)(?:\.(\d+))?`)

type (
	// Interpreter identifies a usable Python invocation. Command plus Args
	// form the invocation prefix; the `py` launcher needs its version pin
	// argument, plain binaries have none.
	Interpreter struct {
		// Command is the executable name or path.
		Command string
		// Args are fixed arguments preceding any real arguments (e.g. "-3.12").
		Args []string
		// Version is the reported version string (e.g. "3.12.1").
		Version string
	}
)

// Invocation returns the full argument prefix for spawning this interpreter
// with the given trailing arguments.
func (i Interpreter) Invocation(args ...string) (string, []string) {
	return i.Command, append(append([]string{}, i.Args...), args...)
}

// String renders the invocation prefix for display.
func (i Interpreter) String() string {
	if len(i.Args) == 0 {
		return i.Command
	}
	return i.Command + " " + strings.Join(i.Args, " ")
}

// Locate probes the candidate interpreters in priority order and returns the
// first one whose reported version satisfies major == 3 and minor >= 12.
// The only side effects are short-lived `--version` subprocesses.
func Locate(ctx context.Context, runner execx.CommandRunner) (Interpreter, error) {
	candidates := make([]Interpreter, 0, len(launcherVersions)+len(binaryNames))
	for _, v := range launcherVersions {
		candidates = append(candidates, Interpreter{Command: "py", Args: []string{"-" + v}})
	}
	for _, name := range binaryNames {
		candidates = append(candidates, Interpreter{Command: name})
	}

	for _, cand := range candidates {
		version, ok := probe(ctx, runner, cand)
		if !ok {
			continue
		}
		cand.Version = version
		slog.Debug("located python interpreter", "command", cand.String(), "version", version)
		return cand, nil
	}

	return Interpreter{}, issue.NewErrorContext().
		WithOperation("locate a python interpreter").
		WithSuggestion(fmt.Sprintf("Install Python %d.%d or newer from https://www.python.org/downloads/", MinMajor, MinMinor)).
		WithSuggestion("Make sure the interpreter is on your PATH (python --version)").
		Wrap(fmt.Errorf("%w: need %d.%d or newer", ErrInterpreterNotFound, MinMajor, MinMinor)).
		BuildError()
}

// Probe queries one interpreter invocation for its version and reports
// whether it satisfies the minimum. Exposed for the provisioner, which runs
// the same check against a virtual environment's interpreter.
func Probe(ctx context.Context, runner execx.CommandRunner, interp Interpreter) (string, bool) {
	return probe(ctx, runner, interp)
}

func probe(ctx context.Context, runner execx.CommandRunner, interp Interpreter) (string, bool) {
	name, args := interp.Invocation("--version")
	res, stdout, stderr := execx.RunCapture(ctx, runner, execx.Command{Name: name, Args: args})
	if res.Error != nil || !res.ExitCode.IsSuccess() {
		return "", false
	}

	// Old interpreters print the version banner on stderr.
	version, ok := ParseVersion(stdout + stderr)
	if !ok {
		return "", false
	}
	if !Satisfies(version) {
		slog.Debug("interpreter too old", "command", interp.String(), "version", version)
		return "", false
	}
	return version, true
}

// ParseVersion extracts "X.Y.Z" from `python --version` output.
func ParseVersion(output string) (string, bool) {
	m := versionRe.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	version := m[1] + "." + m[2]
	if m[3] != "" {
		version += "." + m[3]
	}
	return version, true
}

// Satisfies reports whether a version string meets the 3.12 minimum.
func Satisfies(version string) bool {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return major == MinMajor && minor >= MinMinor
}
