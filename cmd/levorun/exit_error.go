// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"levorun/internal/execx"
	"levorun/internal/issue"
	"levorun/internal/pip"
	"levorun/internal/python"
	"levorun/internal/scan"
	"levorun/internal/venv"
)

// ExitError carries a process exit code out of a command, with optional
// error context and a troubleshooting catalog entry for the CLI layer to
// render. Always create via newExitError or exitCodeOnly.
type ExitError struct {
	// Code is the process exit code.
	Code int
	// Err is the underlying error. Nil for plain exit-code propagation
	// (the levo subprocess already printed its own diagnostics).
	Err error
	// IssueID is the optional troubleshooting catalog entry.
	IssueID issue.Id
}

// newExitError wraps a failure as exit code 1, attaching the matching
// troubleshooting catalog entry.
func newExitError(err error) *ExitError {
	return &ExitError{Code: 1, Err: err, IssueID: issueFor(err)}
}

// exitCodeOnly propagates a subprocess exit code without extra diagnostics.
// Codes outside the valid 0-255 range collapse to 1.
func exitCodeOnly(code int) *ExitError {
	if ok, _ := execx.ExitCode(code).IsValid(); !ok {
		return &ExitError{Code: 1}
	}
	return &ExitError{Code: code}
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ExitError) Unwrap() error { return e.Err }

// issueFor maps the error taxonomy onto the troubleshooting catalog.
func issueFor(err error) issue.Id {
	switch {
	case errors.Is(err, python.ErrInterpreterNotFound):
		return issue.PythonNotFoundId
	case errors.Is(err, venv.ErrCreationFailed):
		return issue.VenvCreationFailedId
	case errors.Is(err, pip.ErrMissingCredential):
		return issue.MissingCredentialId
	case errors.Is(err, pip.ErrInstallFailed):
		return issue.InstallFailedId
	case errors.Is(err, scan.ErrInvalidConfig):
		return issue.InvalidRunConfigId
	}
	return 0
}

// renderExitError renders a failing command's error and, when available, the
// matching troubleshooting catalog page.
func renderExitError(stderr io.Writer, exitErr *ExitError) {
	if exitErr == nil {
		return
	}

	if exitErr.Err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(exitErr.Err, verbose))
	}

	if exitErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(exitErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			slog.Warn("failed to render troubleshooting entry", "issueID", exitErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
