// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "locate python"},
			want: "failed to locate python",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "create virtual environment", Resource: "/home/ci/.levorun/venv"},
			want: "failed to create virtual environment: /home/ci/.levorun/venv",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "install levo CLI",
				Cause:     errors.New("exit status 1"),
			},
			want: "failed to install levo CLI: exit status 1",
		},
		{
			name: "resource and cause",
			err: &ActionableError{
				Operation: "read config",
				Resource:  "levorun.toml",
				Cause:     errors.New("permission denied"),
			},
			want: "failed to read config: levorun.toml: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableErrorUnwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	err := NewErrorContext().
		WithOperation("install levo CLI").
		Wrap(fmt.Errorf("pip: %w", sentinel)).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Errorf("errors.Is through ActionableError = false, want true")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As(*ActionableError) = false")
	}
	if ae.Operation != "install levo CLI" {
		t.Errorf("Operation = %q", ae.Operation)
	}
}

func TestFormatSuggestionsAndChain(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := NewErrorContext().
		WithOperation("install levo CLI").
		WithSuggestion("Check network access to the package index").
		WithSuggestion("Inspect the install log").
		Wrap(fmt.Errorf("pip install: %w", inner)).
		Build()

	plain := err.Format(false)
	if !strings.Contains(plain, "• Check network access to the package index") {
		t.Errorf("Format(false) missing first suggestion:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) includes error chain:\n%s", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("Format(true) missing error chain:\n%s", verbose)
	}
	if !strings.Contains(verbose, "1. pip install: connection refused") ||
		!strings.Contains(verbose, "2. connection refused") {
		t.Errorf("Format(true) chain not numbered outermost-first:\n%s", verbose)
	}
}

func TestBuildRequiresOperation(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation = %+v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if got := WrapWithOperation(nil, "noop"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}

	cause := errors.New("missing interpreter")
	wrapped := WrapWithOperation(cause, "locate python")
	if !errors.Is(wrapped, cause) {
		t.Error("WrapWithOperation lost the cause")
	}
	if wrapped.HasSuggestions() {
		t.Error("HasSuggestions() = true for bare wrap")
	}
}
