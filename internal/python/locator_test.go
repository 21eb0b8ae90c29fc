// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"errors"
	"testing"

	"levorun/internal/execx"
	"levorun/internal/issue"
)

func notFound() *execx.Result {
	return execx.NewErrorResult(1, execx.ErrSpawn)
}

func TestLocatePrefersLauncherPins(t *testing.T) {
	t.Parallel()

	fake := execx.NewFakeRunner()
	fake.Default = execx.FakeResponse{Result: notFound()}
	fake.Script("py -3.14 --version", execx.FakeResponse{Result: notFound()})
	fake.Script("py -3.13 --version", execx.FakeResponse{Stdout: "Python 3.13.2\n"})

	interp, err := Locate(context.Background(), fake)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if interp.Command != "py" || len(interp.Args) != 1 || interp.Args[0] != "-3.13" {
		t.Errorf("Locate() picked %q, want py -3.13", interp.String())
	}
	if interp.Version != "3.13.2" {
		t.Errorf("Locate() version = %q, want 3.13.2", interp.Version)
	}

	// The launcher pins must be probed before any plain binary.
	lines := fake.CommandLines()
	if lines[0] != "py -3.14 --version" || lines[1] != "py -3.13 --version" {
		t.Errorf("probe order = %v", lines)
	}
}

func TestLocateSkipsTooOldInterpreters(t *testing.T) {
	t.Parallel()

	fake := execx.NewFakeRunner()
	fake.Default = execx.FakeResponse{Result: notFound()}
	fake.Script("python3 --version", execx.FakeResponse{Stdout: "Python 3.11.9\n"})
	fake.Script("python --version", execx.FakeResponse{Stdout: "Python 3.12.4\n"})

	interp, err := Locate(context.Background(), fake)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if interp.Command != "python" {
		t.Errorf("Locate() picked %q, want python (3.11 must be skipped)", interp.String())
	}
}

func TestLocateFailsWhenNothingSatisfies(t *testing.T) {
	t.Parallel()

	fake := execx.NewFakeRunner()
	fake.Default = execx.FakeResponse{Stdout: "Python 3.10.0\n"}

	_, err := Locate(context.Background(), fake)
	if !errors.Is(err, ErrInterpreterNotFound) {
		t.Errorf("Locate() error = %v, want ErrInterpreterNotFound", err)
	}

	// The failure carries install suggestions for the user-facing renderer.
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Locate() error = %v, want an ActionableError", err)
	}
	if !ae.HasSuggestions() {
		t.Error("Locate() failure has no suggestions")
	}
}

func TestLocateReadsStderrBanner(t *testing.T) {
	t.Parallel()

	// Some interpreters print the version banner on stderr.
	fake := execx.NewFakeRunner()
	fake.Default = execx.FakeResponse{Result: notFound()}
	fake.Script("py -3.14 --version", execx.FakeResponse{Stderr: "Python 3.14.0\n"})

	interp, err := Locate(context.Background(), fake)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if interp.Version != "3.14.0" {
		t.Errorf("Locate() version = %q, want 3.14.0", interp.Version)
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		want   string
		wantOK bool
	}{
		{name: "full version", output: "Python 3.12.1\n", want: "3.12.1", wantOK: true},
		{name: "no patch", output: "Python 3.13", want: "3.13", wantOK: true},
		{name: "garbage", output: "command not found", wantOK: false},
		{name: "empty", output: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseVersion(tt.output)
			if ok != tt.wantOK {
				t.Fatalf("ParseVersion(%q) ok = %v, want %v", tt.output, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseVersion(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestSatisfies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    bool
	}{
		{"3.12.0", true},
		{"3.12", true},
		{"3.13.1", true},
		{"3.14.0", true},
		{"3.11.9", false},
		{"3.9.18", false},
		{"2.7.18", false},
		{"4.0.0", false},
		{"junk", false},
	}

	for _, tt := range tests {
		if got := Satisfies(tt.version); got != tt.want {
			t.Errorf("Satisfies(%q) = %v, want %v", tt.version, got, tt.want)
		}
	}
}

func TestInterpreterInvocation(t *testing.T) {
	t.Parallel()

	interp := Interpreter{Command: "py", Args: []string{"-3.12"}}
	name, args := interp.Invocation("-m", "venv", "dir")
	if name != "py" {
		t.Errorf("Invocation() name = %q", name)
	}
	want := []string{"-3.12", "-m", "venv", "dir"}
	if len(args) != len(want) {
		t.Fatalf("Invocation() args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("Invocation() args[%d] = %q, want %q", i, args[i], want[i])
		}
	}

	// The prefix slice must not be shared across invocations.
	interp.Invocation("--version")
	if interp.Args[0] != "-3.12" || len(interp.Args) != 1 {
		t.Errorf("Invocation() mutated the interpreter args: %v", interp.Args)
	}
}
