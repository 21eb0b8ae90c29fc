// SPDX-License-Identifier: MPL-2.0

package execx

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type (
	// FakeResponse is a scripted response for one FakeRunner invocation.
	FakeResponse struct {
		// Stdout is written to the command's Stdout writer before returning.
		Stdout string
		// Stderr is written to the command's Stderr writer before returning.
		Stderr string
		// Result is returned to the caller. Nil means success.
		Result *Result
	}

	// FakeRunner is a scripted CommandRunner for tests. Responses are matched
	// against the joined "name arg1 arg2 ..." command line by prefix; the
	// first match wins. Unmatched commands return the Default response.
	FakeRunner struct {
		mu sync.Mutex

		// Responses maps command-line prefixes to scripted responses.
		Responses map[string]FakeResponse
		// Default is returned when no prefix matches.
		Default FakeResponse
		// Calls records every command line executed, in order.
		Calls []Command
	}
)

// NewFakeRunner creates a FakeRunner with no scripted responses.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Responses: make(map[string]FakeResponse)}
}

// Script registers a response for command lines starting with prefix.
func (f *FakeRunner) Script(prefix string, resp FakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[prefix] = resp
}

// Run implements CommandRunner.
func (f *FakeRunner) Run(_ context.Context, cmd Command) *Result {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	line := CommandLine(cmd)
	resp, ok := f.match(line)
	f.mu.Unlock()

	if !ok {
		resp = f.Default
	}
	writeAll(cmd.Stdout, resp.Stdout)
	writeAll(cmd.Stderr, resp.Stderr)
	if resp.Result == nil {
		return NewSuccessResult()
	}
	return resp.Result
}

// CommandLines returns the recorded invocations as joined command lines.
func (f *FakeRunner) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = CommandLine(c)
	}
	return lines
}

func (f *FakeRunner) match(line string) (FakeResponse, bool) {
	for prefix, resp := range f.Responses {
		if strings.HasPrefix(line, prefix) {
			return resp, true
		}
	}
	return FakeResponse{}, false
}

// CommandLine renders a Command as "name arg1 arg2 ..." for matching and logging.
func CommandLine(cmd Command) string {
	if len(cmd.Args) == 0 {
		return cmd.Name
	}
	return fmt.Sprintf("%s %s", cmd.Name, strings.Join(cmd.Args, " "))
}

func writeAll(w io.Writer, s string) {
	if w == nil || s == "" {
		return
	}
	_, _ = io.WriteString(w, s)
}
