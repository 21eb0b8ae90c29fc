// SPDX-License-Identifier: MPL-2.0

// Package scan models a single levo security test run: the resolved run
// configuration, the argument vector handed to the levo CLI, and the invoker
// that executes it.
package scan

import (
	"errors"
	"fmt"
	"net/url"

	"levorun/internal/issue"
)

// Data source selectors accepted by the levo CLI.
const (
	DataSourceTestUserData DataSource = "TestUserData"
	DataSourceTraces       DataSource = "Traces"
)

// Execution location selectors accepted by the levo CLI.
const (
	RunLocationCloud  RunLocation = "cloud"
	RunLocationOnPrem RunLocation = "on-prem"
)

// ErrInvalidConfig is the sentinel wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid run configuration")

type (
	// DataSource selects where the levo platform sources test data from.
	DataSource string

	// RunLocation selects where the test traffic is generated.
	RunLocation string

	// RunConfig is the effective configuration of one test run. It is built
	// once by Resolve and passed by value; nothing mutates it afterwards.
	RunConfig struct {
		// AuthKey authenticates against the levo platform (LEVOAI_AUTH_KEY).
		AuthKey string
		// OrgID is the levo organization id (LEVOAI_ORG_ID).
		OrgID string
		// AppName labels the application under test.
		AppName string
		// Env is the target environment label (e.g. "cicd", "staging").
		Env string
		// TargetURL is the base URL of the API under test.
		TargetURL string
		// Methods is the HTTP method allow-list. Mutually exclusive with
		// ExcludeMethods.
		Methods []string
		// ExcludeMethods is the HTTP method deny-list.
		ExcludeMethods []string
		// DataSource selects the test data source.
		DataSource DataSource
		// RunOn selects the execution location.
		RunOn RunLocation
		// EndpointPattern restricts testing to matching endpoints (regex).
		EndpointPattern string
		// ExcludeEndpointPattern excludes matching endpoints (regex).
		ExcludeEndpointPattern string
		// Categories restricts the test categories that run.
		Categories []string
		// FailScope controls which detected issues count toward failure.
		FailScope string
		// FailSeverity is the minimum severity that counts toward failure.
		FailSeverity string
		// FailThreshold is the finding count that fails the run. 0 means unset.
		FailThreshold int
		// TestUsers lists test user names; only forwarded when DataSource is
		// TestUserData.
		TestUsers []string
		// BaseURL overrides the levo platform URL (LEVOAI_BASE_URL); exported
		// into the subprocess env as LEVO_BASE_URL.
		BaseURL string
	}
)

// IsValid reports whether the DataSource is one of the enumerated values.
func (d DataSource) IsValid() bool {
	return d == DataSourceTestUserData || d == DataSourceTraces
}

// IsValid reports whether the RunLocation is one of the enumerated values.
func (l RunLocation) IsValid() bool {
	return l == RunLocationCloud || l == RunLocationOnPrem
}

// Validate checks the RunConfig before anything is spawned. Every failure
// names the offending field and wraps ErrInvalidConfig.
func (c RunConfig) Validate() error {
	if err := c.validate(); err != nil {
		return issue.NewErrorContext().
			WithOperation("validate the run configuration").
			WithSuggestion("Export LEVOAI_AUTH_KEY and LEVOAI_ORG_ID before test and audit runs").
			WithSuggestion("Pass --target-url or set LEVOAI_TARGET_URL to an absolute URL").
			Wrap(err).
			BuildError()
	}
	return nil
}

func (c RunConfig) validate() error {
	if c.AuthKey == "" {
		return fmt.Errorf("%w: auth key is required (set LEVOAI_AUTH_KEY)", ErrInvalidConfig)
	}
	if c.OrgID == "" {
		return fmt.Errorf("%w: organization id is required (set LEVOAI_ORG_ID)", ErrInvalidConfig)
	}
	if c.TargetURL == "" {
		return fmt.Errorf("%w: target URL is required (set --target-url or LEVOAI_TARGET_URL)", ErrInvalidConfig)
	}
	if u, err := url.Parse(c.TargetURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: target URL %q is not an absolute URL", ErrInvalidConfig, c.TargetURL)
	}
	if len(c.Methods) > 0 && len(c.ExcludeMethods) > 0 {
		return fmt.Errorf("%w: --methods and --exclude-methods are mutually exclusive", ErrInvalidConfig)
	}
	if !c.DataSource.IsValid() {
		return fmt.Errorf("%w: data source %q must be %q or %q",
			ErrInvalidConfig, string(c.DataSource), DataSourceTestUserData, DataSourceTraces)
	}
	if !c.RunOn.IsValid() {
		return fmt.Errorf("%w: run location %q must be %q or %q",
			ErrInvalidConfig, string(c.RunOn), RunLocationCloud, RunLocationOnPrem)
	}
	if c.FailThreshold < 0 {
		return fmt.Errorf("%w: fail threshold must not be negative", ErrInvalidConfig)
	}
	return nil
}

// AuditOverrides returns a copy of the config adjusted for audit mode: full
// method coverage and no failure gating. The audit command additionally
// ignores the subprocess exit code.
func (c RunConfig) AuditOverrides() RunConfig {
	c.Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}
	c.ExcludeMethods = nil
	c.FailScope = "none"
	c.FailSeverity = "none"
	return c
}
