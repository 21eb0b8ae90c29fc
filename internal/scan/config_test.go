// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"errors"
	"strings"
	"testing"

	"levorun/internal/issue"
)

func validConfig() RunConfig {
	return RunConfig{
		AuthKey:      "key",
		OrgID:        "org",
		AppName:      "crapi",
		Env:          DefaultEnvLabel,
		TargetURL:    "https://api.example.com",
		Methods:      []string{"GET", "POST"},
		DataSource:   DataSourceTraces,
		RunOn:        RunLocationCloud,
		FailScope:    DefaultFailScope,
		FailSeverity: DefaultFailSeverity,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*RunConfig)
		wantErr  bool
		errNames string
	}{
		{name: "valid", mutate: func(*RunConfig) {}},
		{
			name:     "missing auth key",
			mutate:   func(c *RunConfig) { c.AuthKey = "" },
			wantErr:  true,
			errNames: "auth key",
		},
		{
			name:     "missing org id",
			mutate:   func(c *RunConfig) { c.OrgID = "" },
			wantErr:  true,
			errNames: "organization id",
		},
		{
			name:     "missing target url",
			mutate:   func(c *RunConfig) { c.TargetURL = "" },
			wantErr:  true,
			errNames: "target URL",
		},
		{
			name:     "relative target url",
			mutate:   func(c *RunConfig) { c.TargetURL = "not-a-url" },
			wantErr:  true,
			errNames: "target URL",
		},
		{
			name: "methods and exclude-methods together",
			mutate: func(c *RunConfig) {
				c.Methods = []string{"GET"}
				c.ExcludeMethods = []string{"DELETE"}
			},
			wantErr:  true,
			errNames: "mutually exclusive",
		},
		{
			name:     "bad data source",
			mutate:   func(c *RunConfig) { c.DataSource = "SwaggerSpec" },
			wantErr:  true,
			errNames: "data source",
		},
		{
			name:     "bad run location",
			mutate:   func(c *RunConfig) { c.RunOn = "edge" },
			wantErr:  true,
			errNames: "run location",
		},
		{
			name:     "negative fail threshold",
			mutate:   func(c *RunConfig) { c.FailThreshold = -1 },
			wantErr:  true,
			errNames: "fail threshold",
		},
		{
			name: "exclude-methods alone is fine",
			mutate: func(c *RunConfig) {
				c.Methods = nil
				c.ExcludeMethods = []string{"DELETE"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.errNames) {
				t.Errorf("Validate() error %q does not name field %q", err, tt.errNames)
			}
		})
	}
}

func TestValidateFailureIsActionable(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.AuthKey = ""
	err := cfg.Validate()

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Validate() error = %v, want an ActionableError", err)
	}
	if !ae.HasSuggestions() {
		t.Error("Validate() failure has no suggestions")
	}
}

func TestDataSourceIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value DataSource
		want  bool
	}{
		{DataSourceTestUserData, true},
		{DataSourceTraces, true},
		{"", false},
		{"traces", false},
		{"OpenAPI", false},
	}

	for _, tt := range tests {
		if got := tt.value.IsValid(); got != tt.want {
			t.Errorf("DataSource(%q).IsValid() = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRunLocationIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value RunLocation
		want  bool
	}{
		{RunLocationCloud, true},
		{RunLocationOnPrem, true},
		{"", false},
		{"Cloud", false},
	}

	for _, tt := range tests {
		if got := tt.value.IsValid(); got != tt.want {
			t.Errorf("RunLocation(%q).IsValid() = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestAuditOverrides(t *testing.T) {
	t.Parallel()

	base := validConfig()
	base.ExcludeMethods = nil
	base.Methods = []string{"GET"}
	base.FailScope = "all"
	base.FailSeverity = "medium"

	audit := base.AuditOverrides()

	if audit.FailScope != "none" || audit.FailSeverity != "none" {
		t.Errorf("audit gating = %q/%q, want none/none", audit.FailScope, audit.FailSeverity)
	}
	if len(audit.Methods) != 5 {
		t.Errorf("audit methods = %v, want all five HTTP verbs", audit.Methods)
	}
	if audit.ExcludeMethods != nil {
		t.Errorf("audit exclude methods = %v, want nil", audit.ExcludeMethods)
	}

	// The original config is untouched.
	if base.FailScope != "all" || len(base.Methods) != 1 {
		t.Error("AuditOverrides() mutated the receiver")
	}
}
