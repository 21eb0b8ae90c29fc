// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"strconv"
	"strings"
)

// Subcommand is the levo CLI subcommand this wrapper drives.
const Subcommand = "remote-test-run"

// Args maps the RunConfig into the flat argument vector for the levo CLI's
// remote-test-run subcommand. Optional fields that are unset emit no flags at
// all (never an empty-string value); --test-users is forwarded only when the
// data source is TestUserData.
func (c RunConfig) Args() []string {
	args := []string{
		Subcommand,
		"--key", c.AuthKey,
		"--organization", c.OrgID,
		"--app-name", c.AppName,
		"--env", c.Env,
		"--data-source", string(c.DataSource),
		"--run-on", string(c.RunOn),
		"--target-url", c.TargetURL,
		"--fail-scope", c.FailScope,
		"--fail-severity", c.FailSeverity,
	}

	if len(c.Methods) > 0 {
		args = append(args, "--methods", strings.Join(c.Methods, ","))
	} else if len(c.ExcludeMethods) > 0 {
		args = append(args, "--exclude-methods", strings.Join(c.ExcludeMethods, ","))
	}

	if c.EndpointPattern != "" {
		args = append(args, "--endpoint-pattern", c.EndpointPattern)
	}
	if c.ExcludeEndpointPattern != "" {
		args = append(args, "--exclude-endpoint-pattern", c.ExcludeEndpointPattern)
	}
	if len(c.Categories) > 0 {
		args = append(args, "--categories", strings.Join(c.Categories, ","))
	}
	if c.FailThreshold > 0 {
		args = append(args, "--fail-threshold", strconv.Itoa(c.FailThreshold))
	}
	if c.DataSource == DataSourceTestUserData && len(c.TestUsers) > 0 {
		args = append(args, "--test-users", strings.Join(c.TestUsers, ","))
	}

	args = append(args, "--verbosity", "INFO")
	return args
}
