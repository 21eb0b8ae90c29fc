// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"levorun/internal/scan"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type (
	// scanFlags collects the run-scoped flags shared by `test` and `audit`.
	// Each command owns its own instance so cobra flag state never crosses.
	scanFlags struct {
		appName                string
		envLabel               string
		targetURL              string
		methods                []string
		excludeMethods         []string
		dataSource             string
		runOn                  string
		endpointPattern        string
		excludeEndpointPattern string
		categories             []string
		failScope              string
		failSeverity           string
		failThreshold          int
		testUsers              []string
	}
)

var (
	testFlags scanFlags

	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Run a scoped API security test; findings fail the build",
		Long: `Runs levo remote-test-run against the target URL with production
defaults (methods GET,POST unless overridden) and propagates the levo exit
code, so CI pipelines fail when gated findings are detected.

Requires LEVOAI_AUTH_KEY and LEVOAI_ORG_ID.`,
		Args: cobra.NoArgs,
		RunE: runTest,
	}
)

func init() {
	registerScanFlags(testCmd, &testFlags, true)
}

// registerScanFlags wires the shared run-scoped flags onto a command.
// Gating flags (fail scope/severity/threshold, method filters) only exist on
// `test`; audit overrides them unconditionally.
func registerScanFlags(c *cobra.Command, f *scanFlags, gating bool) {
	c.Flags().StringVar(&f.appName, "app-name", "", "application name (auto-detected from CI variables or the git checkout)")
	c.Flags().StringVar(&f.envLabel, "env", "", "target environment label (default \"cicd\")")
	c.Flags().StringVar(&f.targetURL, "target-url", "", "base URL of the API under test (or LEVOAI_TARGET_URL)")
	c.Flags().StringVar(&f.dataSource, "data-source", "", "test data source: TestUserData or Traces (default \"Traces\")")
	c.Flags().StringVar(&f.runOn, "run-on", "", "execution location: cloud or on-prem (default \"cloud\")")
	c.Flags().StringVar(&f.endpointPattern, "endpoint-pattern", "", "only test endpoints matching this regex")
	c.Flags().StringVar(&f.excludeEndpointPattern, "exclude-endpoint-pattern", "", "skip endpoints matching this regex")
	c.Flags().StringSliceVar(&f.categories, "categories", nil, "restrict the test categories that run")
	c.Flags().StringSliceVar(&f.testUsers, "test-users", nil, "test user names (forwarded only with --data-source TestUserData)")

	if gating {
		c.Flags().StringSliceVar(&f.methods, "methods", nil, "HTTP method allow-list (default GET,POST)")
		c.Flags().StringSliceVar(&f.excludeMethods, "exclude-methods", nil, "HTTP method deny-list (mutually exclusive with --methods)")
		c.Flags().StringVar(&f.failScope, "fail-scope", "", "which detected issues count toward failure (default \"all\")")
		c.Flags().StringVar(&f.failSeverity, "fail-severity", "", "minimum severity that fails the build (default \"high\")")
		c.Flags().IntVar(&f.failThreshold, "fail-threshold", 0, "finding count that fails the run (0 = levo default)")
	}
}

// resolveRunConfig turns the flag values into a resolved RunConfig.
func (f *scanFlags) resolveRunConfig() scan.RunConfig {
	return scan.Resolve(scan.Options{
		AppName:                f.appName,
		Env:                    f.envLabel,
		TargetURL:              f.targetURL,
		Methods:                f.methods,
		ExcludeMethods:         f.excludeMethods,
		DataSource:             f.dataSource,
		RunOn:                  f.runOn,
		EndpointPattern:        f.endpointPattern,
		ExcludeEndpointPattern: f.excludeEndpointPattern,
		Categories:             f.categories,
		FailScope:              f.failScope,
		FailSeverity:           f.failSeverity,
		FailThreshold:          f.failThreshold,
		TestUsers:              f.testUsers,
	})
}

func runTest(cmd *cobra.Command, _ []string) error {
	runCfg := testFlags.resolveRunConfig()
	// Validation happens before any subprocess is spawned.
	if err := runCfg.Validate(); err != nil {
		return newExitError(err)
	}

	result, err := executeScan(cmd, runCfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.ExitCode.IsSuccess() {
		printBanner(out, passBannerStyle, "LEVO SECURITY TESTS PASSED")
		return nil
	}
	printBanner(out, failBannerStyle, "LEVO SECURITY TESTS FAILED")
	return exitCodeOnly(int(result.ExitCode))
}

// executeScan ensures the environment and tool are present, then runs levo
// with the given config. Shared by test and audit.
func executeScan(cmd *cobra.Command, runCfg scan.RunConfig) (*scan.ExecutionResult, error) {
	ctx := cmd.Context()
	cfg := toolConfig()
	runner := newRunner()

	tc, err := provisionToolchain(ctx, cfg, runner)
	if err != nil {
		return nil, newExitError(err)
	}
	if err := tc.ensureInstalled(ctx); err != nil {
		return nil, newExitError(err)
	}

	invoker := &scan.Invoker{
		Runner:   runner,
		LevoPath: tc.env.Tool("levo"),
		LogPath:  cfg.TestLogPath,
		Console:  cmd.OutOrStdout(),
	}
	result, err := invoker.Run(ctx, runCfg)
	if err != nil {
		return nil, newExitError(err)
	}
	return result, nil
}

func printBanner(out io.Writer, style lipgloss.Style, text string) {
	fmt.Fprintln(out, style.Render(text))
}
