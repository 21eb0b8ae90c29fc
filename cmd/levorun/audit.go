// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	auditFlags scanFlags

	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Run a full-coverage API security scan; never fails the build",
		Long: `Runs levo remote-test-run with all five HTTP methods and failure
gating disabled (fail scope and severity forced to "none"). Findings are
reported for review but the command always exits 0, so it can run on every
pipeline without blocking merges.

Requires LEVOAI_AUTH_KEY and LEVOAI_ORG_ID.`,
		Args: cobra.NoArgs,
		RunE: runAudit,
	}
)

func init() {
	registerScanFlags(auditCmd, &auditFlags, false)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	runCfg := auditFlags.resolveRunConfig().AuditOverrides()
	if err := runCfg.Validate(); err != nil {
		return newExitError(err)
	}

	result, err := executeScan(cmd, runCfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.ExitCode.IsSuccess() {
		printBanner(out, passBannerStyle, "LEVO AUDIT COMPLETE: NO GATED FINDINGS")
		return nil
	}

	// Findings were reported, but audit mode swallows the exit code.
	printBanner(out, advisoryBannerStyle, "LEVO AUDIT COMPLETE: FINDINGS REPORTED (advisory only)")
	return nil
}
