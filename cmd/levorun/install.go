// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"levorun/internal/pip"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Provision the Python environment and install the levo CLI",
	Long: `Locates a Python 3.12+ interpreter, creates (or reuses) the virtual
environment, and installs the levo CLI from the configured package index.

Set PYPI_USERNAME and PYPI_PASSWORD together for a credentialed index, and
LEVOAI_CLI_VERSION to pin a specific levo version.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := toolConfig()

	tc, err := provisionToolchain(ctx, cfg, newRunner())
	if err != nil {
		return newExitError(err)
	}

	inst := tc.installer()
	if err := inst.Install(ctx); err != nil {
		return newExitError(err)
	}

	// The installer pass succeeded; double-check pip actually registers the
	// package before declaring victory.
	if !inst.Installed(ctx) {
		return newExitError(fmt.Errorf("%w: %s is not visible to pip show after install",
			pip.ErrInstallFailed, cfg.Package))
	}

	version := inst.InstalledVersion(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ levo CLI installed")+
		SubtitleStyle.Render(" (version "+version+", env "+cfg.VenvDir+")"))
	return nil
}
