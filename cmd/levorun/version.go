// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"levorun/internal/execx"
	"levorun/internal/pypi"

	"github.com/spf13/cobra"
)

var (
	checkLatest bool

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the installed levo CLI version",
		Long: `Ensures the environment exists, runs the installed levo CLI with
--version, prints its output, and forwards its exit code.

With --check-latest, also queries the PyPI JSON API for the newest published
levo version (best effort; lookup failures only warn).`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
)

func init() {
	versionCmd.Flags().BoolVar(&checkLatest, "check-latest", false, "also report the newest levo version on PyPI")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := toolConfig()
	runner := newRunner()

	tc, err := provisionToolchain(ctx, cfg, runner)
	if err != nil {
		return newExitError(err)
	}

	res, stdout, stderr := execx.RunCapture(ctx, runner, execx.Command{
		Name: tc.env.Tool("levo"),
		Args: []string{"--version"},
	})
	if res.Error != nil {
		return newExitError(res.Error)
	}

	out := cmd.OutOrStdout()
	if output := strings.TrimSpace(stdout + stderr); output != "" {
		fmt.Fprintln(out, output)
	}

	if checkLatest {
		reportLatest(cmd, cfg.Package)
	}

	if !res.ExitCode.IsSuccess() {
		return exitCodeOnly(int(res.ExitCode))
	}
	return nil
}

// reportLatest prints the newest published version. Failures warn and never
// change the exit code.
func reportLatest(cmd *cobra.Command, pkg string) {
	client := pypi.NewClient("")
	latest, err := client.LatestVersion(cmd.Context(), pkg)
	if err != nil {
		slog.Warn("latest version lookup failed", "package", pkg, "error", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("latest on PyPI: "+latest))
}
