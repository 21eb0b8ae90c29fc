// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"

	"levorun/internal/issue"

	"github.com/spf13/cobra"
)

// issuesCmd renders the troubleshooting catalog, the same pages shown when a
// run fails. Useful for reading up on a failure mode before it happens.
var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Show troubleshooting pages for common failures",
	Long: `Renders the troubleshooting catalog: one page per failure mode
(no compatible Python, environment creation failed, incomplete index
credentials, installation failed, invalid run configuration).

The matching page is also shown automatically when a command fails.`,
	Args: cobra.NoArgs,
	RunE: runIssues,
}

func runIssues(cmd *cobra.Command, _ []string) error {
	entries := issue.Values()
	slices.SortFunc(entries, func(a, b *issue.Issue) int {
		return int(a.Id() - b.Id())
	})

	out := cmd.OutOrStdout()
	for _, entry := range entries {
		rendered, err := entry.Render("dark")
		if err != nil {
			return newExitError(fmt.Errorf("render troubleshooting entry %d: %w", entry.Id(), err))
		}
		fmt.Fprint(out, rendered)
	}
	return nil
}
