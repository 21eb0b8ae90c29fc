// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for levorun.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"levorun/internal/config"
	"levorun/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// appConfig is the resolved tool configuration, loaded once per run.
	appConfig *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "levorun",
		Short: "CI wrapper for levo API security tests",
		Long: TitleStyle.Render("levorun") + SubtitleStyle.Render(" - CI wrapper for levo API security tests") + `

levorun prepares an isolated Python environment, installs the levo
security-testing CLI from a (optionally private) package index, and runs
API security scans against a target URL, surfacing pass/fail results for
CI pipelines.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Export LEVOAI_AUTH_KEY and LEVOAI_ORG_ID
  2. Install the tool:    levorun install
  3. Run a gated test:    levorun test --target-url https://api.example.com
  4. Or a non-gating scan: levorun audit --target-url https://api.example.com

` + SubtitleStyle.Render("Examples:") + `
  levorun install                           Provision environment, install levo
  levorun test --target-url URL             Run scoped test, fail build on findings
  levorun audit --target-url URL            Full-coverage scan, never fails the build
  levorun version --check-latest            Show installed and newest levo version`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./levorun.toml)")

	// Add subcommands
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(completionCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			renderExitError(os.Stderr, exitErr)
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig configures logging and loads the tool configuration.
func initRootConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		cfg = config.DefaultConfig()
	}
	appConfig = cfg

	if !verbose {
		verbose = cfg.UI.Verbose
	}

	initLogging(verbose)
}

// initLogging installs a charmbracelet logger as the slog default so the
// internal packages' slog call sites share one styled output stream.
func initLogging(verboseMode bool) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Level:           log.InfoLevel,
	})
	if verboseMode {
		logger.SetLevel(log.DebugLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// toolConfig returns the loaded configuration, falling back to defaults when
// a command runs without the cobra initializer (tests).
func toolConfig() *config.Config {
	if appConfig == nil {
		appConfig = config.DefaultConfig()
	}
	return appConfig
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
