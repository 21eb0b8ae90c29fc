// SPDX-License-Identifier: MPL-2.0

// Package pip installs the levo CLI into the provisioned environment from a
// (optionally credentialed) package index.
package pip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"levorun/internal/execx"
	"levorun/internal/issue"
	"levorun/internal/venv"
)

var (
	// ErrMissingCredential is returned when exactly one of the paired index
	// credentials is set.
	ErrMissingCredential = errors.New("package index credentials incomplete")

	// ErrInstallFailed is returned when the primary pip install pass exits
	// non-zero.
	ErrInstallFailed = errors.New("package installation failed")
)

// nativeExtensionPackages are force-reinstalled individually after a
// successful install to work around prebuilt-wheel mismatches on Windows.
// pyyaml stays pinned below 6 because the levo importer still uses the
// yaml.load signature removed in 6.0. Failures in this pass only warn.
var nativeExtensionPackages = []string{"wrapt", "regex", "pyyaml==5.4.1"}

type (
	// Credentials are the paired package index credentials.
	Credentials struct {
		Username string
		Password string
	}

	// Installer installs a package into a virtual environment via
	// `python -m pip`.
	Installer struct {
		Runner execx.CommandRunner
		Env    venv.Venv
		// Package is the distribution name ("levo").
		Package string
		// VersionPin pins the installed version when non-empty.
		VersionPin string
		// IndexURL is the package index base URL (without credentials).
		IndexURL string
		// Creds optionally authenticate the index.
		Creds Credentials
		// LogPath receives the combined pip output of the primary pass.
		LogPath string
	}
)

// PackageSpec returns the pip requirement specifier, version-pinned when a
// pin is configured.
func (i *Installer) PackageSpec() string {
	if i.VersionPin != "" {
		return i.Package + "==" + i.VersionPin
	}
	return i.Package
}

// IndexURLWithCredentials embeds the configured credentials into the index
// URL userinfo. Setting exactly one of the pair is a configuration error
// reported before any subprocess or network activity.
func (i *Installer) IndexURLWithCredentials() (string, error) {
	hasUser := i.Creds.Username != ""
	hasPass := i.Creds.Password != ""
	if hasUser != hasPass {
		missing := "PYPI_PASSWORD"
		if hasPass {
			missing = "PYPI_USERNAME"
		}
		return "", fmt.Errorf("%w: %s is not set", ErrMissingCredential, missing)
	}
	if !hasUser {
		return i.IndexURL, nil
	}

	u, err := url.Parse(i.IndexURL)
	if err != nil {
		return "", fmt.Errorf("parse index url %q: %w", i.IndexURL, err)
	}
	u.User = url.UserPassword(i.Creds.Username, i.Creds.Password)
	return u.String(), nil
}

// TrustedHost extracts the index hostname for pip's --trusted-host flag.
func (i *Installer) TrustedHost() string {
	u, err := url.Parse(i.IndexURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return u.Hostname()
}

// Install runs the two-pass installation. The first pass installs the target
// package with --no-cache-dir from the configured index; a non-zero exit is
// terminal and the full pip output is preserved at LogPath. The second pass
// force-reinstalls each native-extension package individually; its failures
// are logged as warnings and never abort. Installation success is defined
// purely by the first pass.
func (i *Installer) Install(ctx context.Context) error {
	indexURL, err := i.IndexURLWithCredentials()
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("authenticate to the package index").
			WithResource(i.IndexURL).
			WithSuggestion("Export PYPI_USERNAME and PYPI_PASSWORD together, or unset both for the public index").
			Wrap(err).
			BuildError()
	}

	spec := i.PackageSpec()
	args := []string{"-m", "pip", "install", "--no-cache-dir", "--index-url", indexURL}
	if host := i.TrustedHost(); host != "" {
		args = append(args, "--trusted-host", host)
	}
	args = append(args, spec)

	slog.Info("installing package", "spec", spec, "index", i.IndexURL)
	res, stdout, stderr := execx.RunCapture(ctx, i.Runner, execx.Command{Name: i.Env.Python(), Args: args})

	if i.LogPath != "" {
		if werr := os.WriteFile(i.LogPath, []byte(stdout+stderr), 0o644); werr != nil {
			slog.Warn("failed to write install log", "path", i.LogPath, "error", werr)
		}
	}

	var cause error
	switch {
	case res.Error != nil:
		cause = fmt.Errorf("%w: %v", ErrInstallFailed, res.Error)
	case !res.ExitCode.IsSuccess():
		cause = fmt.Errorf("%w: pip install %s exited with code %s", ErrInstallFailed, spec, res.ExitCode)
	}
	if cause != nil {
		return issue.NewErrorContext().
			WithOperation("install " + spec).
			WithResource(i.LogPath).
			WithSuggestion("Inspect the install log for the underlying pip error").
			WithSuggestion("Check network access to the package index").
			Wrap(cause).
			BuildError()
	}

	i.reinstallNativeExtensions(ctx)
	return nil
}

// reinstallNativeExtensions force-reinstalls the fixed native-extension list
// one package at a time, warning on failure.
func (i *Installer) reinstallNativeExtensions(ctx context.Context) {
	for _, pkg := range nativeExtensionPackages {
		args := []string{"-m", "pip", "install", "--force-reinstall", "--no-cache-dir", pkg}
		res, _, stderr := execx.RunCapture(ctx, i.Runner, execx.Command{Name: i.Env.Python(), Args: args})
		if res.Error != nil {
			slog.Warn("native extension reinstall failed", "package", pkg, "error", res.Error)
			continue
		}
		if !res.ExitCode.IsSuccess() {
			slog.Warn("native extension reinstall failed",
				"package", pkg, "exit_code", res.ExitCode.String(), "stderr", strings.TrimSpace(stderr))
		}
	}
}

// Installed reports whether the target package is present in the environment,
// using `pip show`'s exit code.
func (i *Installer) Installed(ctx context.Context) bool {
	args := []string{"-m", "pip", "show", i.Package}
	res, _, _ := execx.RunCapture(ctx, i.Runner, execx.Command{Name: i.Env.Python(), Args: args})
	return res.Error == nil && res.ExitCode.IsSuccess()
}

// InstalledVersion returns the installed package version reported by
// `pip show`, or "" when the package is absent.
func (i *Installer) InstalledVersion(ctx context.Context) string {
	args := []string{"-m", "pip", "show", i.Package}
	res, stdout, _ := execx.RunCapture(ctx, i.Runner, execx.Command{Name: i.Env.Python(), Args: args})
	if res.Error != nil || !res.ExitCode.IsSuccess() {
		return ""
	}
	for _, line := range strings.Split(stdout, "\n") {
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
