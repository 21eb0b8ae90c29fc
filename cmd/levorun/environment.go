// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"

	"levorun/internal/config"
	"levorun/internal/execx"
	"levorun/internal/pip"
	"levorun/internal/python"
	"levorun/internal/venv"
)

// newRunner builds the CommandRunner every command executes subprocesses
// with. Command tests swap in a scripted fake.
var newRunner = func() execx.CommandRunner { return execx.NewExecRunner() }

type (
	// toolchain bundles everything a command needs to talk to the levo CLI:
	// the resolved configuration, the subprocess runner, and the provisioned
	// virtual environment.
	toolchain struct {
		cfg    *config.Config
		runner execx.CommandRunner
		env    venv.Venv
	}
)

// provisionToolchain locates a compatible interpreter and ensures the virtual
// environment exists, reusing a healthy one.
func provisionToolchain(ctx context.Context, cfg *config.Config, runner execx.CommandRunner) (*toolchain, error) {
	interp, err := python.Locate(ctx, runner)
	if err != nil {
		return nil, err
	}

	env, err := venv.Ensure(ctx, runner, interp, cfg.VenvDir)
	if err != nil {
		return nil, err
	}

	return &toolchain{cfg: cfg, runner: runner, env: env}, nil
}

// installer builds the package installer for this toolchain, picking up the
// index credentials and the optional version pin from the environment.
func (t *toolchain) installer() *pip.Installer {
	return &pip.Installer{
		Runner:     t.runner,
		Env:        t.env,
		Package:    t.cfg.Package,
		VersionPin: os.Getenv("LEVOAI_CLI_VERSION"),
		IndexURL:   t.cfg.IndexURL,
		Creds: pip.Credentials{
			Username: os.Getenv("PYPI_USERNAME"),
			Password: os.Getenv("PYPI_PASSWORD"),
		},
		LogPath: t.cfg.InstallLogPath,
	}
}

// ensureInstalled installs the levo package when `pip show` reports it absent.
func (t *toolchain) ensureInstalled(ctx context.Context) error {
	inst := t.installer()
	if inst.Installed(ctx) {
		return nil
	}
	return inst.Install(ctx)
}
