// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"os"
	"path/filepath"
	"strings"
)

// Production defaults applied by Resolve when neither flag nor environment
// supplies a value.
const (
	DefaultEnvLabel     = "cicd"
	DefaultFailScope    = "all"
	DefaultFailSeverity = "high"
	// DefaultAppName is the literal fallback when no CI variable or git
	// checkout identifies the application.
	DefaultAppName = "unnamed-app"
)

// defaultMethods is the production method filter used when no allow- or
// deny-list is given.
var defaultMethods = []string{"GET", "POST"}

type (
	// Options carries the explicit (flag-level) inputs to Resolve. Zero
	// values fall through to environment variables and then defaults.
	Options struct {
		AppName                string
		Env                    string
		TargetURL              string
		Methods                []string
		ExcludeMethods         []string
		DataSource             string
		RunOn                  string
		EndpointPattern        string
		ExcludeEndpointPattern string
		Categories             []string
		FailScope              string
		FailSeverity           string
		FailThreshold          int
		TestUsers              []string

		// LookupEnv resolves environment variables. Nil uses os.LookupEnv;
		// tests inject a map-backed lookup instead of mutating the process
		// environment.
		LookupEnv func(string) (string, bool)

		// WorkDir is the starting point for git-root app-name detection.
		// Empty means the current directory.
		WorkDir string
	}
)

// Resolve merges explicit options, environment-variable fallbacks, and
// hardcoded defaults into one immutable RunConfig. It performs no validation;
// call RunConfig.Validate on the result before using it.
func Resolve(opts Options) RunConfig {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := RunConfig{
		AuthKey:                envOr(lookup, "LEVOAI_AUTH_KEY", ""),
		OrgID:                  envOr(lookup, "LEVOAI_ORG_ID", ""),
		AppName:                opts.AppName,
		Env:                    firstNonEmpty(opts.Env, envOr(lookup, "LEVOAI_ENV", ""), DefaultEnvLabel),
		TargetURL:              firstNonEmpty(opts.TargetURL, envOr(lookup, "LEVOAI_TARGET_URL", "")),
		Methods:                opts.Methods,
		ExcludeMethods:         opts.ExcludeMethods,
		DataSource:             DataSource(firstNonEmpty(opts.DataSource, string(DataSourceTraces))),
		RunOn:                  RunLocation(firstNonEmpty(opts.RunOn, string(RunLocationCloud))),
		EndpointPattern:        opts.EndpointPattern,
		ExcludeEndpointPattern: opts.ExcludeEndpointPattern,
		Categories:             opts.Categories,
		FailScope:              firstNonEmpty(opts.FailScope, DefaultFailScope),
		FailSeverity:           firstNonEmpty(opts.FailSeverity, DefaultFailSeverity),
		FailThreshold:          opts.FailThreshold,
		TestUsers:              opts.TestUsers,
		BaseURL:                envOr(lookup, "LEVOAI_BASE_URL", ""),
	}

	if cfg.AppName == "" {
		cfg.AppName = detectAppName(lookup, opts.WorkDir)
	}

	if len(cfg.Methods) == 0 && len(cfg.ExcludeMethods) == 0 {
		cfg.Methods = append([]string{}, defaultMethods...)
	}

	return cfg
}

// detectAppName auto-detects the application name: the GitHub repository
// slug, then the Bitbucket repository slug, then the basename of the
// enclosing git checkout, then a literal fallback.
func detectAppName(lookup func(string) (string, bool), workDir string) string {
	if slug, ok := lookup("GITHUB_REPOSITORY"); ok && slug != "" {
		// The slug is "owner/name"; keep the repository name.
		if idx := strings.LastIndex(slug, "/"); idx >= 0 {
			slug = slug[idx+1:]
		}
		if slug != "" {
			return slug
		}
	}
	if slug, ok := lookup("BITBUCKET_REPO_SLUG"); ok && slug != "" {
		return slug
	}
	if root := gitRoot(workDir); root != "" {
		return filepath.Base(root)
	}
	return DefaultAppName
}

// gitRoot walks up from dir looking for a .git entry and returns the
// directory containing it, or "".
func gitRoot(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func envOr(lookup func(string) (string, bool), key, fallback string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
