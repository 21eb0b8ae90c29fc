// SPDX-License-Identifier: MPL-2.0

// Package config loads the wrapper's tool-level configuration with a
// flag > env var > config file > default layering. The run-scoped scan
// configuration lives in internal/scan; this package only covers where the
// environment, logs, and package index live.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "levorun"
	// ConfigFileName is the name of the config file.
	ConfigFileName = "levorun.toml"

	// DefaultIndexURL is the public package index used when PYPI_INDEX_URL
	// is not set.
	DefaultIndexURL = "https://pypi.org/simple"
	// DefaultPackage is the distribution name of the levo CLI.
	DefaultPackage = "levo"
)

type (
	// Config is the resolved tool-level configuration.
	Config struct {
		// VenvDir is the virtual environment directory, reused across runs.
		VenvDir string `mapstructure:"venv_dir"`
		// Package is the distribution name to install.
		Package string `mapstructure:"package"`
		// IndexURL is the package index base URL.
		IndexURL string `mapstructure:"index_url"`
		// InstallLogPath receives the full pip output of install runs.
		InstallLogPath string `mapstructure:"install_log"`
		// TestLogPath receives the combined levo output of test runs.
		TestLogPath string `mapstructure:"test_log"`
		// UI holds console behavior settings.
		UI UIConfig `mapstructure:"ui"`
	}

	// UIConfig holds console behavior settings.
	UIConfig struct {
		// Verbose enables debug logging and error chains.
		Verbose bool `mapstructure:"verbose"`
	}
)

// DefaultConfig returns the hardcoded defaults.
func DefaultConfig() *Config {
	venvDir := ".levorun-venv"
	if home, err := os.UserHomeDir(); err == nil {
		venvDir = filepath.Join(home, ".levorun", "venv")
	}
	return &Config{
		VenvDir:        venvDir,
		Package:        DefaultPackage,
		IndexURL:       DefaultIndexURL,
		InstallLogPath: "levo-install.log",
		TestLogPath:    "levo-test-output.log",
	}
}

// ConfigDir returns the levorun configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load resolves the configuration: hardcoded defaults, then an optional
// levorun.toml (explicit path, else cwd, else the platform config dir), then
// environment variable overrides.
func Load(configFilePath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("venv_dir", defaults.VenvDir)
	v.SetDefault("package", defaults.Package)
	v.SetDefault("index_url", defaults.IndexURL)
	v.SetDefault("install_log", defaults.InstallLogPath)
	v.SetDefault("test_log", defaults.TestLogPath)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	// If a custom config file path is given via --config, it must exist.
	if configFilePath != "" {
		if !fileExists(configFilePath) {
			return nil, fmt.Errorf("config file not found: %s", configFilePath)
		}
		if err := loadTOMLIntoViper(v, configFilePath); err != nil {
			return nil, err
		}
	} else {
		if fileExists(ConfigFileName) {
			if err := loadTOMLIntoViper(v, ConfigFileName); err != nil {
				return nil, err
			}
		} else if cfgDir, err := ConfigDir(); err == nil {
			tomlPath := filepath.Join(cfgDir, ConfigFileName)
			if fileExists(tomlPath) {
				if err := loadTOMLIntoViper(v, tomlPath); err != nil {
					return nil, err
				}
			}
		}
		// No config file found: defaults apply (not an error).
	}

	// Env overrides. PYPI_INDEX_URL and LEVORUN_VENV_DIR are the documented
	// knobs; the remaining LEVOAI_* variables are run-scoped and resolved in
	// internal/scan.
	if indexURL := os.Getenv("PYPI_INDEX_URL"); indexURL != "" {
		v.Set("index_url", indexURL)
	}
	if venvDir := os.Getenv("LEVORUN_VENV_DIR"); venvDir != "" {
		v.Set("venv_dir", venvDir)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// loadTOMLIntoViper parses a TOML file and merges its contents into Viper,
// preserving defaults for keys the file does not set.
func loadTOMLIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var configMap map[string]any
	if err := toml.Unmarshal(data, &configMap); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
