// Package config provides configuration parsing for go-annotate.
// This file implements environment variable expansion and config file lookup.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// EnvConfigPath names the variable that overrides the config file path.
const EnvConfigPath = "ANNOTATE_CONFIG"

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			// VAR:-default
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				if val := os.Getenv(inner[:idx]); val != "" {
					return val
				}
				return inner[idx+2:]
			}
			return os.Getenv(inner)
		}

		if strings.HasPrefix(match, "$") {
			return os.Getenv(match[1:])
		}
		return match
	})
}

// ExpandEnvConfig expands environment variables in the string settings of
// cfg: the window title and the tool names used by tools and bindings.
func ExpandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Overlay.Title = ExpandEnv(cfg.Overlay.Title)
	for i := range cfg.Tools {
		cfg.Tools[i].Name = ExpandEnv(cfg.Tools[i].Name)
	}
	for i := range cfg.Bindings {
		cfg.Bindings[i].Device = ExpandEnv(cfg.Bindings[i].Device)
		cfg.Bindings[i].Tool = ExpandEnv(cfg.Bindings[i].Tool)
	}
}

// DefaultPath returns the configuration file to load: $ANNOTATE_CONFIG if
// set, else annotate/config.lua under the user config directory
// ($XDG_CONFIG_HOME on Linux).
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandEnv(p)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "annotate", "config.lua")
}
