// Package kerbconfig loads kerbin's own runtime settings (data directory
// overrides, log level, default session name) — not theme files, plugin
// manifests, or the TOML buffer/keybind config the original program reads,
// all of which are out of scope here. Grounded on the teacher's
// internal/config/config.go: same ConfigDir/Load/LoadFrom/missing-file
// shape, same yaml.v3 library.
package kerbconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds kerbin's ambient runtime settings.
type Config struct {
	// DataDir overrides the default data directory, the OS user cache
	// directory (where session IPC files and logs live), when non-empty.
	DataDir string `yaml:"data_dir,omitempty"`

	// LogLevel gates internal/kerblog's activity log verbosity.
	LogLevel string `yaml:"log_level,omitempty"`

	// DefaultSession names the session a bare client invocation attaches
	// to when none is given on the command line.
	DefaultSession string `yaml:"default_session,omitempty"`
}

// ConfigDir returns kerbin's configuration directory (~/.config/kerbin/).
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "kerbin")
	}
	return filepath.Join(".", ".kerbin")
}

// Load reads kerbin's config from ConfigDir()/config.yaml. If the file
// does not exist, it returns a zero-value Config with no error.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
}

// LoadFrom reads the config from the given path. If the file does not
// exist, it returns a zero-value Config with no error.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("kerbconfig: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("kerbconfig: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("kerbconfig: %s: %w", path, err)
	}
	return &cfg, nil
}

var validLogLevels = map[string]bool{
	"": true, "debug": true, "info": true, "warn": true, "error": true,
}

func (c *Config) validate() error {
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("log_level: invalid value %q", c.LogLevel)
	}
	return nil
}

// ResolvedDataDir returns c.DataDir if set, otherwise the OS user cache
// directory (os.UserCacheDir).
func (c *Config) ResolvedDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("kerbconfig: resolve data dir: %w", err)
	}
	return dir, nil
}
