// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "DOCQA_CONFIG"

// BuildEnvironment is the environment Default starts from. Release
// bundles set it at link time:
//
//	go build -ldflags "-X github.com/document-qa/shell/lib/config.BuildEnvironment=production"
var BuildEnvironment = string(Development)

// Environment selects the default behavior set.
type Environment string

const (
	// Development mirrors a debug build: backend started by hand,
	// logging on.
	Development Environment = "development"
	// Production mirrors a release bundle: sidecar spawned, logging off.
	Production Environment = "production"
)

// Mode says who owns the backend process.
type Mode string

const (
	// ModePackaged: the shell spawns the bundled backend executable and
	// kills it when the window closes.
	ModePackaged Mode = "packaged"
	// ModeExternallyManaged: the backend is expected to be running
	// already; the shell neither spawns nor kills anything.
	ModeExternallyManaged Mode = "externally-managed"
)

// ParseMode validates a mode string, as given on the command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePackaged, ModeExternallyManaged:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q (want %q or %q)", s, ModePackaged, ModeExternallyManaged)
}

// Config is the complete shell configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	// Mode is resolved from Environment unless set explicitly.
	Mode Mode `yaml:"mode"`

	// AppName names the data directory. Default: Document-QA.
	AppName string `yaml:"app_name"`

	Backend BackendConfig `yaml:"backend"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// BackendConfig describes the sidecar executable.
type BackendConfig struct {
	// Name is the executable's base name inside the bundle, without
	// target triple or .exe suffix. Default: backend.
	Name string `yaml:"name"`

	// BinDir is where the bundled executable lives. Empty means the
	// directory of the running shell executable.
	BinDir string `yaml:"bin_dir"`

	// Args are passed to the backend unchanged.
	Args []string `yaml:"args"`

	// Env is added to the inherited environment of the backend.
	Env map[string]string `yaml:"env"`
}

// Environ returns Env as sorted KEY=VALUE pairs.
func (b BackendConfig) Environ() []string {
	if len(b.Env) == 0 {
		return nil
	}
	pairs := make([]string, 0, len(b.Env))
	for key, value := range b.Env {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	return pairs
}

// DataConfig locates user data.
type DataConfig struct {
	// Dir overrides the platform data directory. Empty means the
	// platform default for AppName.
	Dir string `yaml:"dir"`
}

// LoggingConfig configures the log sink.
type LoggingConfig struct {
	// Enabled turns the whole sink on or off.
	Enabled bool `yaml:"enabled"`

	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level"`

	// File also writes JSON records to logs/docqa-shell.log in the data
	// directory.
	File bool `yaml:"file"`

	// MaxSizeMB rotates the log file once it reaches this size.
	// Zero disables rotation.
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is how many compressed rotated files are kept.
	MaxBackups int `yaml:"max_backups"`
}

// SlogLevel parses Level. An empty level is info.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// ConfigOverrides holds the fields an environment section may override.
// Pointer fields distinguish "absent" from "false".
type ConfigOverrides struct {
	Mode    Mode              `yaml:"mode,omitempty"`
	Backend *BackendConfig    `yaml:"backend,omitempty"`
	Data    *DataConfig       `yaml:"data,omitempty"`
	Logging *LoggingOverrides `yaml:"logging,omitempty"`
}

// LoggingOverrides is LoggingConfig with optional fields.
type LoggingOverrides struct {
	Enabled    *bool  `yaml:"enabled,omitempty"`
	Level      string `yaml:"level,omitempty"`
	File       *bool  `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// Default returns the base configuration for BuildEnvironment. Mode is
// left empty and resolved from the environment after overrides.
func Default() *Config {
	return &Config{
		Environment: Environment(BuildEnvironment),
		AppName:     "Document-QA",
		Backend: BackendConfig{
			Name: "backend",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			File:       true,
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load reads the file named by DOCQA_CONFIG, or returns the defaults
// (with environment overrides applied) when it is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.resolveMode()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from path on top of Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.resolveMode()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so one decoder serves both once
		// comments and trailing commas are gone.
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// productionDefaults are applied beneath the file's own production
// section: a release bundle logs nothing unless asked to.
func productionDefaults() *ConfigOverrides {
	disabled := false
	return &ConfigOverrides{
		Logging: &LoggingOverrides{Enabled: &disabled},
	}
}

func (c *Config) applyEnvironmentOverrides() {
	switch c.Environment {
	case Development:
		c.apply(c.Development)
	case Production:
		c.apply(productionDefaults())
		c.apply(c.Production)
	}
}

// resolveMode fills an unset mode from the environment.
func (c *Config) resolveMode() {
	if c.Mode != "" {
		return
	}
	switch c.Environment {
	case Production:
		c.Mode = ModePackaged
	case Development:
		c.Mode = ModeExternallyManaged
	}
}

func (c *Config) apply(overrides *ConfigOverrides) {
	if overrides == nil {
		return
	}

	if overrides.Mode != "" {
		c.Mode = overrides.Mode
	}

	if overrides.Backend != nil {
		if overrides.Backend.Name != "" {
			c.Backend.Name = overrides.Backend.Name
		}
		if overrides.Backend.BinDir != "" {
			c.Backend.BinDir = overrides.Backend.BinDir
		}
		if overrides.Backend.Args != nil {
			c.Backend.Args = overrides.Backend.Args
		}
		if len(overrides.Backend.Env) > 0 {
			merged := make(map[string]string, len(c.Backend.Env)+len(overrides.Backend.Env))
			for key, value := range c.Backend.Env {
				merged[key] = value
			}
			for key, value := range overrides.Backend.Env {
				merged[key] = value
			}
			c.Backend.Env = merged
		}
	}

	if overrides.Data != nil && overrides.Data.Dir != "" {
		c.Data.Dir = overrides.Data.Dir
	}

	if overrides.Logging != nil {
		if overrides.Logging.Enabled != nil {
			c.Logging.Enabled = *overrides.Logging.Enabled
		}
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.File != nil {
			c.Logging.File = *overrides.Logging.File
		}
		if overrides.Logging.MaxSizeMB != 0 {
			c.Logging.MaxSizeMB = overrides.Logging.MaxSizeMB
		}
		if overrides.Logging.MaxBackups != 0 {
			c.Logging.MaxBackups = overrides.Logging.MaxBackups
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	c.Backend.BinDir = expandVars(c.Backend.BinDir)
	c.Data.Dir = expandVars(c.Data.Dir)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if name == "HOME" {
			if home, err := os.UserHomeDir(); err == nil && home != "" {
				return home
			}
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, fmt.Errorf("mode: %w", err))
	}
	if c.AppName == "" {
		errs = append(errs, fmt.Errorf("app_name is required"))
	}
	if c.Backend.Name == "" {
		errs = append(errs, fmt.Errorf("backend.name is required"))
	} else if strings.ContainsAny(c.Backend.Name, `/\`) {
		errs = append(errs, fmt.Errorf("backend.name must be a bare file name, got %q (use backend.bin_dir for the directory)", c.Backend.Name))
	}
	for key := range c.Backend.Env {
		if key == "" || strings.Contains(key, "=") {
			errs = append(errs, fmt.Errorf("backend.env: invalid variable name %q", key))
		}
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Logging.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("logging.max_size_mb must not be negative"))
	}
	if c.Logging.MaxBackups < 0 {
		errs = append(errs, fmt.Errorf("logging.max_backups must not be negative"))
	}

	return errors.Join(errs...)
}
