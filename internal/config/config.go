// Package config resolves storytrack's runtime configuration.
//
// Sources, lowest precedence first: built-in defaults, the optional YAML file
// at <xdg config home>/storytrack/config.yaml, STORYTRACK_* environment
// variables, and finally CLI flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the config directory and binary.
	AppName = "storytrack"
	// DataDirName is the dot-directory holding the story file by default.
	DataDirName = ".storytrack"
	// ConfigFile is the YAML file name inside the config directory.
	ConfigFile = "config.yaml"
)

// Environment variables read by ApplyEnv.
const (
	EnvDataDir  = "STORYTRACK_DATA_DIR"
	EnvLogLevel = "STORYTRACK_LOG_LEVEL"
	EnvJournal  = "STORYTRACK_JOURNAL"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Package-level hooks so tests can control directory discovery.
var (
	getwd   = os.Getwd
	homeDir = func() string { return xdg.Home }
)

// Config holds user configuration.
type Config struct {
	// DataDir overrides where the story file lives. Empty means
	// <cwd>/.storytrack.
	DataDir string `yaml:"data_dir,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Journal enables the SQLite activity journal.
	Journal bool `yaml:"journal"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Journal:  true,
	}
}

// Path returns the standard config file location.
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFile)
}

// LoadFile reads the YAML file at path over the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// An empty file decodes to io.EOF.
		if errors.Is(err, io.EOF) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvDataDir)); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvJournal)); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvJournal, v, err)
		}
		c.Journal = enabled
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if !validLogLevels[level] {
		return fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// ResolvedDataDir returns the directory the story store should use.
func (c Config) ResolvedDataDir() string {
	return ResolveDataDir(c.DataDir)
}

// ResolveDataDir applies the data directory rules:
//   - an absolute override is used as is
//   - a relative override is joined to the working directory
//   - no override means <cwd>/.storytrack
//
// When the working directory cannot be determined, the home directory takes
// its place.
func ResolveDataDir(override string) string {
	base, err := getwd()
	if err != nil || base == "" {
		base = homeDir()
	}

	if override == "" {
		return filepath.Join(base, DataDirName)
	}
	if filepath.IsAbs(override) {
		return filepath.Clean(override)
	}
	return filepath.Join(base, override)
}
