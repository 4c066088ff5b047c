// Package config loads debtscan configuration from .debtscan.toml, found
// by walking up from the working directory, then falling back to the
// user's config directory. Everything has a sensible default; a missing
// config file is not an error.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the project-level config file searched for by walking up.
const FileName = ".debtscan.toml"

// Config is the full configuration tree.
type Config struct {
	Scan  ScanConfig  `toml:"scan"`
	Cache CacheConfig `toml:"cache"`
	Log   LogConfig   `toml:"log"`
}

// ScanConfig controls extraction.
type ScanConfig struct {
	// Tags is the recognized vocabulary. Empty means the built-in set
	// (TODO, FIXME, HACK, BUG, XXX). Custom tags are matched identically
	// to built-ins.
	Tags []string `toml:"tags"`

	// CaseSensitiveTags controls tag matching. Default true: the fixed
	// uppercase vocabulary matches exact case only.
	CaseSensitiveTags *bool `toml:"case_sensitive_tags"`

	// Workers bounds the scan pool. Zero selects the orchestrator default.
	Workers int `toml:"workers"`

	// MmapThreshold is the file size in bytes above which content is
	// memory-mapped. Zero selects the reader default.
	MmapThreshold int64 `toml:"mmap_threshold"`

	// Verify enables the syntax-tree verification layer.
	Verify bool `toml:"verify"`
}

// CacheConfig controls the fingerprint cache.
type CacheConfig struct {
	// Disabled turns off the cache entirely.
	Disabled bool `toml:"disabled"`

	// Path overrides the cache database location. Empty means
	// <root>/.debtscan/cache.db.
	Path string `toml:"path"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error. The
	// DEBTSCAN_LOG_LEVEL environment variable is consulted when unset.
	Level string `toml:"level"`
}

// CaseSensitive resolves the tag case option with its default.
func (s *ScanConfig) CaseSensitive() bool {
	if s.CaseSensitiveTags == nil {
		return true
	}
	return *s.CaseSensitiveTags
}

// Load reads configuration from an explicit path, or by searching up from
// the working directory, or from the user config directory. A missing file
// yields the zero Config; a present but malformed file is an error.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		return loadFile(explicit)
	}

	if cwd, err := os.Getwd(); err == nil {
		dir := cwd
		for {
			candidate := filepath.Join(dir, FileName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return loadFile(candidate)
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if confDir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(confDir, "debtscan", "config.toml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return loadFile(candidate)
		}
	}

	return &Config{}, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CachePath returns the cache database location for a project root,
// honoring any configured override.
func (c *Config) CachePath(root string) string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(root, ".debtscan", "cache.db")
}

// Logger builds the named hclog logger from config, with the
// DEBTSCAN_LOG_LEVEL environment variable as a fallback level source.
func (c *Config) Logger(name string) hclog.Logger {
	level := c.Log.Level
	if level == "" {
		level = os.Getenv("DEBTSCAN_LOG_LEVEL")
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      os.Stderr,
		Level:       parseLevel(strings.ToUpper(level)),
	})
}

func parseLevel(s string) hclog.Level {
	switch s {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Warn
	}
}

// DefaultTemplate returns a commented TOML template for `config init`.
func DefaultTemplate() string {
	return `# debtscan configuration

# [scan]
# tags = ["TODO", "FIXME", "HACK", "BUG", "XXX"]
# case_sensitive_tags = true
# workers = 8
# mmap_threshold = 262144  # 256KB
# verify = false           # syntax-tree verification of comment boundaries

# [cache]
# disabled = false
# path = ""                # default: .debtscan/cache.db under the scan root

# [log]
# level = "warn"           # trace, debug, info, warn, error
`
}
