// Package config holds vertool's ambient configuration: the global
// settings a vertool.toml file (or environment variable) can set, and the
// Env snapshot captured once at process startup (spec §9 Design Notes).
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Default path suffixes (relative to the user's home directory).
const (
	DefaultUserDataSuffix  = ".local/share/vertool"
	DefaultUserBinSuffix   = ".local/bin"
	DefaultUserCacheSuffix = ".cache/vertool"
	DefaultSystemDataDir   = "/var/lib/vertool"
)

// DefaultJobs is the parallel install worker count used when neither
// vertool.toml nor VERTOOL_JOBS says otherwise.
const DefaultJobs = 5

// Version is the running vertool binary's version, overridden at build
// time via -ldflags "-X .../internal/config.Version=...". CheckMinVersion
// compares a config file's min_version guard against this.
var Version = "0.0.0-dev"

// Config is the settings block a vertool.toml file's [settings] table
// (including the global ~/.config/vertool/vertool.toml) may declare. Every field is
// optional; a zero value means "use the ambient/default".
type Config struct {
	DataDir      string     `toml:"data_dir,omitempty"`
	BinDir       string     `toml:"bin_dir,omitempty"`
	EnvDir       string     `toml:"env_dir,omitempty"`
	CacheDir     string     `toml:"cache_dir,omitempty"`
	Jobs         int        `toml:"jobs,omitempty"`
	LogLevel     string     `toml:"log_level,omitempty"`
	Experimental bool       `toml:"experimental,omitempty"`
	MinVersion   string     `toml:"min_version,omitempty"`
	Redactions   Redactions `toml:"redactions,omitempty"`
}

// DefaultConfig returns vertool's built-in defaults, used when no
// vertool.toml declares a [settings] table at all.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  "~/" + DefaultUserDataSuffix,
		BinDir:   "~/" + DefaultUserBinSuffix,
		EnvDir:   "~/" + DefaultUserDataSuffix,
		CacheDir: "~/" + DefaultUserCacheSuffix,
		Jobs:     DefaultJobs,
	}
}

// Merge layers other on top of c: any field other sets explicitly wins,
// fields it leaves zero fall back to c's value. Used by the Loader to fold
// the config-stack's files together, nearest-file-wins (spec §4.H).
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}
	merged := *c
	if other.DataDir != "" {
		merged.DataDir = other.DataDir
	}
	if other.BinDir != "" {
		merged.BinDir = other.BinDir
	}
	if other.EnvDir != "" {
		merged.EnvDir = other.EnvDir
	}
	if other.CacheDir != "" {
		merged.CacheDir = other.CacheDir
	}
	if other.Jobs != 0 {
		merged.Jobs = other.Jobs
	}
	if other.LogLevel != "" {
		merged.LogLevel = other.LogLevel
	}
	if other.Experimental {
		merged.Experimental = true
	}
	if other.MinVersion != "" {
		merged.MinVersion = other.MinVersion
	}
	merged.Redactions = merged.Redactions.Merge(other.Redactions)
	return &merged
}

// ApplyEnv lets the VERTOOL_* environment variables override whatever a
// vertool.toml [settings] table declared, per spec §6's "Environment
// variables consumed: jobs limit, install/data/cache roots, log level".
func (c *Config) ApplyEnv() {
	if v := os.Getenv("VERTOOL_JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Jobs = n
		}
	}
	if v := os.Getenv("VERTOOL_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("VERTOOL_BIN_DIR"); v != "" {
		c.BinDir = v
	}
	if v := os.Getenv("VERTOOL_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("VERTOOL_LOG"); v != "" {
		c.LogLevel = v
	}
}

// Env is the immutable process-environment snapshot captured once at
// startup (spec §9 Design Notes: "all captured once into an immutable Env
// struct"), rather than re-read from os.Getenv scattered across packages.
type Env struct {
	OS   string
	Arch string
	// CI reports whether a recognised continuous-integration environment
	// variable is set. original_source/src/redactions.rs and the secret
	// provider default both branch on it: CI changes the default secret
	// backend away from an interactive one.
	CI bool
}

// DetectEnv snapshots the current process environment.
func DetectEnv() *Env {
	return &Env{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
		CI:   os.Getenv("CI") != "",
	}
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(p string) (string, error) {
	switch {
	case strings.HasPrefix(p, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[2:]), nil
	case p == "~":
		return os.UserHomeDir()
	default:
		return p, nil
	}
}

// Expand resolves every directory field in-place through expandHome.
func (c *Config) Expand() error {
	for _, field := range []*string{&c.DataDir, &c.BinDir, &c.EnvDir, &c.CacheDir} {
		expanded, err := expandHome(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}
