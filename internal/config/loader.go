package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/vertool/vertool/internal/toolversion"
)

// settingsFile is the subset of a vertool.toml file internal/config cares
// about. toolversion.Parse decodes the same file's [tools]/[alias] tables
// independently; toml.Unmarshal into a partial struct silently ignores
// keys it doesn't declare, so both packages can read one file without
// stepping on each other.
type settingsFile struct {
	Settings   *Config    `toml:"settings"`
	MinVersion string     `toml:"min_version"`
	Redactions Redactions `toml:"redactions"`
}

// Load reads one vertool.toml file's [settings] table, min_version guard,
// and redactions array.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses already-read vertool.toml content.
func Parse(path string, data []byte) (*Config, error) {
	var raw settingsFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg := raw.Settings
	if cfg == nil {
		cfg = &Config{}
	}
	if raw.MinVersion != "" {
		cfg.MinVersion = raw.MinVersion
	}
	// redactions may be declared either top-level or nested under
	// [settings]; a top-level array wins if both are present.
	if len(raw.Redactions) > 0 {
		cfg.Redactions = raw.Redactions
	}
	return cfg, nil
}

// LoadStack loads and folds every vertool.toml in paths (ordered
// nearest-to-CWD first, as toolversion.FindStack returns them) into one
// Config: per spec §4.H's inner-wins precedence, a nearer file's fields
// override a farther one's, while Redactions accumulate from every level
// rather than one file's list replacing another's. Starts from
// DefaultConfig so a tree with no [settings] table anywhere still gets
// vertool's built-in directories.
func LoadStack(paths []string) (*Config, error) {
	result := DefaultConfig()
	// paths is nearest-first; fold farthest-to-nearest so a nearer file's
	// non-zero fields win via Merge's "other wins" rule.
	for i := len(paths) - 1; i >= 0; i-- {
		layer, err := Load(paths[i])
		if err != nil {
			return nil, err
		}
		if err := CheckMinVersion(layer.MinVersion, Version); err != nil {
			return nil, fmt.Errorf("%s: %w", paths[i], err)
		}
		result = result.Merge(layer)
	}
	result.ApplyEnv()
	if err := result.Expand(); err != nil {
		return nil, err
	}
	return result, nil
}

// Discover finds and folds the config stack rooted at dir, following
// toolversion.FindStack's nearest-to-CWD-then-user-global search order.
func Discover(dir, userConfigPath string) (*Config, error) {
	paths, err := toolversion.FindStack(dir, userConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadStack(paths)
}
