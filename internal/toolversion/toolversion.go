// Package toolversion implements the Tool-Version Resolver: it loads a
// stack of vertool.toml files, applies alias substitution, and resolves the
// inner-wins [tools] precedence described in spec §4.H into a de-duplicated
// list of tool directives ready for version resolution against a backend.
package toolversion

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/vertool/vertool/internal/backend"
)

// FileName is the config file name searched for at each directory level.
const FileName = "vertool.toml"

// ConfigFile is one level of the config stack, already parsed.
type ConfigFile struct {
	// Path is the source file, used for Source attribution on resolved
	// directives and as the stack's tie-breaker identity.
	Path string
	// Tools maps a tool name (as written, before backend-prefix parsing) to
	// its directive at this level.
	Tools map[string]ToolDirective
	// Aliases maps a short alias to the canonical tool name it expands to.
	Aliases map[string]string
}

// ToolDirective is one [tools] entry, parsed into a VersionRequest plus any
// backend-specific options.
type ToolDirective struct {
	Request backend.VersionRequest
	Options map[string]string
}

// Load reads and parses a single vertool.toml file.
func Load(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses vertool.toml content already read from path (or held in
// memory, e.g. for tests).
func Parse(path string, data []byte) (*ConfigFile, error) {
	var raw struct {
		Tools map[string]any    `toml:"tools"`
		Alias map[string]string `toml:"alias"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cf := &ConfigFile{
		Path:    path,
		Tools:   make(map[string]ToolDirective, len(raw.Tools)),
		Aliases: raw.Alias,
	}

	for name, value := range raw.Tools {
		dir, err := decodeToolDirective(value)
		if err != nil {
			return nil, fmt.Errorf("%s: tool %q: %w", path, name, err)
		}
		cf.Tools[name] = dir
	}

	return cf, nil
}

// decodeToolDirective turns a decoded TOML value for one [tools] entry into
// a ToolDirective. The entry is either a bare version string or a table
// with a "version" key plus arbitrary extra string-valued options.
func decodeToolDirective(value any) (ToolDirective, error) {
	switch v := value.(type) {
	case string:
		return ToolDirective{Request: backend.ParseVersionRequest(v)}, nil
	case map[string]any:
		version, _ := v["version"].(string)
		options := make(map[string]string, len(v))
		for k, raw := range v {
			if k == "version" {
				continue
			}
			if s, ok := raw.(string); ok {
				options[k] = s
			}
		}
		return ToolDirective{Request: backend.ParseVersionRequest(version), Options: options}, nil
	default:
		return ToolDirective{}, fmt.Errorf("unsupported tool directive shape %T", value)
	}
}
