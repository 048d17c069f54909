package env

import (
	"os"
	"sort"
	"strings"
)

// ToolEnv is one tool's contribution to the activation environment: its bin
// directories (added to PATH, in order) and the env vars it exports.
type ToolEnv struct {
	Name    string
	BinDirs []string
	Vars    map[string]string
}

// Generate produces environment variable statements for tools, in the order
// given (the Toolset Composer's plan order, per the Activation Layer's
// "PATH additions in plan order" invariant), plus userBinDir first in PATH.
func Generate(tools []ToolEnv, userBinDir string, f Formatter) []string {
	var lines []string
	var pathDirs []string

	pathDirs = append(pathDirs, toShellPath(userBinDir))

	for _, t := range tools {
		keys := make([]string, 0, len(t.Vars))
		for key := range t.Vars {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			lines = append(lines, f.ExportVar(key, toShellPath(t.Vars[key])))
		}

		for _, dir := range t.BinDirs {
			pathDirs = append(pathDirs, toShellPath(dir))
		}
	}

	pathDirs = dedupStrings(pathDirs)
	if len(pathDirs) > 0 {
		lines = append(lines, f.ExportPath(pathDirs))
	}

	return lines
}

// toShellPath converts an absolute path under $HOME to $HOME/... form for shell portability.
// e.g., "/home/user/go/bin" → "$HOME/go/bin"
// Paths not under $HOME are returned as-is.
func toShellPath(p string) string {
	home, _ := os.UserHomeDir()
	if home != "" && strings.HasPrefix(p, home+"/") {
		return shellHome + "/" + p[len(home)+1:]
	}
	if p == home {
		return shellHome
	}
	return p
}

// dedupStrings removes duplicate strings while preserving order.
func dedupStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	result := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
