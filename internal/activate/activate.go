// Package activate implements the Activation Layer (spec §4.K): turning a
// resolved toolset into a deterministic environment delta, emitted either as
// shim executables or as shell export statements.
package activate

import (
	"github.com/vertool/vertool/internal/env"
)

// ToolActivation is one tool's contribution to the activation environment,
// carried forward from its Resolved Artifact / lockfile entry. BinPaths are
// directories added to PATH in Env mode; Bins are the binary names within
// those directories that Shim mode materialises individually.
type ToolActivation struct {
	Name       string
	BinPaths   []string
	Bins       []string
	EnvInstall map[string]string
}

// Plan is the computed environment delta: PATH additions in plan order,
// deduplicated, plus the env vars and shimmable binaries each tool
// contributes.
type Plan struct {
	Activations []ToolActivation
}

// BuildPlan wraps resolved tool activations, given in install-plan order,
// into a Plan. Order is preserved rather than sorted, per the Activation
// Layer's "PATH additions... in plan order" invariant.
func BuildPlan(tools []ToolActivation) *Plan {
	return &Plan{Activations: tools}
}

// Emit renders the plan as shell export statements for the given shell,
// with userBinDir taking PATH priority (spec §4.K "Env" mode).
func Emit(plan *Plan, userBinDir string, shell env.ShellType) []string {
	tools := make([]env.ToolEnv, 0, len(plan.Activations))
	for _, t := range plan.Activations {
		tools = append(tools, env.ToolEnv{Name: t.Name, BinDirs: t.BinPaths, Vars: t.EnvInstall})
	}
	f := env.NewFormatter(shell)
	return env.Generate(tools, userBinDir, f)
}

// RedactionSet names env var keys whose values must not appear in logs
// verbatim (spec §4.K: "variables are redacted from logs according to a
// declared redactions set").
type RedactionSet map[string]struct{}

// NewRedactionSet builds a RedactionSet from a list of env var names.
func NewRedactionSet(keys []string) RedactionSet {
	s := make(RedactionSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Mask returns value unchanged unless key is redacted, in which case it
// returns a fixed placeholder.
func (s RedactionSet) Mask(key, value string) string {
	if _, redacted := s[key]; redacted {
		return "[redacted]"
	}
	return value
}

