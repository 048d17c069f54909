package toolversion

import (
	"maps"
	"sort"

	"github.com/vertool/vertool/internal/backend"
)

// Entry is a resolved (pre-version-resolution) toolset entry: a tool name,
// its merged VersionRequest and options, and the config file that won the
// VersionRequest (spec §4.H's Source attribution).
type Entry struct {
	Name    string
	Request backend.VersionRequest
	Options map[string]string
	Source  string
}

// Resolve applies alias substitution and the inner-wins precedence walk
// (spec §4.H steps 1-3) across stack, ordered nearest-to-CWD first (as
// returned by FindStack/LoadStack). The result is de-duplicated and sorted
// by name for deterministic output.
func Resolve(stack []*ConfigFile) []Entry {
	aliases := mergeAliases(stack)

	type accum struct {
		request    backend.VersionRequest
		hasRequest bool
		source     string
		options    map[string]string
	}
	entries := make(map[string]*accum)

	order := func(name string) string {
		if canonical, ok := aliases[name]; ok {
			return canonical
		}
		return name
	}

	// VersionRequest: first (innermost) file mentioning a tool wins.
	for _, cf := range stack {
		for name, dir := range cf.Tools {
			canonical := order(name)
			a, ok := entries[canonical]
			if !ok {
				a = &accum{options: make(map[string]string)}
				entries[canonical] = a
			}
			if !a.hasRequest {
				a.request = dir.Request
				a.hasRequest = true
				a.source = cf.Path
			}
		}
	}

	// Options: deep-merge field-by-field, walked outer-to-inner so that the
	// innermost file's options take precedence over outer ones, matching
	// the same inner-wins precedence as the version walk above.
	for i := len(stack) - 1; i >= 0; i-- {
		cf := stack[i]
		for name, dir := range cf.Tools {
			canonical := order(name)
			a := entries[canonical]
			maps.Copy(a.options, dir.Options)
		}
	}

	result := make([]Entry, 0, len(entries))
	for name, a := range entries {
		result = append(result, Entry{
			Name:    name,
			Request: a.request,
			Options: a.options,
			Source:  a.source,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// mergeAliases merges each level's [alias] table, walked outer-to-inner so
// an inner file's alias overrides an outer one of the same name ("last-wins
// across the stack" per spec §4.H step 2, applied with the same inner-wins
// direction as the rest of the stack).
func mergeAliases(stack []*ConfigFile) map[string]string {
	merged := make(map[string]string)
	for i := len(stack) - 1; i >= 0; i-- {
		maps.Copy(merged, stack[i].Aliases)
	}
	return merged
}
