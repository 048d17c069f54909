package backend

import "strings"

// ParseVersionRequest parses a version directive as written in vertool.toml's
// [tools] table into a VersionRequest. An empty string or "latest" requests
// the newest version; a trailing ".x"/"*" segment (e.g. "20.x", "3.11.*")
// requests the newest version under that prefix; "ref:<value>" requests a
// backend-specific ref; anything containing a range operator is treated as
// a semver constraint; everything else is an exact literal.
func ParseVersionRequest(s string) VersionRequest {
	s = strings.TrimSpace(s)
	if s == "" || s == "latest" {
		return VersionRequest{Kind: VersionLatest}
	}
	if ref, ok := strings.CutPrefix(s, "ref:"); ok {
		return VersionRequest{Kind: VersionRef, Ref: ref}
	}
	if prefix, ok := cutVersionPrefix(s); ok {
		return VersionRequest{Kind: VersionPrefix, Prefix: prefix}
	}
	if looksLikeRange(s) {
		return VersionRequest{Kind: VersionRange, Range: s}
	}
	return VersionRequest{Kind: VersionExact, Exact: s}
}

// cutVersionPrefix strips a trailing ".x" or ".*" component, e.g.
// "20.x" -> "20", "3.11.*" -> "3.11".
func cutVersionPrefix(s string) (string, bool) {
	if prefix, ok := strings.CutSuffix(s, ".x"); ok {
		return prefix, true
	}
	if prefix, ok := strings.CutSuffix(s, ".*"); ok {
		return prefix, true
	}
	if s == "x" || s == "*" {
		return "", true
	}
	return "", false
}

// looksLikeRange reports whether s uses semver constraint syntax
// (comparison operators or a hyphen range) rather than a literal version.
func looksLikeRange(s string) bool {
	for _, op := range []string{">=", "<=", "^", "~", ">", "<", " - ", ","} {
		if strings.Contains(s, op) {
			return true
		}
	}
	return false
}
