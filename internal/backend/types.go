// Package backend defines the tool reference and backend-kind data model
// shared across the Backend Dispatcher, Tool-Version Resolver, Toolset
// Composer, and Install Orchestrator, and dispatches a ToolRef to the
// collaborator that knows how to resolve and install it.
package backend

import "fmt"

// Kind identifies which backend resolves and installs a ToolRef.
type Kind string

const (
	KindAqua       Kind = "aqua"
	KindAsdf       Kind = "asdf"
	KindCargo      Kind = "cargo"
	KindCore       Kind = "core"
	KindDotnet     Kind = "dotnet"
	KindGem        Kind = "gem"
	KindGithub     Kind = "github"
	KindGitlab     Kind = "gitlab"
	KindGo         Kind = "go"
	KindNpm        Kind = "npm"
	KindPipx       Kind = "pipx"
	KindSpm        Kind = "spm"
	KindHTTP       Kind = "http"
	KindUbi        Kind = "ubi"
	KindVfox       Kind = "vfox"
	KindVfoxPlugin Kind = "vfox-plugin"
	KindUnknown    Kind = "unknown"
)

// ParseKind maps a backend prefix (as written in a tool reference like
// "npm:eslint" or "cargo:ripgrep") to its Kind. An unrecognized prefix
// yields KindUnknown rather than an error, since a bare name with no
// prefix (e.g. "node") is resolved against the registry index instead.
func ParseKind(prefix string) Kind {
	switch Kind(prefix) {
	case KindAqua, KindAsdf, KindCargo, KindCore, KindDotnet, KindGem,
		KindGithub, KindGitlab, KindGo, KindNpm, KindPipx, KindSpm,
		KindHTTP, KindUbi, KindVfox:
		return Kind(prefix)
	default:
		return KindUnknown
	}
}

// Ref identifies a tool the resolver must locate a VersionRequest for and
// the orchestrator must eventually install. Equality is (Backend, Name);
// Options carries per-reference metadata (e.g. a vfox plugin's install
// source) that does not participate in identity.
type Ref struct {
	Backend Kind
	Name    string
	Options map[string]string
}

// Key returns the identity used for de-duplication and map lookups.
func (r Ref) Key() string {
	return fmt.Sprintf("%s:%s", r.Backend, r.Name)
}

func (r Ref) String() string {
	return r.Key()
}

// VersionRequestKind classifies how a version was specified in configuration.
type VersionRequestKind string

const (
	VersionLatest VersionRequestKind = "latest"
	VersionExact  VersionRequestKind = "exact"
	VersionPrefix VersionRequestKind = "prefix"
	VersionRange  VersionRequestKind = "range"
	VersionRef    VersionRequestKind = "ref"
)

// VersionRequest is an unresolved version directive from configuration.
// Exactly one of the value fields is meaningful, selected by Kind.
type VersionRequest struct {
	Kind VersionRequestKind

	// Exact holds the literal version string when Kind is exact.
	Exact string
	// Prefix holds the version prefix to match the highest version under
	// (e.g. "20" matching "20.11.0") when Kind is prefix.
	Prefix string
	// Range holds a semver constraint expression when Kind is range.
	Range string
	// Ref holds a backend-specific ref (a git ref, "system", a plugin-defined
	// alias) when Kind is ref. Backends that don't support refs reject it.
	Ref string
}

func (v VersionRequest) String() string {
	switch v.Kind {
	case VersionExact:
		return v.Exact
	case VersionPrefix:
		return v.Prefix
	case VersionRange:
		return v.Range
	case VersionRef:
		return v.Ref
	default:
		return "latest"
	}
}
