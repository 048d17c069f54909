package plugin

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	lua "github.com/yuin/gopher-lua"

	"github.com/vertool/vertool/internal/backend"
	"github.com/vertool/vertool/internal/checksum"
	"github.com/vertool/vertool/internal/platform"
)

// Resolver satisfies backend.PluginResolver by dispatching the vfox-style
// Available/PreInstall/EnvKeys hooks against a pool of loaded Sandboxes, one
// per plugin name. Grounded on original_source/crates/vfox/src/hooks/
// {available,pre_install,env_keys}.rs: the Rust host builds a Lua context
// table, calls the matching PLUGIN method, and reads the returned table back.
type Resolver struct {
	sandboxes map[string]*Sandbox
}

// NewResolver wraps a set of already-loaded plugin sandboxes, keyed by the
// name a Ref.Name refers to them as.
func NewResolver(sandboxes map[string]*Sandbox) *Resolver {
	return &Resolver{sandboxes: sandboxes}
}

func (r *Resolver) sandbox(pluginName string) (*Sandbox, error) {
	s, ok := r.sandboxes[pluginName]
	if !ok {
		return nil, fmt.Errorf("plugin resolver: no sandbox loaded for %q", pluginName)
	}
	return s, nil
}

// ResolveVersion runs the Available hook and picks the version matching req,
// mirroring how the asdf/vfox backends pick a concrete version out of a
// plugin-reported list rather than a registry (spec §4.D).
func (r *Resolver) ResolveVersion(ctx context.Context, pluginName string, req backend.VersionRequest) (string, error) {
	s, err := r.sandbox(pluginName)
	if err != nil {
		return "", err
	}

	versions, err := available(s)
	if err != nil {
		return "", fmt.Errorf("plugin %s: available: %w", pluginName, err)
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("plugin %s: no versions reported by Available hook", pluginName)
	}

	switch req.Kind {
	case backend.VersionExact:
		for _, v := range versions {
			if v == req.Exact {
				return v, nil
			}
		}
		return "", fmt.Errorf("plugin %s: version %s not found among Available versions", pluginName, req.Exact)
	case backend.VersionRef:
		return req.Ref, nil
	case backend.VersionPrefix:
		return highestMatching(versions, func(v *semver.Version) bool {
			return matchesPrefix(v, req.Prefix)
		})
	case backend.VersionRange:
		constraint, err := semver.NewConstraint(req.Range)
		if err != nil {
			return "", fmt.Errorf("plugin %s: invalid version range %q: %w", pluginName, req.Range, err)
		}
		return highestMatching(versions, constraint.Check)
	default:
		return highestMatching(versions, func(v *semver.Version) bool {
			return v.Prerelease() == ""
		})
	}
}

func highestMatching(versions []string, match func(*semver.Version) bool) (string, error) {
	var best *semver.Version
	var bestRaw string
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if !match(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestRaw = raw
		}
	}
	if best == nil {
		return "", fmt.Errorf("no version matched")
	}
	return bestRaw, nil
}

func matchesPrefix(v *semver.Version, prefix string) bool {
	c, err := semver.NewConstraint("~" + prefix)
	if err == nil && c.Check(v) {
		return true
	}
	return fmt.Sprintf("%d", v.Major()) == prefix ||
		fmt.Sprintf("%d.%d", v.Major(), v.Minor()) == prefix
}

// Resolve runs PreInstall (for the download URL and checksum) and EnvKeys
// (for the environment variables the Activation Layer should export), and
// folds both into a backend.Resolved the dispatcher's caller handles
// identically to a github/http/aqua resolution.
func (r *Resolver) Resolve(ctx context.Context, pluginName, version string, key platform.Key) (*backend.Resolved, error) {
	s, err := r.sandbox(pluginName)
	if err != nil {
		return nil, err
	}

	pre, err := preInstall(s, version, key)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: pre_install: %w", pluginName, err)
	}

	envKeys, err := envKeysHook(s, version, pre.installPath)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: env_keys: %w", pluginName, err)
	}

	var algorithm checksum.Algorithm
	var digest string
	switch {
	case pre.sha256 != "":
		algorithm, digest = checksum.AlgorithmSHA256, pre.sha256
	case pre.sha512 != "":
		algorithm, digest = checksum.AlgorithmSHA512, pre.sha512
	case pre.sha1 != "":
		algorithm, digest = checksum.AlgorithmSHA1, pre.sha1
	case pre.md5 != "":
		algorithm, digest = checksum.AlgorithmMD5, pre.md5
	}

	// PreInstall reports an inline digest; ChecksumURL holds that literal
	// value here, paired with Algorithm, the same way the Install
	// Orchestrator consumes it for any other backend that sets both.
	return &backend.Resolved{
		Version:     pre.version,
		URL:         pre.url,
		ChecksumURL: digest,
		Algorithm:   algorithm,
		EnvInstall:  envKeys,
	}, nil
}

// available calls the plugin's Available hook and returns the versions it lists.
func available(s *Sandbox) ([]string, error) {
	ctxTable := s.L.NewTable()
	fn, err := hookFunc(s.L, "Available")
	if err != nil {
		return nil, err
	}
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, pluginTable(s.L), ctxTable); err != nil {
		return nil, err
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("Available hook did not return a table")
	}

	var versions []string
	table.ForEach(func(_, v lua.LValue) {
		if t, ok := v.(*lua.LTable); ok {
			if ver, ok := t.RawGetString("version").(lua.LString); ok {
				versions = append(versions, string(ver))
			}
		}
	})
	sort.Strings(versions)
	return versions, nil
}

type preInstallResult struct {
	version     string
	url         string
	sha256      string
	sha512      string
	sha1        string
	md5         string
	installPath string
}

// preInstall mirrors hooks/pre_install.rs's pre_install_for_platform: the
// target OS/arch are pushed as globals so a plugin's URL template can
// generate a cross-platform download link even when resolving for a
// platform other than the host's.
func preInstall(s *Sandbox, version string, key platform.Key) (*preInstallResult, error) {
	ctxTable := s.L.NewTable()
	ctxTable.RawSetString("version", lua.LString(version))

	s.L.SetGlobal("OS_TYPE", lua.LString(key.OS))
	s.L.SetGlobal("ARCH_TYPE", lua.LString(key.Arch))

	fn, err := hookFunc(s.L, "PreInstall")
	if err != nil {
		return nil, err
	}
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, pluginTable(s.L), ctxTable); err != nil {
		return nil, err
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("PreInstall hook did not return a table")
	}
	result := &preInstallResult{version: version}
	if v, ok := table.RawGetString("version").(lua.LString); ok {
		result.version = string(v)
	}
	if v, ok := table.RawGetString("url").(lua.LString); ok {
		result.url = string(v)
	}
	if v, ok := table.RawGetString("sha256").(lua.LString); ok {
		result.sha256 = string(v)
	}
	if v, ok := table.RawGetString("sha512").(lua.LString); ok {
		result.sha512 = string(v)
	}
	if v, ok := table.RawGetString("sha1").(lua.LString); ok {
		result.sha1 = string(v)
	}
	if v, ok := table.RawGetString("md5").(lua.LString); ok {
		result.md5 = string(v)
	}
	return result, nil
}

// envKeysHook mirrors hooks/env_keys.rs's EnvKey{key,value} list.
func envKeysHook(s *Sandbox, version, path string) (map[string]string, error) {
	ctxTable := s.L.NewTable()
	ctxTable.RawSetString("version", lua.LString(version))
	ctxTable.RawSetString("path", lua.LString(path))

	fn, err := hookFunc(s.L, "EnvKeys")
	if err != nil {
		// EnvKeys is optional: not every plugin needs to export env vars.
		return nil, nil //nolint:nilerr
	}
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, pluginTable(s.L), ctxTable); err != nil {
		return nil, err
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, nil
	}
	out := make(map[string]string)
	table.ForEach(func(_, v lua.LValue) {
		if t, ok := v.(*lua.LTable); ok {
			key, _ := t.RawGetString("key").(lua.LString)
			val, _ := t.RawGetString("value").(lua.LString)
			if key != "" {
				out[string(key)] = string(val)
			}
		}
	})
	return out, nil
}

func pluginTable(L *lua.LState) *lua.LTable {
	t, _ := L.GetGlobal("PLUGIN").(*lua.LTable)
	return t
}

func hookFunc(L *lua.LState, name string) (*lua.LFunction, error) {
	t := pluginTable(L)
	if t == nil {
		return nil, fmt.Errorf("PLUGIN table missing")
	}
	fn, ok := t.RawGetString(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("PLUGIN:%s not defined", name)
	}
	return fn, nil
}
