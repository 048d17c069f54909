package plugin

import (
	"context"
	"strings"
	"testing"

	"github.com/vertool/vertool/internal/backend"
	"github.com/vertool/vertool/internal/platform"
)

const dummyPlugin = `
PLUGIN = {}

function PLUGIN:Available(ctx)
	return {
		{version = "1.0.0", note = "stable"},
		{version = "1.2.0", note = "stable"},
		{version = "2.0.0-beta", note = "prerelease"},
	}
end

function PLUGIN:PreInstall(ctx)
	return {
		version = ctx.version,
		url = "https://example.com/dummy-" .. ctx.version .. ".tar.gz",
		sha256 = "deadbeef",
	}
end

function PLUGIN:EnvKeys(ctx)
	return {
		{key = "DUMMY_HOME", value = ctx.path},
	}
end
`

func TestLoadRejectsScriptWithoutPluginTable(t *testing.T) {
	if _, err := Load("broken", "return 1"); err == nil {
		t.Fatal("expected error for script without PLUGIN table")
	}
}

func TestLoadRejectsSyntaxError(t *testing.T) {
	if _, err := Load("broken", "this is not lua"); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestSandboxRestrictsStdlib(t *testing.T) {
	s, err := Load("dummy", `
PLUGIN = {}
function PLUGIN:Available(ctx)
	io.open("/etc/passwd")
	return {}
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	if _, err := available(s); err == nil {
		t.Fatal("expected error: io should not be available in the sandbox")
	}
}

func TestResolverResolveVersionPicksHighestMatchingExact(t *testing.T) {
	s, err := Load("dummy", dummyPlugin)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	r := NewResolver(map[string]*Sandbox{"dummy": s})

	got, err := r.ResolveVersion(context.Background(), "dummy", backend.VersionRequest{Kind: backend.VersionExact, Exact: "1.2.0"})
	if err != nil {
		t.Fatalf("ResolveVersion: %v", err)
	}
	if got != "1.2.0" {
		t.Errorf("expected 1.2.0, got %s", got)
	}
}

func TestResolverResolveVersionLatestSkipsPrerelease(t *testing.T) {
	s, err := Load("dummy", dummyPlugin)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	r := NewResolver(map[string]*Sandbox{"dummy": s})

	got, err := r.ResolveVersion(context.Background(), "dummy", backend.VersionRequest{Kind: backend.VersionLatest})
	if err != nil {
		t.Fatalf("ResolveVersion: %v", err)
	}
	if got != "1.2.0" {
		t.Errorf("expected latest stable 1.2.0 (2.0.0-beta is a prerelease), got %s", got)
	}
}

func TestResolverResolveBuildsURLAndEnv(t *testing.T) {
	s, err := Load("dummy", dummyPlugin)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	r := NewResolver(map[string]*Sandbox{"dummy": s})

	resolved, err := r.Resolve(context.Background(), "dummy", "1.2.0", platform.Key{OS: "linux", Arch: "amd64"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(resolved.URL, "dummy-1.2.0.tar.gz") {
		t.Errorf("unexpected URL: %s", resolved.URL)
	}
	if resolved.ChecksumURL != "deadbeef" {
		t.Errorf("expected inline digest deadbeef, got %s", resolved.ChecksumURL)
	}
	if resolved.EnvInstall["DUMMY_HOME"] == "" {
		t.Errorf("expected DUMMY_HOME to be set, got %v", resolved.EnvInstall)
	}
}

func TestLogModulePrefixesPluginName(t *testing.T) {
	s, err := Load("noisy", `
PLUGIN = {}
function PLUGIN:Available(ctx)
	local log = require("log")
	log.info("hello", "world")
	return {}
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	if _, err := available(s); err != nil {
		t.Fatalf("available: %v", err)
	}
}

func TestSemverModuleSortsVersions(t *testing.T) {
	s, err := Load("semvertest", `
PLUGIN = {}
function PLUGIN:Available(ctx)
	local semver = require("semver")
	local sorted = semver.sort({"1.2.0", "1.0.0", "2.0.0"})
	local out = {}
	for i, v in ipairs(sorted) do
		out[i] = {version = v}
	end
	return out
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	versions, err := available(s)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	want := []string{"1.0.0", "1.2.0", "2.0.0"}
	if len(versions) != len(want) {
		t.Fatalf("expected %v, got %v", want, versions)
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Errorf("expected %v, got %v", want, versions)
			break
		}
	}
}

func TestStringsModule(t *testing.T) {
	s, err := Load("stringstest", `
PLUGIN = {}
function PLUGIN:Available(ctx)
	local strings = require("strings")
	if not strings.has_prefix("v1.2.0", "v") then
		error("expected prefix match")
	end
	return {{version = strings.trim_space("  1.2.0  ")}}
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	versions, err := available(s)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(versions) != 1 || versions[0] != "1.2.0" {
		t.Errorf("unexpected versions: %v", versions)
	}
}
