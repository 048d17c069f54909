package asset

import "testing"

import "github.com/vertool/vertool/internal/platform"

func TestPickFirstWins(t *testing.T) {
	names := []string{
		"tool-linux-x86_64.tar.gz",
		"tool-darwin-x86_64.tar.gz",
		"tool-windows-x86_64.zip",
	}
	got, ok := Pick(platform.Key{OS: "linux", Arch: "amd64", Libc: platform.LibcGNU}, names)
	if !ok || got != names[0] {
		t.Fatalf("Pick() = (%q, %v), want (%q, true)", got, ok, names[0])
	}
}

func TestPickLibcDisambiguation(t *testing.T) {
	names := []string{
		"rg-linux-x86_64-gnu.tar.gz",
		"rg-linux-x86_64-musl.tar.gz",
	}
	got, ok := Pick(platform.Key{OS: "linux", Arch: "amd64", Libc: platform.LibcMusl}, names)
	if !ok || got != names[1] {
		t.Fatalf("Pick() = (%q, %v), want (%q, true)", got, ok, names[1])
	}
}

func TestPickTotalOnNonEmpty(t *testing.T) {
	// Pick must never panic on non-empty input, and any returned name must
	// be one of the candidates (total function, defined result either way).
	names := []string{"unrelated-asset-name"}
	got, ok := Pick(platform.Key{OS: "linux", Arch: "amd64"}, names)
	if ok {
		found := false
		for _, n := range names {
			if n == got {
				found = true
			}
		}
		if !found {
			t.Fatalf("Pick() returned %q, not one of the inputs", got)
		}
	}
}

func TestPickEmpty(t *testing.T) {
	if _, ok := Pick(platform.Key{OS: "linux", Arch: "amd64"}, nil); ok {
		t.Fatal("Pick() on empty input should return ok=false")
	}
}
