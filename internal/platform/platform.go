// Package platform classifies OS/arch/libc strings into the canonical
// Platform Key used throughout resolution and lockfile storage.
package platform

import (
	"net/url"
	"path"
	"regexp"
	"runtime"
	"strings"
)

// Libc identifies the C library variant on Linux targets.
type Libc string

const (
	LibcNone Libc = ""
	LibcGNU  Libc = "gnu"
	LibcMusl Libc = "musl"
)

// Key is a canonical Platform Key: os x arch x optional libc.
type Key struct {
	OS   string
	Arch string
	Libc Libc
}

// String renders the canonical "<os>-<arch>[-<qualifier>]" form used as the
// lockfile's to_key().
func (k Key) String() string {
	s := k.OS + "-" + k.Arch
	if k.Libc != LibcNone {
		s += "-" + string(k.Libc)
	}
	return s
}

var (
	osPatterns = []struct {
		canonical string
		re        *regexp.Regexp
	}{
		{"linux", regexp.MustCompile(`(?i)linux`)},
		{"darwin", regexp.MustCompile(`(?i)darwin|macosx?|osx`)},
		{"windows", regexp.MustCompile(`(?i)win32|win64|windows|win`)},
	}

	archPatterns = []struct {
		canonical string
		re        *regexp.Regexp
	}{
		{"amd64", regexp.MustCompile(`(?i)x86_64|x64|amd64`)},
		{"arm64", regexp.MustCompile(`(?i)aarch_?64|arm_?64`)},
		{"386", regexp.MustCompile(`(?i)x86|i386|i686`)},
		{"arm", regexp.MustCompile(`(?i)arm(v[0-7])?`)},
	}

	libcPatterns = []struct {
		canonical Libc
		re        *regexp.Regexp
	}{
		{LibcGNU, regexp.MustCompile(`(?i)gnu|glibc`)},
		{LibcMusl, regexp.MustCompile(`(?i)musl`)},
	}
)

// osAliases and archAliases map each canonical name to itself; spellings
// such as "x86_64", "amd64" and "x64" are recognised by the Classify*
// patterns, not by these maps.
var osAliases = buildAliases(osPatterns)
var archAliases = buildAliasesArch(archPatterns)

func buildAliases(patterns []struct {
	canonical string
	re        *regexp.Regexp
}) map[string]string {
	m := map[string]string{}
	for _, p := range patterns {
		m[p.canonical] = p.canonical
	}
	return m
}

func buildAliasesArch(patterns []struct {
	canonical string
	re        *regexp.Regexp
}) map[string]string {
	return buildAliases(patterns)
}

// ClassifyOS returns the canonical OS name matched in s, or "" if none matched.
func ClassifyOS(s string) string {
	for _, p := range osPatterns {
		if p.re.MatchString(s) {
			return p.canonical
		}
	}
	return ""
}

// ClassifyArch returns the canonical arch name matched in s, or "" if none matched.
func ClassifyArch(s string) string {
	for _, p := range archPatterns {
		if p.re.MatchString(s) {
			return p.canonical
		}
	}
	return ""
}

// ClassifyLibc returns the canonical libc matched in s, or LibcNone if none matched.
func ClassifyLibc(s string) Libc {
	for _, p := range libcPatterns {
		if p.re.MatchString(s) {
			return p.canonical
		}
	}
	return LibcNone
}

// MatchesOS reports whether text classifies to the same canonical OS as
// target, using ClassifyOS rather than exact string comparison.
func MatchesOS(text, target string) bool {
	return ClassifyOS(text) == ClassifyOS(target)
}

// MatchesArch reports the arch equivalent of MatchesOS.
func MatchesArch(text, target string) bool {
	return ClassifyArch(text) == ClassifyArch(target)
}

// DetectFromURL parses a URL, strips query/fragment, extracts the final
// path segment, and classifies OS/arch/libc from it. ok is false unless both
// OS and arch were recognised.
func DetectFromURL(rawURL string) (key Key, ok bool) {
	u, err := url.Parse(rawURL)
	name := rawURL
	if err == nil {
		name = path.Base(u.Path)
	}
	osName := ClassifyOS(name)
	archName := ClassifyArch(name)
	if osName == "" || archName == "" {
		return Key{}, false
	}
	return Key{OS: osName, Arch: archName, Libc: ClassifyLibc(name)}, true
}

// Current returns the running process's Platform Key, reading the host's
// C library from /etc/os-release-independent heuristics is out of scope;
// libc is left unset here and is populated by callers that know the build
// (e.g. via os.ReadFile("/lib/ld-musl-*") probing) — Asset Picker only needs
// libc when scoring candidate assets, and defaults to LibcNone otherwise.
func Current() Key {
	return Key{
		OS:   normalizeGoOS(runtime.GOOS),
		Arch: normalizeGoArch(runtime.GOARCH),
	}
}

func normalizeGoOS(goos string) string {
	switch strings.ToLower(goos) {
	case "darwin":
		return "darwin"
	case "windows":
		return "windows"
	default:
		return "linux"
	}
}

func normalizeGoArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "amd64"
	case "arm64":
		return "arm64"
	case "386":
		return "386"
	case "arm":
		return "arm"
	default:
		return goarch
	}
}
