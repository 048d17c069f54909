// Package asset implements the Asset Picker: scoring and selecting the best
// release asset for the current platform out of a list of candidate names.
package asset

import (
	"strings"

	"github.com/vertool/vertool/internal/platform"
)

var archiveExtensions = []string{
	"tar.gz", "tar.bz2", "tar.xz", "tar.zst", "tgz", "tbz", "tbz2", "txz", "tzst", "zip", "7z", "tar",
}

func hasArchiveExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}

// Pick scores each candidate in names against target and returns the
// highest scoring one. Ties break by original input order. Pick returns
// ("", false) if names is empty or the top score is <= 0.
func Pick(target platform.Key, names []string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}

	candidates := names
	var archiveCandidates []string
	for _, n := range names {
		if hasArchiveExtension(n) {
			archiveCandidates = append(archiveCandidates, n)
		}
	}
	if len(archiveCandidates) > 0 {
		candidates = archiveCandidates
	}

	bestScore := 0
	bestIdx := -1
	for i, c := range candidates {
		score := scoreCandidate(target, c)
		if bestIdx == -1 || score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx == -1 || bestScore <= 0 {
		return "", false
	}
	return candidates[bestIdx], true
}

func scoreCandidate(target platform.Key, name string) int {
	score := 0

	if os := platform.ClassifyOS(name); os != "" {
		if os == target.OS {
			score += 100
		} else {
			score -= 50
		}
	}

	if arch := platform.ClassifyArch(name); arch != "" {
		if arch == target.Arch {
			score += 50
		} else {
			score -= 25
		}
	}

	if target.OS == "linux" {
		if libc := platform.ClassifyLibc(name); libc != "" {
			if libc == target.Libc {
				score += 25
			} else {
				score -= 10
			}
		}
	}

	if hasArchiveExtension(name) {
		score += 10
	}

	lower := strings.ToLower(name)
	if strings.Contains(lower, "debug") {
		score -= 20
	}
	if strings.Contains(lower, "test") {
		score -= 20
	}

	return score
}
