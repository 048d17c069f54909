// Package aqua provides version override functionality for aqua-registry packages.
package aqua

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// semverPattern matches semver constraint expressions like semver("< 1.0.0") or semver(">= 2.0.0").
var semverPattern = regexp.MustCompile(`^semver\("([^"]+)"\)$`)

// matchVersionConstraint checks if the given version matches the constraint.
// Returns true if:
//   - constraint is "true" or empty string
//   - constraint is semver("...") and version satisfies the constraint
func matchVersionConstraint(constraint, version string) bool {
	// "true" or empty always matches
	if constraint == "true" || constraint == "" {
		return true
	}

	// Check for semver("...") format
	matches := semverPattern.FindStringSubmatch(constraint)
	if len(matches) != 2 {
		// Unknown constraint format, don't match
		return false
	}

	// Parse semver constraint
	semverConstraint := matches[1]
	c, err := semver.NewConstraint(semverConstraint)
	if err != nil {
		return false
	}

	// Parse version (strip "v" prefix if present)
	versionStr := strings.TrimPrefix(version, "v")
	v, err := semver.NewVersion(versionStr)
	if err != nil {
		return false
	}

	return c.Check(v)
}

// ApplyVersionOverrides applies version-specific overrides to the package info.
//
// If the package declares a non-empty top-level VersionConstraint and the
// requested version satisfies it, the package is considered fully pinned:
// version_overrides are not consulted at all and info is returned unchanged.
// Otherwise the first matching entry in VersionOverrides is applied. If no
// override matches, the original info is returned unchanged.
func ApplyVersionOverrides(info *PackageInfo, version string) *PackageInfo {
	if info.VersionConstraint != "" && matchVersionConstraint(info.VersionConstraint, version) {
		return info
	}

	if len(info.VersionOverrides) == 0 {
		return info
	}

	// Create a shallow copy
	result := *info

	for _, override := range info.VersionOverrides {
		if matchVersionConstraint(override.VersionConstraint, version) {
			// Apply override fields if they are set
			result.Type = mergeType(result.Type, override.Type)
			if override.RepoOwner != "" {
				result.RepoOwner = override.RepoOwner
			}
			if override.RepoName != "" {
				result.RepoName = override.RepoName
			}
			if override.URL != "" {
				result.URL = override.URL
			}
			if override.Asset != "" {
				result.Asset = override.Asset
			}
			if override.Format != "" {
				result.Format = override.Format
			}
			if len(override.Files) > 0 {
				result.Files = override.Files
			}
			if override.VersionPrefix != nil {
				result.VersionPrefix = *override.VersionPrefix
			}
			if override.Rosetta2 {
				result.Rosetta2 = true
			}
			if override.WindowsArmEmulation {
				result.WindowsArmEmulation = true
			}
			if override.CompleteWindowsExt != nil {
				result.CompleteWindowsExt = override.CompleteWindowsExt
			}
			if override.Overrides != nil {
				result.Overrides = override.Overrides
			}
			if override.SupportedEnvs != nil {
				result.SupportedEnvs = override.SupportedEnvs
			}
			result.Replacements = mergeReplacements(result.Replacements, override.Replacements)
			result.Checksum = mergeChecksumSpec(result.Checksum, override.Checksum)
			result.SLSAProvenance = mergeSLSAProvenanceSpec(result.SLSAProvenance, override.SLSAProvenance)
			result.Minisign = mergeMinisignSpec(result.Minisign, override.Minisign)
			result.GithubArtifactAttestations = mergeGithubArtifactAttestationsSpec(result.GithubArtifactAttestations, override.GithubArtifactAttestations)
			// Only apply the first matching override
			break
		}
	}

	return &result
}
