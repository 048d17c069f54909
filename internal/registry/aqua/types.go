// Package aqua provides types and functions for interacting with aqua-registry.
//
// The package definition types (PackageInfo, FileSpec, ChecksumSpec, VersionOverride, Override)
// are ported from aqua's registry configuration schema.
//
// Reference:
//   - aqua source: https://github.com/aquaproj/aqua/blob/main/pkg/config/registry/package_info.go
//   - aqua-registry: https://github.com/aquaproj/aqua-registry
//   - Documentation: https://aquaproj.github.io/docs/reference/registry-config/
//
// See NOTICE file for attribution.
package aqua

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// RegistryRef represents a reference to an aqua-registry version (tag).
// Format: "vX.Y.Z" (e.g., "v4.465.0")
type RegistryRef string

// String returns the string representation of the registry ref.
func (r RegistryRef) String() string {
	return string(r)
}

// IsEmpty returns true if the registry ref is empty.
func (r RegistryRef) IsEmpty() bool {
	return r == ""
}

// Validate checks if the registry ref is valid.
// A valid ref must:
//   - Start with "v"
//   - Be a valid semver (e.g., "v4.465.0")
func (r RegistryRef) Validate() error {
	if r.IsEmpty() {
		return fmt.Errorf("registry ref is empty")
	}

	s := string(r)
	if !strings.HasPrefix(s, "v") {
		return fmt.Errorf("registry ref must start with 'v': %s", s)
	}

	// Remove 'v' prefix and validate as semver
	version := strings.TrimPrefix(s, "v")
	if _, err := semver.NewVersion(version); err != nil {
		return fmt.Errorf("invalid registry ref format (expected vX.Y.Z): %s", s)
	}

	return nil
}

// The following types are ported from aqua's registry configuration.
// Source: https://github.com/aquaproj/aqua/blob/main/pkg/config/registry/package_info.go
// License: MIT (https://github.com/aquaproj/aqua/blob/main/LICENSE)

// PackageInfo represents a package definition from aqua registry.yaml.
type PackageInfo struct {
	Type      string `yaml:"type"`
	RepoOwner string `yaml:"repo_owner"`
	RepoName  string `yaml:"repo_name"`
	// VersionPrefix is prepended to the version when building the release
	// tag (e.g. monorepo packages tagged "kustomize/v5.8.1").
	VersionPrefix string `yaml:"version_prefix,omitempty"`
	// VersionConstraint, when non-empty, gates the top-level definition: a
	// requested version that satisfies it uses that definition as-is and
	// version_overrides below are not consulted; a version that fails it
	// falls through to the first matching version_overrides entry.
	VersionConstraint string            `yaml:"version_constraint,omitempty"`
	Description       string            `yaml:"description,omitempty"`
	Asset             string            `yaml:"asset,omitempty"`
	URL               string            `yaml:"url,omitempty"`
	Format            string            `yaml:"format,omitempty"`
	Files             []FileSpec        `yaml:"files,omitempty"`
	Replacements      map[string]string `yaml:"replacements,omitempty"`
	Checksum          *ChecksumSpec     `yaml:"checksum,omitempty"`
	VersionOverrides  []VersionOverride `yaml:"version_overrides,omitempty"`
	SupportedEnvs     []string          `yaml:"supported_envs,omitempty"`
	Overrides         []Override        `yaml:"overrides,omitempty"`

	// Rosetta2, when true, substitutes "amd64" for "arm64" in asset name
	// rendering on darwin (the package only ships an Intel build, run
	// through Rosetta 2 on Apple Silicon).
	Rosetta2 bool `yaml:"rosetta2,omitempty"`
	// WindowsArmEmulation is Rosetta2's windows/arm64 analogue: substitute
	// "amd64" for "arm64" when rendering on windows/arm64.
	WindowsArmEmulation bool `yaml:"windows_arm_emulation,omitempty"`
	// CompleteWindowsExt appends ".exe" to a raw-format windows asset name
	// that doesn't already end in ".exe" or an archive extension. Defaults to true to match
	// aqua-registry's own default.
	CompleteWindowsExt *bool `yaml:"complete_windows_ext,omitempty"`

	// SLSAProvenance, Minisign, and GithubArtifactAttestations describe
	// additional supply-chain attestations the Install Orchestrator's
	// verify step may check alongside the plain checksum.
	SLSAProvenance             *SLSAProvenanceSpec             `yaml:"slsa_provenance,omitempty"`
	Minisign                   *MinisignSpec                   `yaml:"minisign,omitempty"`
	GithubArtifactAttestations *GithubArtifactAttestationsSpec `yaml:"github_artifact_attestations,omitempty"`
}

// SLSAProvenanceSpec configures SLSA provenance attestation verification.
type SLSAProvenanceSpec struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	Type       string `yaml:"type,omitempty"`
	RepoOwner  string `yaml:"repo_owner,omitempty"`
	RepoName   string `yaml:"repo_name,omitempty"`
	Asset      string `yaml:"asset,omitempty"`
	SourceURI  string `yaml:"source_uri,omitempty"`
	SourceTag  string `yaml:"source_tag,omitempty"`
}

// MinisignSpec configures minisign signature verification.
type MinisignSpec struct {
	Enabled   bool   `yaml:"enabled,omitempty"`
	Type      string `yaml:"type,omitempty"`
	RepoOwner string `yaml:"repo_owner,omitempty"`
	RepoName  string `yaml:"repo_name,omitempty"`
	Asset     string `yaml:"asset,omitempty"`
	PublicKey string `yaml:"public_key,omitempty"`
}

// GithubArtifactAttestationsSpec configures GitHub artifact attestation
// (in-toto/SLSA over GitHub's own attestation API) verification.
type GithubArtifactAttestationsSpec struct {
	Enabled        bool   `yaml:"enabled,omitempty"`
	SignerWorkflow string `yaml:"signer_workflow,omitempty"`
}

// completeWindowsExt reports whether ".exe" should be appended to a raw
// windows asset name, defaulting to true as aqua-registry does.
func (p *PackageInfo) completeWindowsExt() bool {
	if p.CompleteWindowsExt == nil {
		return true
	}
	return *p.CompleteWindowsExt
}

// FileSpec specifies a file to install from the archive.
type FileSpec struct {
	Name string `yaml:"name"`
	Src  string `yaml:"src,omitempty"`
}

// ChecksumSpec specifies checksum verification settings.
type ChecksumSpec struct {
	Enabled   bool   `yaml:"enabled,omitempty"`
	Type      string `yaml:"type,omitempty"`      // e.g., "github_release"
	Asset     string `yaml:"asset,omitempty"`     // checksum file asset name template
	Algorithm string `yaml:"algorithm,omitempty"` // e.g., "sha256"
}

// VersionOverride specifies version-specific configuration overrides.
//
// Mirrors the overridable subset of PackageInfo that aqua's apply_override
// merges field-by-field onto the base package definition (spec §3's
// version_overrides): type, repo_owner/repo_name, and the attestation specs
// (checksum/slsa_provenance/minisign/github_artifact_attestations) can all
// be narrowed per version, not just asset/format/url.
type VersionOverride struct {
	VersionConstraint string     `yaml:"version_constraint"`
	Type              string     `yaml:"type,omitempty"`
	RepoOwner         string     `yaml:"repo_owner,omitempty"`
	RepoName          string     `yaml:"repo_name,omitempty"`
	URL               string     `yaml:"url,omitempty"`
	Asset             string     `yaml:"asset,omitempty"`
	Format            string     `yaml:"format,omitempty"`
	Files             []FileSpec `yaml:"files,omitempty"`
	// VersionPrefix is a pointer so an override can explicitly clear the
	// package's version_prefix (an empty string) as distinct from leaving
	// it untouched (nil).
	VersionPrefix              *string                          `yaml:"version_prefix,omitempty"`
	Checksum                   *ChecksumSpec                    `yaml:"checksum,omitempty"`
	Replacements               map[string]string                `yaml:"replacements,omitempty"`
	Overrides                  []Override                       `yaml:"overrides,omitempty"`
	SupportedEnvs              []string                         `yaml:"supported_envs,omitempty"`
	Rosetta2                   bool                             `yaml:"rosetta2,omitempty"`
	WindowsArmEmulation        bool                             `yaml:"windows_arm_emulation,omitempty"`
	CompleteWindowsExt         *bool                            `yaml:"complete_windows_ext,omitempty"`
	SLSAProvenance             *SLSAProvenanceSpec              `yaml:"slsa_provenance,omitempty"`
	Minisign                   *MinisignSpec                    `yaml:"minisign,omitempty"`
	GithubArtifactAttestations *GithubArtifactAttestationsSpec  `yaml:"github_artifact_attestations,omitempty"`
}

// RegistryState records which registry ref is in effect, for persistence
// alongside the rest of a lockfile's state.
type RegistryState struct {
	Aqua *AquaRegistryState `json:"aqua,omitempty"`
}

// AquaRegistryState is the persisted state of the aqua-registry ref sync.
type AquaRegistryState struct {
	Ref       RegistryRef `json:"ref"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Override specifies OS/Arch-specific configuration overrides.
//
// Like VersionOverride, this mirrors the overridable subset of PackageInfo
// (spec §3's overrides) instead of a handful of scalar fields, so an OS
// override can repoint checksum or attestation metadata the same way a
// version override can.
type Override struct {
	GOOS                       string                           `yaml:"goos,omitempty"`
	GOArch                     string                           `yaml:"goarch,omitempty"`
	Type                       string                           `yaml:"type,omitempty"`
	RepoOwner                  string                           `yaml:"repo_owner,omitempty"`
	RepoName                   string                           `yaml:"repo_name,omitempty"`
	URL                        string                           `yaml:"url,omitempty"`
	Format                     string                           `yaml:"format,omitempty"`
	Asset                      string                           `yaml:"asset,omitempty"`
	Files                      []FileSpec                       `yaml:"files,omitempty"`
	Replacements               map[string]string                `yaml:"replacements,omitempty"`
	Checksum                   *ChecksumSpec                    `yaml:"checksum,omitempty"`
	SupportedEnvs              []string                         `yaml:"supported_envs,omitempty"`
	Rosetta2                   bool                             `yaml:"rosetta2,omitempty"`
	WindowsArmEmulation        bool                             `yaml:"windows_arm_emulation,omitempty"`
	CompleteWindowsExt         *bool                            `yaml:"complete_windows_ext,omitempty"`
	SLSAProvenance             *SLSAProvenanceSpec              `yaml:"slsa_provenance,omitempty"`
	Minisign                   *MinisignSpec                    `yaml:"minisign,omitempty"`
	GithubArtifactAttestations *GithubArtifactAttestationsSpec  `yaml:"github_artifact_attestations,omitempty"`
}
