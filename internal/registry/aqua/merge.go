// Package aqua provides field-by-field override merging shared by
// applyOSOverrides and ApplyVersionOverrides.
package aqua

import "maps"

// defaultPackageType is the package type apply_override treats as "unset":
// an override whose type equals this one never changes the base's type
// (spec §3 invariant iii).
const defaultPackageType = "github_release"

// mergeType applies avo onto base unless avo is empty or the package-type
// default, matching aqua's own apply_override ("if avo.r#type !=
// AquaPackageType::GithubRelease { orig.r#type = avo.r#type }").
func mergeType(base, avo string) string {
	if avo != "" && avo != defaultPackageType {
		return avo
	}
	return base
}

// mergeReplacements merges avo's keys onto base key-by-key, avo winning on
// conflict, so a base key avo doesn't mention survives (spec.md:224-226:
// "merge field-by-field ... preserving nested defaults").
func mergeReplacements(base, avo map[string]string) map[string]string {
	if len(avo) == 0 {
		return base
	}
	merged := make(map[string]string, len(base)+len(avo))
	maps.Copy(merged, base)
	maps.Copy(merged, avo)
	return merged
}

// mergeChecksumSpec merges avo's set fields onto base field-by-field rather
// than replacing the whole spec, so an override that only narrows Algorithm
// doesn't drop the base's Asset template.
func mergeChecksumSpec(base, avo *ChecksumSpec) *ChecksumSpec {
	if avo == nil {
		return base
	}
	result := &ChecksumSpec{}
	if base != nil {
		*result = *base
	}
	if avo.Enabled {
		result.Enabled = true
	}
	if avo.Type != "" {
		result.Type = avo.Type
	}
	if avo.Asset != "" {
		result.Asset = avo.Asset
	}
	if avo.Algorithm != "" {
		result.Algorithm = avo.Algorithm
	}
	return result
}

// mergeSLSAProvenanceSpec merges avo's set fields onto base field-by-field.
func mergeSLSAProvenanceSpec(base, avo *SLSAProvenanceSpec) *SLSAProvenanceSpec {
	if avo == nil {
		return base
	}
	result := &SLSAProvenanceSpec{}
	if base != nil {
		*result = *base
	}
	if avo.Enabled {
		result.Enabled = true
	}
	if avo.Type != "" {
		result.Type = avo.Type
	}
	if avo.RepoOwner != "" {
		result.RepoOwner = avo.RepoOwner
	}
	if avo.RepoName != "" {
		result.RepoName = avo.RepoName
	}
	if avo.Asset != "" {
		result.Asset = avo.Asset
	}
	if avo.SourceURI != "" {
		result.SourceURI = avo.SourceURI
	}
	if avo.SourceTag != "" {
		result.SourceTag = avo.SourceTag
	}
	return result
}

// mergeMinisignSpec merges avo's set fields onto base field-by-field.
func mergeMinisignSpec(base, avo *MinisignSpec) *MinisignSpec {
	if avo == nil {
		return base
	}
	result := &MinisignSpec{}
	if base != nil {
		*result = *base
	}
	if avo.Enabled {
		result.Enabled = true
	}
	if avo.Type != "" {
		result.Type = avo.Type
	}
	if avo.RepoOwner != "" {
		result.RepoOwner = avo.RepoOwner
	}
	if avo.RepoName != "" {
		result.RepoName = avo.RepoName
	}
	if avo.Asset != "" {
		result.Asset = avo.Asset
	}
	if avo.PublicKey != "" {
		result.PublicKey = avo.PublicKey
	}
	return result
}

// mergeGithubArtifactAttestationsSpec merges avo's set fields onto base
// field-by-field.
func mergeGithubArtifactAttestationsSpec(base, avo *GithubArtifactAttestationsSpec) *GithubArtifactAttestationsSpec {
	if avo == nil {
		return base
	}
	result := &GithubArtifactAttestationsSpec{}
	if base != nil {
		*result = *base
	}
	if avo.Enabled {
		result.Enabled = true
	}
	if avo.SignerWorkflow != "" {
		result.SignerWorkflow = avo.SignerWorkflow
	}
	return result
}
