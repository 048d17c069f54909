// Package verify checks supply-chain attestations for a downloaded tool
// release artifact: plain checksums, minisign signatures, and Sigstore
// bundles (GitHub artifact attestations and SLSA provenance, which share a
// bundle format).
package verify

import "context"

// ArtifactRef identifies a downloaded release artifact to verify.
type ArtifactRef struct {
	// Tool is the backend-qualified tool identifier (e.g. "cli/cli").
	Tool string
	// Version is the resolved version string (e.g. "v2.86.0").
	Version string
	// Path is the local filesystem path to the downloaded artifact.
	Path string
	// RepoOwner and RepoName identify the GitHub repository the artifact
	// was published from, for verifiers that fetch attestations by digest.
	RepoOwner string
	RepoName  string
}

// Result is the outcome of running one verification method against an artifact.
type Result struct {
	// Method names the verification method that produced this result
	// (e.g. "minisign", "github_artifact_attestations").
	Method   string
	Verified bool
	// Skipped is true when the method could not be attempted at all (no
	// signature published, fetch failed) as opposed to attempted and
	// failed. Reason explains either case.
	Skipped bool
	Reason  string
}

// Verifier checks one supply-chain attestation method against a downloaded
// artifact.
type Verifier interface {
	Verify(ctx context.Context, artifact ArtifactRef) (Result, error)
}
