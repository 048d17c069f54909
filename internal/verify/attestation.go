package verify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sync"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	protobundle "github.com/sigstore/protobuf-specs/gen/pb-go/bundle/v1"
	"github.com/sigstore/sigstore-go/pkg/bundle"
	"github.com/sigstore/sigstore-go/pkg/root"
	"github.com/sigstore/sigstore-go/pkg/tuf"
	sgverify "github.com/sigstore/sigstore-go/pkg/verify"
	"google.golang.org/protobuf/encoding/protojson"
)

// githubOIDCIssuer is the OIDC issuer for GitHub Actions keyless signing,
// used by both GitHub artifact attestations and SLSA provenance built with
// slsa-framework/slsa-github-generator.
const githubOIDCIssuer = "https://token.actions.githubusercontent.com"

// BundleFetcher retrieves the raw Sigstore bundle JSON published for an
// artifact's sha256 digest (hex, no "sha256:" prefix). A nil, nil return
// means no attestations are published for that digest.
type BundleFetcher func(ctx context.Context, owner, repo, sha256Hex string) ([][]byte, error)

// AttestationVerifier verifies Sigstore bundle attestations (GitHub artifact
// attestations or SLSA provenance, which share the same bundle wire format)
// against a downloaded release artifact. Unlike cosign-over-OCI, the
// signature binds directly to the artifact's bytes via sgverify.WithArtifact,
// so no manifest-digest bookkeeping is needed.
type AttestationVerifier struct {
	method       string
	fetch        BundleFetcher
	signerRegexp *regexp.Regexp

	trustedRootOnce sync.Once
	trustedRoot     *root.LiveTrustedRoot
	trustedRootErr  error
}

// NewAttestationVerifier creates an AttestationVerifier. method labels the
// Result it produces ("github_artifact_attestations" or "slsa_provenance").
// signerWorkflowRegex matches the expected Fulcio certificate SAN, e.g.
// `^https://github\.com/cli/cli/\.github/workflows/`.
func NewAttestationVerifier(method string, fetch BundleFetcher, signerWorkflowRegex string) (*AttestationVerifier, error) {
	re, err := regexp.Compile(signerWorkflowRegex)
	if err != nil {
		return nil, fmt.Errorf("invalid signer workflow pattern: %w", err)
	}
	return &AttestationVerifier{method: method, fetch: fetch, signerRegexp: re}, nil
}

var _ Verifier = (*AttestationVerifier)(nil)

// Verify fetches attestation bundles for the artifact's digest and checks
// whether any of them verifies against its content and the expected
// certificate identity.
func (v *AttestationVerifier) Verify(ctx context.Context, artifact ArtifactRef) (Result, error) {
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read artifact: %w", err)
	}
	// v1.Hash gives us the same "algorithm:hex" digest identity the GitHub
	// attestations API and SLSA provenance both key off, reusing the same
	// digest type the teacher's OCI-pull path used for registry blobs.
	digest, _, err := v1.SHA256(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("failed to hash artifact: %w", err)
	}

	bundles, err := v.fetch(ctx, artifact.RepoOwner, artifact.RepoName, digest.Hex)
	if err != nil {
		slog.Warn("attestation verification skipped: failed to fetch bundles",
			"method", v.method, "tool", artifact.Tool, "error", err)
		return Result{Method: v.method, Skipped: true, Reason: fmt.Sprintf("failed to fetch attestations: %v", err)}, nil
	}
	if len(bundles) == 0 {
		return Result{Method: v.method, Skipped: true, Reason: "no attestations published for this artifact"}, nil
	}

	trustedRoot, err := v.getTrustedRoot()
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch trusted root: %w", err)
	}

	verifierConfig, err := sgverify.NewVerifier(
		trustedRoot,
		sgverify.WithSignedCertificateTimestamps(1),
		sgverify.WithTransparencyLog(1),
		sgverify.WithIntegratedTimestamps(1),
	)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create verifier: %w", err)
	}

	identity, err := sgverify.NewShortCertificateIdentity(githubOIDCIssuer, "", "", v.signerRegexp.String())
	if err != nil {
		return Result{}, fmt.Errorf("failed to create certificate identity: %w", err)
	}

	for i, raw := range bundles {
		b, err := parseAttestationBundle(raw)
		if err != nil {
			slog.Debug("skipping unparsable attestation bundle", "method", v.method, "index", i, "error", err)
			continue
		}

		_, err = verifierConfig.Verify(b, sgverify.NewPolicy(
			sgverify.WithArtifact(bytes.NewReader(data)),
			sgverify.WithCertificateIdentity(identity),
		))
		if err != nil {
			slog.Debug("attestation verification attempt failed", "method", v.method, "index", i, "error", err)
			continue
		}

		return Result{Method: v.method, Verified: true}, nil
	}

	return Result{Method: v.method, Skipped: true, Reason: "no attestation verified successfully"}, nil
}

func (v *AttestationVerifier) getTrustedRoot() (*root.LiveTrustedRoot, error) {
	v.trustedRootOnce.Do(func() {
		v.trustedRoot, v.trustedRootErr = root.NewLiveTrustedRoot(tuf.DefaultOptions())
	})
	return v.trustedRoot, v.trustedRootErr
}

// parseAttestationBundle parses a Sigstore bundle delivered as protobuf JSON
// (the format GitHub's attestations API and SLSA provenance bundles both use).
func parseAttestationBundle(data []byte) (*bundle.Bundle, error) {
	var pb protobundle.Bundle
	if err := protojson.Unmarshal(data, &pb); err != nil {
		return nil, fmt.Errorf("failed to parse sigstore bundle JSON: %w", err)
	}
	b, err := bundle.NewBundle(&pb)
	if err != nil {
		return nil, fmt.Errorf("failed to create sigstore bundle: %w", err)
	}
	return b, nil
}
