package verify

import (
	"context"
	"fmt"

	"github.com/vertool/vertool/internal/checksum"
)

// ChecksumVerifier adapts internal/checksum.Verify to the Verifier interface,
// so the Install Orchestrator's verify step can run it alongside
// minisign/attestation verifiers through one uniform collaborator list.
type ChecksumVerifier struct {
	Algorithm checksum.Algorithm
	Expected  string
}

var _ Verifier = (*ChecksumVerifier)(nil)

// Verify checks the artifact's digest against the expected value.
func (v *ChecksumVerifier) Verify(_ context.Context, artifact ArtifactRef) (Result, error) {
	if v.Expected == "" {
		return Result{Method: "checksum", Skipped: true, Reason: "no checksum published for this package"}, nil
	}

	if err := checksum.Verify(artifact.Path, v.Algorithm, v.Expected); err != nil {
		return Result{Method: "checksum", Verified: false, Reason: fmt.Sprintf("%v", err)}, nil
	}

	return Result{Method: "checksum", Verified: true}, nil
}
