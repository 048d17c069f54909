package verify

import "context"

// noopVerifier is a Verifier that skips verification unconditionally.
// Used when a package defines no attestation of this kind, or the user
// passed a flag disabling it.
type noopVerifier struct {
	method string
	reason string
}

// NewNoopVerifier creates a Verifier that always skips with the given reason.
func NewNoopVerifier(method, reason string) Verifier {
	return &noopVerifier{method: method, reason: reason}
}

func (v *noopVerifier) Verify(_ context.Context, _ ArtifactRef) (Result, error) {
	return Result{
		Method:  v.method,
		Skipped: true,
		Reason:  v.reason,
	}, nil
}
