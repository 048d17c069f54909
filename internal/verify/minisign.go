package verify

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// minisign wire format (github.com/jedisct1/minisign), reimplemented here
// since no pack dependency speaks it: it is Ed25519 plus a trusted-comment
// line, not a format any of sigstore-go/go-containerregistry model.
//
// Public key file: one comment line, then base64 of 2-byte algorithm ("Ed"),
// 8-byte key ID, 32-byte Ed25519 public key.
//
// Signature file: one comment line, then base64 of 2-byte algorithm ("Ed" or
// "ED" for the BLAKE2b-prehashed variant), 8-byte key ID, 64-byte Ed25519
// signature; then a "trusted comment:" line and a base64 global signature
// over (signature bytes || trusted comment) binding the comment to the sig.
const (
	minisignPublicKeyLen = 2 + 8 + 32
	minisignSignatureLen = 2 + 8 + 64
)

var (
	minisignAlgEd     = [2]byte{'E', 'd'}
	minisignAlgHashed = [2]byte{'E', 'D'}
)

// MinisignVerifier verifies a minisign detached signature against a
// downloaded artifact.
type MinisignVerifier struct {
	publicKey ed25519.PublicKey
	keyID     [8]byte
	sigPath   string
}

// NewMinisignVerifier parses a minisign public key (as found in a package's
// minisign.public_key field) and the path to the detached .minisig file
// published alongside the release asset.
func NewMinisignVerifier(publicKeyText, sigPath string) (*MinisignVerifier, error) {
	raw, err := decodeMinisignBlob(publicKeyText, minisignPublicKeyLen)
	if err != nil {
		return nil, fmt.Errorf("invalid minisign public key: %w", err)
	}
	if raw[0] != minisignAlgEd[0] || raw[1] != minisignAlgEd[1] {
		return nil, fmt.Errorf("unsupported minisign public key algorithm %q", raw[:2])
	}

	v := &MinisignVerifier{
		publicKey: ed25519.PublicKey(raw[10:minisignPublicKeyLen]),
		sigPath:   sigPath,
	}
	copy(v.keyID[:], raw[2:10])
	return v, nil
}

var _ Verifier = (*MinisignVerifier)(nil)

// Verify checks the minisign signature against the artifact's contents.
func (v *MinisignVerifier) Verify(_ context.Context, artifact ArtifactRef) (Result, error) {
	sigText, err := os.ReadFile(v.sigPath)
	if err != nil {
		return Result{Method: "minisign", Skipped: true, Reason: fmt.Sprintf("signature file unavailable: %v", err)}, nil
	}

	sigBytes, trustedComment, globalSig, err := parseMinisignSignature(string(sigText))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse minisign signature: %w", err)
	}

	algo := sigBytes[:2]
	keyID := sigBytes[2:10]
	rawSig := sigBytes[10:minisignSignatureLen]

	if !bytes.Equal(keyID, v.keyID[:]) {
		return Result{Method: "minisign", Verified: false, Reason: "signature key ID does not match trusted public key"}, nil
	}

	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read artifact: %w", err)
	}

	message := data
	switch {
	case algo[0] == minisignAlgEd[0] && algo[1] == minisignAlgEd[1]:
		// message signed directly
	case algo[0] == minisignAlgHashed[0] && algo[1] == minisignAlgHashed[1]:
		sum := blake2b.Sum512(data)
		message = sum[:]
	default:
		return Result{}, fmt.Errorf("unsupported minisign signature algorithm %q", algo)
	}

	if !ed25519.Verify(v.publicKey, message, rawSig) {
		return Result{Method: "minisign", Verified: false, Reason: "signature does not match artifact contents"}, nil
	}

	if globalSig != nil {
		globalMessage := append(append([]byte{}, sigBytes...), []byte(trustedComment)...)
		if !ed25519.Verify(v.publicKey, globalMessage, globalSig) {
			return Result{Method: "minisign", Verified: false, Reason: "trusted comment signature invalid"}, nil
		}
	}

	return Result{Method: "minisign", Verified: true}, nil
}

// parseMinisignSignature parses a .minisig file body into its raw signature
// blob, trusted comment text, and the (optional) global signature over them.
func parseMinisignSignature(text string) (sigBytes []byte, trustedComment string, globalSig []byte, err error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) < 2 {
		return nil, "", nil, fmt.Errorf("signature file has too few lines")
	}

	sigBytes, err = decodeMinisignBlob(lines[1], minisignSignatureLen)
	if err != nil {
		return nil, "", nil, fmt.Errorf("invalid signature line: %w", err)
	}

	if len(lines) >= 4 {
		trustedComment = strings.TrimPrefix(lines[2], "trusted comment: ")
		globalSig, err = base64.StdEncoding.DecodeString(strings.TrimSpace(lines[3]))
		if err != nil {
			return nil, "", nil, fmt.Errorf("invalid global signature line: %w", err)
		}
	}

	return sigBytes, trustedComment, globalSig, nil
}

// decodeMinisignBlob decodes the base64 data line of a minisign key or
// signature file (skipping any leading "untrusted comment:" line) and
// checks its length.
func decodeMinisignBlob(text string, wantLen int) ([]byte, error) {
	var dataLine string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "untrusted comment:") {
			continue
		}
		dataLine = line
		break
	}
	if dataLine == "" {
		return nil, fmt.Errorf("no base64 data line found")
	}

	raw, err := base64.StdEncoding.DecodeString(dataLine)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(raw) != wantLen {
		return nil, fmt.Errorf("unexpected blob length %d, want %d", len(raw), wantLen)
	}
	return raw, nil
}
