package verify

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

var testMinisignKeyID = [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

func buildMinisignPublicKey(t *testing.T, pub ed25519.PublicKey, keyID [8]byte) string {
	t.Helper()
	blob := make([]byte, 0, minisignPublicKeyLen)
	blob = append(blob, minisignAlgEd[:]...)
	blob = append(blob, keyID[:]...)
	blob = append(blob, pub...)
	return "untrusted comment: minisign public key\n" + base64.StdEncoding.EncodeToString(blob) + "\n"
}

func buildMinisignSignature(t *testing.T, priv ed25519.PrivateKey, keyID [8]byte, hashed bool, message []byte, trustedComment string) string {
	t.Helper()

	signedMessage := message
	alg := minisignAlgEd
	if hashed {
		sum := blake2b.Sum512(message)
		signedMessage = sum[:]
		alg = minisignAlgHashed
	}

	sigBytes := make([]byte, 0, minisignSignatureLen)
	sigBytes = append(sigBytes, alg[:]...)
	sigBytes = append(sigBytes, keyID[:]...)
	sigBytes = append(sigBytes, ed25519.Sign(priv, signedMessage)...)

	globalMessage := append(append([]byte{}, sigBytes...), []byte(trustedComment)...)
	globalSig := ed25519.Sign(priv, globalMessage)

	return "untrusted comment: signature\n" +
		base64.StdEncoding.EncodeToString(sigBytes) + "\n" +
		"trusted comment: " + trustedComment + "\n" +
		base64.StdEncoding.EncodeToString(globalSig) + "\n"
}

func TestMinisignVerifier_Verify_DirectSignature(t *testing.T) {
	t.Parallel()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	content := []byte("release artifact contents")
	path := filepath.Join(t.TempDir(), "artifact.tar.gz")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	sigPath := filepath.Join(t.TempDir(), "artifact.tar.gz.minisig")
	sigText := buildMinisignSignature(t, priv, testMinisignKeyID, false, content, "timestamp:1700000000\tfile:artifact.tar.gz")
	require.NoError(t, os.WriteFile(sigPath, []byte(sigText), 0o644))

	v, err := NewMinisignVerifier(buildMinisignPublicKey(t, pub, testMinisignKeyID), sigPath)
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), ArtifactRef{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "minisign", result.Method)
	assert.True(t, result.Verified)
}

func TestMinisignVerifier_Verify_HashedSignature(t *testing.T) {
	t.Parallel()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	content := []byte("a larger release artifact payload")
	path := filepath.Join(t.TempDir(), "artifact.tar.gz")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	sigPath := filepath.Join(t.TempDir(), "artifact.tar.gz.minisig")
	sigText := buildMinisignSignature(t, priv, testMinisignKeyID, true, content, "timestamp:1700000000\tfile:artifact.tar.gz")
	require.NoError(t, os.WriteFile(sigPath, []byte(sigText), 0o644))

	v, err := NewMinisignVerifier(buildMinisignPublicKey(t, pub, testMinisignKeyID), sigPath)
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), ArtifactRef{Path: path})
	require.NoError(t, err)

	assert.True(t, result.Verified)
}

func TestMinisignVerifier_Verify_TamperedArtifact(t *testing.T) {
	t.Parallel()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	content := []byte("release artifact contents")
	path := filepath.Join(t.TempDir(), "artifact.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("tampered contents"), 0o644))

	sigPath := filepath.Join(t.TempDir(), "artifact.tar.gz.minisig")
	sigText := buildMinisignSignature(t, priv, testMinisignKeyID, false, content, "timestamp:1700000000\tfile:artifact.tar.gz")
	require.NoError(t, os.WriteFile(sigPath, []byte(sigText), 0o644))

	v, err := NewMinisignVerifier(buildMinisignPublicKey(t, pub, testMinisignKeyID), sigPath)
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), ArtifactRef{Path: path})
	require.NoError(t, err)

	assert.False(t, result.Verified)
	assert.NotEmpty(t, result.Reason)
}

func TestMinisignVerifier_Verify_UnknownKeyID(t *testing.T) {
	t.Parallel()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	content := []byte("release artifact contents")
	path := filepath.Join(t.TempDir(), "artifact.tar.gz")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	sigPath := filepath.Join(t.TempDir(), "artifact.tar.gz.minisig")
	otherKeyID := [8]byte{8, 7, 6, 5, 4, 3, 2, 1}
	sigText := buildMinisignSignature(t, priv, otherKeyID, false, content, "timestamp:1700000000\tfile:artifact.tar.gz")
	require.NoError(t, os.WriteFile(sigPath, []byte(sigText), 0o644))

	v, err := NewMinisignVerifier(buildMinisignPublicKey(t, pub, testMinisignKeyID), sigPath)
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), ArtifactRef{Path: path})
	require.NoError(t, err)

	assert.False(t, result.Verified)
	assert.Equal(t, "signature key ID does not match trusted public key", result.Reason)
}

func TestMinisignVerifier_Verify_SignatureFileMissing(t *testing.T) {
	t.Parallel()

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "artifact.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("contents"), 0o644))

	v, err := NewMinisignVerifier(buildMinisignPublicKey(t, pub, testMinisignKeyID), filepath.Join(t.TempDir(), "missing.minisig"))
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), ArtifactRef{Path: path})
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.False(t, result.Verified)
}

func TestNewMinisignVerifier_InvalidPublicKey(t *testing.T) {
	t.Parallel()

	_, err := NewMinisignVerifier("untrusted comment: bad\nbm90LWEta2V5\n", "/dev/null")
	require.Error(t, err)
}
