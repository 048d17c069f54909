package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertool/vertool/internal/checksum"
)

func writeTempArtifact(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.tar.gz")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestChecksumVerifier_Verify_Match(t *testing.T) {
	t.Parallel()

	content := []byte("release artifact contents")
	sum := sha256.Sum256(content)
	path := writeTempArtifact(t, content)

	v := &ChecksumVerifier{Algorithm: checksum.AlgorithmSHA256, Expected: hex.EncodeToString(sum[:])}
	result, err := v.Verify(context.Background(), ArtifactRef{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "checksum", result.Method)
	assert.True(t, result.Verified)
	assert.False(t, result.Skipped)
}

func TestChecksumVerifier_Verify_Mismatch(t *testing.T) {
	t.Parallel()

	path := writeTempArtifact(t, []byte("release artifact contents"))

	v := &ChecksumVerifier{Algorithm: checksum.AlgorithmSHA256, Expected: hex.EncodeToString(make([]byte, sha256.Size))}
	result, err := v.Verify(context.Background(), ArtifactRef{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "checksum", result.Method)
	assert.False(t, result.Verified)
	assert.False(t, result.Skipped)
	assert.NotEmpty(t, result.Reason)
}

func TestChecksumVerifier_Verify_NoExpectedChecksum(t *testing.T) {
	t.Parallel()

	path := writeTempArtifact(t, []byte("contents"))

	v := &ChecksumVerifier{Algorithm: checksum.AlgorithmSHA256}
	result, err := v.Verify(context.Background(), ArtifactRef{Path: path})
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.False(t, result.Verified)
	assert.Equal(t, "no checksum published for this package", result.Reason)
}
