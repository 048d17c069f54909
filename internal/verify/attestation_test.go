package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttestationVerifier_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewAttestationVerifier("slsa_provenance", func(context.Context, string, string, string) ([][]byte, error) {
		return nil, nil
	}, "(unclosed")
	require.Error(t, err)
}

func TestAttestationVerifier_Verify_FetchError(t *testing.T) {
	t.Parallel()

	path := writeTempArtifact(t, []byte("release artifact contents"))
	fetchErr := errors.New("network unreachable")

	v, err := NewAttestationVerifier("github_artifact_attestations", func(context.Context, string, string, string) ([][]byte, error) {
		return nil, fetchErr
	}, `^https://github\.com/cli/cli/\.github/workflows/`)
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), ArtifactRef{Path: path, RepoOwner: "cli", RepoName: "cli"})
	require.NoError(t, err)

	assert.Equal(t, "github_artifact_attestations", result.Method)
	assert.True(t, result.Skipped)
	assert.False(t, result.Verified)
	assert.Contains(t, result.Reason, "network unreachable")
}

func TestAttestationVerifier_Verify_NoAttestationsPublished(t *testing.T) {
	t.Parallel()

	path := writeTempArtifact(t, []byte("release artifact contents"))

	v, err := NewAttestationVerifier("slsa_provenance", func(context.Context, string, string, string) ([][]byte, error) {
		return nil, nil
	}, `^https://github\.com/cli/cli/\.github/workflows/`)
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), ArtifactRef{Path: path, RepoOwner: "cli", RepoName: "cli"})
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.False(t, result.Verified)
	assert.Equal(t, "no attestations published for this artifact", result.Reason)
}

func TestParseAttestationBundle_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := parseAttestationBundle([]byte("not json"))
	require.Error(t, err)
}
