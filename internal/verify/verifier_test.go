package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopVerifier(t *testing.T) {
	t.Parallel()

	reason := "minisign not configured for this package"
	v := NewNoopVerifier("minisign", reason)

	result, err := v.Verify(context.Background(), ArtifactRef{
		Tool:    "cli/cli",
		Version: "v2.86.0",
		Path:    "/tmp/gh_2.86.0.tar.gz",
	})
	require.NoError(t, err)

	assert.Equal(t, "minisign", result.Method)
	assert.False(t, result.Verified)
	assert.True(t, result.Skipped)
	assert.Equal(t, reason, result.Reason)
}

func TestNoopVerifier_MethodLabelVaries(t *testing.T) {
	t.Parallel()

	v := NewNoopVerifier("github_artifact_attestations", "no repo owner/name known for this backend")
	result, err := v.Verify(context.Background(), ArtifactRef{})
	require.NoError(t, err)

	assert.Equal(t, "github_artifact_attestations", result.Method)
	assert.True(t, result.Skipped)
}
