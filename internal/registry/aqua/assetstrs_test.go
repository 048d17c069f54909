package aqua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetStrs_DarwinAddsUniversal(t *testing.T) {
	t.Parallel()
	info := &PackageInfo{
		Type:  "github_release",
		Asset: "tool_{{.OS}}_{{.Arch}}.tar.gz",
	}
	strs, err := AssetStrs(info, "v1.0.0", "darwin", "arm64")
	require.NoError(t, err)
	assert.Contains(t, strs, "tool_darwin_arm64.tar.gz")
	assert.Contains(t, strs, "tool_darwin_universal.tar.gz")
}

func TestAssetStrs_WindowsArm64FallsBackToAmd64(t *testing.T) {
	t.Parallel()
	info := &PackageInfo{
		Type:  "github_release",
		Asset: "tool_{{.OS}}_{{.Arch}}",
	}
	strs, err := AssetStrs(info, "v1.0.0", "windows", "arm64")
	require.NoError(t, err)
	assert.Contains(t, strs, "tool_windows_arm64.exe")
	assert.Contains(t, strs, "tool_windows_amd64.exe")
}

func TestAssetStrs_Rosetta2SubstitutesArch(t *testing.T) {
	t.Parallel()
	info := &PackageInfo{
		Type:     "github_release",
		Asset:    "tool_{{.OS}}_{{.Arch}}.tar.gz",
		Rosetta2: true,
	}
	strs, err := AssetStrs(info, "v1.0.0", "darwin", "arm64")
	require.NoError(t, err)
	assert.Contains(t, strs, "tool_darwin_amd64.tar.gz")
}

func TestAssetStrs_LinuxNoExtraVariants(t *testing.T) {
	t.Parallel()
	info := &PackageInfo{
		Type:  "github_release",
		Asset: "tool_{{.OS}}_{{.Arch}}.tar.gz",
	}
	strs, err := AssetStrs(info, "v1.0.0", "linux", "amd64")
	require.NoError(t, err)
	assert.Equal(t, []string{"tool_linux_amd64.tar.gz"}, strs)
}
