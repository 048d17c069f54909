package toolversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertool/vertool/internal/backend"
)

func TestParse_BareVersionString(t *testing.T) {
	t.Parallel()

	cf, err := Parse("vertool.toml", []byte(`
[tools]
node = "20.11.0"
go = "1.22"
`))
	require.NoError(t, err)

	require.Contains(t, cf.Tools, "node")
	assert.Equal(t, backend.VersionRequest{Kind: backend.VersionExact, Exact: "20.11.0"}, cf.Tools["node"].Request)
	assert.Equal(t, backend.VersionRequest{Kind: backend.VersionExact, Exact: "1.22"}, cf.Tools["go"].Request)
}

func TestParse_TableWithOptions(t *testing.T) {
	t.Parallel()

	cf, err := Parse("vertool.toml", []byte(`
[tools.python]
version = "3.11"
virtualenv = ".venv"
`))
	require.NoError(t, err)

	dir := cf.Tools["python"]
	assert.Equal(t, backend.VersionRequest{Kind: backend.VersionExact, Exact: "3.11"}, dir.Request)
	assert.Equal(t, ".venv", dir.Options["virtualenv"])
}

func TestParse_Aliases(t *testing.T) {
	t.Parallel()

	cf, err := Parse("vertool.toml", []byte(`
[alias]
node = "nodejs"

[tools]
node = "20"
`))
	require.NoError(t, err)
	assert.Equal(t, "nodejs", cf.Aliases["node"])
}

func TestResolve_InnerWinsVersion(t *testing.T) {
	t.Parallel()

	inner, err := Parse("project/vertool.toml", []byte(`
[tools]
node = "20"
`))
	require.NoError(t, err)

	outer, err := Parse("user/vertool.toml", []byte(`
[tools]
node = "18"
go = "1.22"
`))
	require.NoError(t, err)

	entries := Resolve([]*ConfigFile{inner, outer})

	byName := make(map[string]Entry)
	for _, e := range entries {
		byName[e.Name] = e
	}

	require.Contains(t, byName, "node")
	assert.Equal(t, "20", byName["node"].Request.Exact)
	assert.Equal(t, "project/vertool.toml", byName["node"].Source)

	require.Contains(t, byName, "go")
	assert.Equal(t, "1.22", byName["go"].Request.Exact)
	assert.Equal(t, "user/vertool.toml", byName["go"].Source)
}

func TestResolve_OptionsDeepMergeInnerWins(t *testing.T) {
	t.Parallel()

	inner, err := Parse("project/vertool.toml", []byte(`
[tools.python]
version = "3.11"
virtualenv = ".venv"
`))
	require.NoError(t, err)

	outer, err := Parse("user/vertool.toml", []byte(`
[tools.python]
version = "3.10"
virtualenv = "shared-venv"
pip_args = "--no-cache-dir"
`))
	require.NoError(t, err)

	entries := Resolve([]*ConfigFile{inner, outer})
	require.Len(t, entries, 1)

	python := entries[0]
	assert.Equal(t, "3.11", python.Request.Exact, "inner file wins the version")
	assert.Equal(t, ".venv", python.Options["virtualenv"], "inner file wins the shared key")
	assert.Equal(t, "--no-cache-dir", python.Options["pip_args"], "outer-only key is preserved")
}

func TestResolve_AliasSubstitution(t *testing.T) {
	t.Parallel()

	cf, err := Parse("vertool.toml", []byte(`
[alias]
node = "nodejs"

[tools]
node = "20"
`))
	require.NoError(t, err)

	entries := Resolve([]*ConfigFile{cf})
	require.Len(t, entries, 1)
	assert.Equal(t, "nodejs", entries[0].Name)
}

func TestResolve_DeduplicatesAndSorts(t *testing.T) {
	t.Parallel()

	a, err := Parse("a.toml", []byte(`
[tools]
zzz = "1"
aaa = "1"
`))
	require.NoError(t, err)

	entries := Resolve([]*ConfigFile{a})
	require.Len(t, entries, 2)
	assert.Equal(t, "aaa", entries[0].Name)
	assert.Equal(t, "zzz", entries[1].Name)
}
