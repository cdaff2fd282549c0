package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usetidy/internal/engine/manifest"
)

const sampleManifest = `
[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = { version = "1", features = ["derive"] }
serde-json = "1"
local-thing = { path = "../local-thing" }

[dev-dependencies]
criterion = "0.5"
serde = "1"

[build-dependencies]
cc = "1.0"

[workspace]
members = ["crates/*"]

[workspace.dependencies]
anyhow = "1"

[target.'cfg(windows)'.dependencies]
winapi-util = "0.1"
`

func TestParseCollectsAllTables(t *testing.T) {
	set, err := manifest.Parse([]byte(sampleManifest))
	require.NoError(t, err)

	assert.True(t, set.Contains("serde"))
	assert.True(t, set.Contains("criterion"))
	assert.True(t, set.Contains("cc"))
	assert.True(t, set.Contains("anyhow"))
	assert.True(t, set.Contains("winapi_util"))
	assert.False(t, set.Contains("rand"))
	assert.Equal(t, 7, set.Len())
}

func TestParseNormalizesHyphens(t *testing.T) {
	set, err := manifest.Parse([]byte(sampleManifest))
	require.NoError(t, err)

	assert.True(t, set.Contains("serde_json"))
	assert.True(t, set.Contains("serde-json"))
	assert.True(t, set.Contains("local_thing"))
}

func TestProvenanceClasses(t *testing.T) {
	set, err := manifest.Parse([]byte(sampleManifest))
	require.NoError(t, err)

	cases := []struct {
		name string
		want manifest.Class
	}{
		{"serde_json", manifest.ClassRuntime},
		{"anyhow", manifest.ClassRuntime},
		{"winapi_util", manifest.ClassRuntime},
		{"cc", manifest.ClassBuild},
		{"criterion", manifest.ClassDev},
	}
	for _, tc := range cases {
		class, ok := set.Provenance(tc.name)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.want, class, tc.name)
	}

	_, ok := set.Provenance("rand")
	assert.False(t, ok)
}

func TestProvenanceRuntimeWinsOverDev(t *testing.T) {
	set, err := manifest.Parse([]byte(sampleManifest))
	require.NoError(t, err)

	class, ok := set.Provenance("serde")
	require.True(t, ok)
	assert.Equal(t, manifest.ClassRuntime, class)
}

func TestParseUsesRenameKeyNotPackageName(t *testing.T) {
	set, err := manifest.Parse([]byte(`
[dependencies]
fancy-log = { package = "log", version = "0.4" }
`))
	require.NoError(t, err)

	assert.True(t, set.Contains("fancy_log"))
	assert.False(t, set.Contains("log"))
}

func TestParseRejectsMalformedTOML(t *testing.T) {
	_, err := manifest.Parse([]byte("[dependencies\nserde = \"1\"\n"))
	assert.Error(t, err)
}

func TestNamesSorted(t *testing.T) {
	set, err := manifest.Parse([]byte(sampleManifest))
	require.NoError(t, err)

	want := []string{"anyhow", "cc", "criterion", "local_thing", "serde", "serde_json", "winapi_util"}
	assert.Equal(t, want, set.Names())
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	set, err := manifest.Load(path)
	require.NoError(t, err)
	assert.True(t, set.Contains("serde"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "Cargo.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestNilSetIsEmpty(t *testing.T) {
	var set *manifest.DependencySet

	assert.False(t, set.Contains("serde"))
	assert.Nil(t, set.Names())
	assert.Equal(t, 0, set.Len())
	_, ok := set.Provenance("serde")
	assert.False(t, ok)
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "runtime", manifest.ClassRuntime.String())
	assert.Equal(t, "build", manifest.ClassBuild.String())
	assert.Equal(t, "dev", manifest.ClassDev.String())
}
