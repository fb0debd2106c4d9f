package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestFileProcessor_Collect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Main.groovy":           "class Main {}",
		"Helper.java":           "class Helper {}",
		"README.md":             "# readme",
		"p/C.groovy":            "package p; class C {}",
		"p/q/D.java":            "package p.q; class D {}",
		"p/fixtures.txtar":      "-- a/A.groovy --\n",
		"build/Gen.java":        "class Gen {}",
		".hidden/Secret.java":   "class Secret {}",
		"p/skipme/E.groovy":     "class E {}",
		"p/skipme/F.groovy.bak": "",
	})

	fp := NewFileProcessor()

	files, err := fp.Collect([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Helper.java"),
		filepath.Join(root, "Main.groovy"),
	}, files)

	files, err = fp.Collect([]string{root + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Helper.java"),
		filepath.Join(root, "Main.groovy"),
		filepath.Join(root, "p", "C.groovy"),
		filepath.Join(root, "p", "fixtures.txtar"),
		filepath.Join(root, "p", "q", "D.java"),
		filepath.Join(root, "p", "skipme", "E.groovy"),
	}, files)

	require.NoError(t, fp.Exclude("p/skipme/**", "**/*.txtar"))
	files, err = fp.Collect([]string{root + "/...", filepath.Join(root, "Main.groovy")})
	require.NoError(t, err)
	assert.Len(t, files, 4)
	assert.NotContains(t, files, filepath.Join(root, "p", "skipme", "E.groovy"))
}

func TestFileProcessor_CollectErrors(t *testing.T) {
	fp := NewFileProcessor()
	_, err := fp.Collect([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	assert.Error(t, fp.Exclude("[a"))
}

func TestFileProcessor_ExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"A.groovy": "", "B.java": ""})

	files, err := NewFileProcessor(".java").Collect([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "B.java")}, files)
}

func TestFileReader_Caching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.groovy")
	require.NoError(t, os.WriteFile(path, []byte("class A {}"), 0o644))

	fp := NewFileProcessor()
	first, err := fp.ReadSource(path)
	require.NoError(t, err)
	second, err := fp.ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats := fp.GetFileReader().GetCacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)

	require.NoError(t, os.WriteFile(path, []byte("class A { int x }"), 0o644))
	third, err := fp.ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "class A { int x }", third)

	_, err = fp.ReadSource("")
	assert.Error(t, err)
	_, err = fp.ReadSource(filepath.Join(t.TempDir(), "nope.groovy"))
	assert.Error(t, err)
}
