package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/compiler"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func paths(sources []compiler.Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Path)
	}
	return out
}

func TestSourceScanner_Scan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/p/A.groovy":       "package p\nclass A {}\n",
		"src/p/B.java":         "package p;\nclass B {}\n",
		"src/p/notes.txt":      "not a source",
		"src/p/sub/C.groovy":   "package p.sub\nclass C {}\n",
		"src/vendor/V.java":    "class V {}\n",
		"src/p/gen/Gen.groovy": "class Gen {}\n",
		"bundle/joint.txtar":   "-- q/D.groovy --\npackage q\nclass D {}\n-- q/E.java --\npackage q;\nclass E {}\n",
		"src/.hidden/H.groovy": "class H {}\n",
	})
	slash := func(rel string) string { return filepath.ToSlash(filepath.Join(root, rel)) }

	t.Run("directory is not recursive", func(t *testing.T) {
		sources, err := NewSourceScanner().Scan([]string{filepath.Join(root, "src", "p")})
		require.NoError(t, err)
		assert.Equal(t, []string{slash("src/p/A.groovy"), slash("src/p/B.java")}, paths(sources))
		assert.Equal(t, "package p\nclass A {}\n", sources[0].Text)
	})

	t.Run("recursive pattern skips vendor and hidden directories", func(t *testing.T) {
		sources, err := NewSourceScanner().Scan([]string{filepath.Join(root, "src") + "/..."})
		require.NoError(t, err)
		assert.Equal(t, []string{
			slash("src/p/A.groovy"),
			slash("src/p/B.java"),
			slash("src/p/gen/Gen.groovy"),
			slash("src/p/sub/C.groovy"),
		}, paths(sources))
	})

	t.Run("excludes", func(t *testing.T) {
		scanner := NewSourceScanner()
		require.NoError(t, scanner.Exclude("p/gen/**"))
		sources, err := scanner.Scan([]string{filepath.Join(root, "src") + "/..."})
		require.NoError(t, err)
		assert.NotContains(t, paths(sources), slash("src/p/gen/Gen.groovy"))
		assert.Len(t, sources, 3)
	})

	t.Run("archive members keep archive paths", func(t *testing.T) {
		sources, err := NewSourceScanner().Scan([]string{filepath.Join(root, "bundle", "joint.txtar")})
		require.NoError(t, err)
		assert.Equal(t, []string{"q/D.groovy", "q/E.java"}, paths(sources))
		assert.Equal(t, "package q;\nclass E {}\n", sources[1].Text)
	})

	t.Run("explicit file of any extension", func(t *testing.T) {
		sources, err := NewSourceScanner().Scan([]string{filepath.Join(root, "src", "p", "notes.txt")})
		require.NoError(t, err)
		assert.Equal(t, []string{slash("src/p/notes.txt")}, paths(sources))
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := NewSourceScanner().Scan([]string{filepath.Join(root, "nope")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope")
	})
}

func TestSourceScanner_InvalidExclude(t *testing.T) {
	err := NewSourceScanner().Exclude("[")
	require.Error(t, err)
}
