package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func collect(t *testing.T, opts Options) []Entry {
	t.Helper()
	out := make(chan Entry, 1024)
	require.NoError(t, Scan(opts, out))

	var entries []Entry
	for e := range out {
		entries = append(entries, e)
	}
	return entries
}

func TestScanFindsRegularFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a.go", "b/c.go"})

	entries := collect(t, Options{Roots: []string{root}})
	assert.Len(t, entries, 2)
}

func TestScanExcludesByBareComponentName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"main.go",
		"node_modules/pkg/index.js",
	})

	entries := collect(t, Options{
		Roots:      []string{root},
		Exclusions: []string{"node_modules"},
	})

	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(root, "main.go"), entries[0].AbsPath)
}

func TestScanExcludesByExtensionGlob(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"main.go", "main.o", "util.o"})

	entries := collect(t, Options{
		Roots:      []string{root},
		Exclusions: []string{"*.o"},
	})

	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(root, "main.go"), entries[0].AbsPath)
}

func TestScanPrunesExcludedDirectorySubtree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"src/main.go",
		".git/objects/deep/file",
		".git/config",
	})

	entries := collect(t, Options{
		Roots:      []string{root},
		Exclusions: []string{".git"},
	})

	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(root, "src/main.go"), entries[0].AbsPath)
}

func TestScanMultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeTree(t, rootA, []string{"a.go"})
	writeTree(t, rootB, []string{"b.go"})

	entries := collect(t, Options{Roots: []string{rootA, rootB}})
	assert.Len(t, entries, 2)
}

func TestScanSkipsMissingRootWithoutAbortingOthers(t *testing.T) {
	rootA := t.TempDir()
	writeTree(t, rootA, []string{"a.go"})
	missing := filepath.Join(rootA, "does-not-exist")

	out := make(chan Entry, 16)
	err := Scan(Options{Roots: []string{missing, rootA}}, out)
	require.NoError(t, err)

	var entries []Entry
	for e := range out {
		entries = append(entries, e)
	}
	assert.Len(t, entries, 1)
}
