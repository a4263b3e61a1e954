package stationfs

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLocate_PrefixMatchAcrossSubdirectories(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "z/E000V00035_temp.txt", "")
	b := writeFile(t, root, "a/deep/nested/E000V00035", "")
	writeFile(t, root, "a/X_E000V00035.txt", "")
	writeFile(t, root, "a/e000v00035.txt", "")

	store := NewStore(slog.Default())
	got := store.Locate([]string{"E000V00035"}, root)

	assert.Equal(t, []string{b, a}, got)
}

func TestLocate_GroupsByCodeOrder(t *testing.T) {
	root := t.TempDir()
	first := writeFile(t, root, "b/E000V00176.dat", "")
	second := writeFile(t, root, "a/E000V00029.dat", "")
	third := writeFile(t, root, "c/E000V00029.bak", "")

	store := NewStore(slog.Default())
	got := store.Locate([]string{"E000V00176", "E000V00029", "E000V00177"}, root)

	assert.Equal(t, []string{first, second, third}, got)
}

func TestLocate_NoDeduplication(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "E000V000351.txt", "")

	store := NewStore(slog.Default())
	got := store.Locate([]string{"E000V00035", "E000V000351"}, root)

	assert.Equal(t, []string{path, path}, got)
}

func TestLocate_MissingRoot(t *testing.T) {
	store := NewStore(slog.Default())
	got := store.Locate([]string{"E000V00035"}, filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Empty(t, got)
}

func TestLocate_NoMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "E000330002.txt", "")

	store := NewStore(slog.Default())
	assert.Empty(t, store.Locate([]string{"E000V00035"}, root))
	assert.Empty(t, store.Locate(nil, root))
}

func TestLocate_DirectoriesAreNotMatched(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "E000V00035"), 0o755))
	inner := writeFile(t, root, "E000V00035/readme", "")

	store := NewStore(slog.Default())
	got := store.Locate([]string{"E000V00035"}, root)

	assert.NotContains(t, got, filepath.Join(root, "E000V00035"))
	assert.NotContains(t, got, inner)
	assert.Empty(t, got)
}

func TestReadStation(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "E000V00035.txt", "2020 1 10.0\n")

	store := NewStore(slog.Default())
	data, err := store.ReadStation(path)
	require.NoError(t, err)
	assert.Equal(t, "2020 1 10.0\n", string(data))

	_, err = store.ReadStation(filepath.Join(root, "missing.txt"))
	require.Error(t, err)
}
