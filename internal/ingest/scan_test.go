package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("Data;OEE\n"), 0o644))
	return path
}

func TestExpandDirectory(t *testing.T) {
	dir := t.TempDir()
	b := createTestFile(t, dir, "b.xlsx")
	a := createTestFile(t, dir, "a.csv")
	createTestFile(t, dir, "~$b.xlsx")
	createTestFile(t, dir, "notes.docx")
	createTestFile(t, dir, "sub/c.csv")

	files, err := Expand([]string{dir}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	files, err = Expand([]string{dir}, true)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestExpandKeepsFiles(t *testing.T) {
	files, err := Expand([]string{"missing.csv", "x.pdf"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"missing.csv", "x.pdf"}, files)
}

func TestExpandEmptyDirectory(t *testing.T) {
	_, err := Expand([]string{t.TempDir()}, false)
	assert.ErrorContains(t, err, "no .csv")
}
