package build

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprinterChanged(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.css"), []byte("a{}"))
	writeTestFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))

	f := NewFingerprinter()

	changed, err := f.Changed("styles", dir, "*.css")
	require.NoError(t, err)
	assert.True(t, changed, "first observation")

	changed, err = f.Changed("styles", dir, "*.css")
	require.NoError(t, err)
	assert.False(t, changed)

	writeTestFile(t, filepath.Join(dir, "notes.txt"), []byte("still ignored"))
	changed, _ = f.Changed("styles", dir, "*.css")
	assert.False(t, changed)

	writeTestFile(t, filepath.Join(dir, "b.css"), []byte("b{}"))
	changed, _ = f.Changed("styles", dir, "*.css")
	assert.True(t, changed)
}

func TestFingerprinterMissingRoot(t *testing.T) {
	f := NewFingerprinter()
	a, err := f.Sum(filepath.Join(t.TempDir(), "absent"), "*")
	require.NoError(t, err)
	b, err := f.Sum(filepath.Join(t.TempDir(), "also-absent"), "*")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
