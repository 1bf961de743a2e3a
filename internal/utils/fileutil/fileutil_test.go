package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAtomicWriteFile tests replacing a file leaves no temp files behind
// TestAtomicWriteFile 测试替换文件后不会残留临时文件
func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "rules")

	require.NoError(t, AtomicWriteFile(target, []byte("first"), 0600))
	require.NoError(t, AtomicWriteFile(target, []byte("second"), 0640))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAtomicWriteFile_MissingDir(t *testing.T) {
	err := AtomicWriteFile(filepath.Join(t.TempDir(), "nope", "rules"), []byte("x"), 0600)
	assert.Error(t, err)
}

func TestReadOptional(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := ReadOptional(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, ok)

	p := filepath.Join(dir, "present.yaml")
	require.NoError(t, os.WriteFile(p, []byte("a: 1\n"), 0600))
	content, ok, err := ReadOptional(p)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a: 1\n", string(content))
}
