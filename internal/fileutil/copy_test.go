package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCopyFile_PreservesContentModeAndMtime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o640))
	mtime := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	require.True(t, info.ModTime().Equal(mtime))
}

func TestCopyFile_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	dst := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o600))
	require.NoError(t, os.WriteFile(dst, []byte("older and longer"), 0o600))

	require.NoError(t, CopyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

func TestCopyFile_RejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, CopyFile(dir, filepath.Join(dir, "x")))
}

func TestCopyDir_RecursesAndSkips(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub", ".git"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("t"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "n.txt"), []byte("n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", ".git", "HEAD"), []byte("h"), 0o600))

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, CopyDir(src, dst, ".git"))

	require.FileExists(t, filepath.Join(dst, "top.txt"))
	require.FileExists(t, filepath.Join(dst, "sub", "n.txt"))
	require.NoDirExists(t, filepath.Join(dst, "sub", ".git"))
}

func TestWriteFileAtomic(t *testing.T) {
	p := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteFileAtomic(p, []byte("{}"), 0o600))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
	require.NoFileExists(t, p+".tmp")
}
