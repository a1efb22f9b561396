package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	// Test OpenFile (Create)
	fpath := filepath.Join(tmp, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	// Write
	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)

	// Datasync and Sync
	assert.NoError(t, Datasync(f))
	assert.NoError(t, f.Sync())

	// Stat via File
	info, err := f.Stat()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	assert.NoError(t, f.Close())

	// Stat via FS
	info2, err := lfs.Stat(fpath)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info2.Size())

	// ReadDir
	entries, err := lfs.ReadDir(tmp)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	// Rename
	newPath := filepath.Join(tmp, "renamed.txt")
	assert.NoError(t, lfs.Rename(fpath, newPath))

	data, err := ReadFile(lfs, newPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.NoError(t, SyncDir(lfs, tmp))

	// Remove
	assert.NoError(t, lfs.Remove(newPath))
	_, err = lfs.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestReadFile_NotExist(t *testing.T) {
	_, err := ReadFile(Default, filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_FailAfterBytes(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule(".txt", Fault{FailAfterBytes: 5})

	fpath := filepath.Join(tmp, "faulty.txt")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	// Write 5 bytes - OK
	n, err := f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	// Write 1 byte - Fail
	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 0, n)

	assert.Equal(t, int64(5), ffs.Written())
	require.NoError(t, f.Close())
}

func TestFaultyFS_TornWrite(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule(".txt", Fault{FailAfterBytes: 3})

	fpath := filepath.Join(tmp, "torn.txt")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)

	n, err := f.Write([]byte("hello"))
	assert.Error(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, "hel", string(data))
}

func TestFaultyFS_Rules(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule(".tmp", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule(".data", Fault{FailAfterBytes: -1, FailOnRename: true, FailOnRemove: true})
	ffs.AddRule(".nope", Fault{FailAfterBytes: -1, FailOnOpen: true})

	tmpPath := filepath.Join(tmp, "a.tmp")
	f, err := ffs.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	assert.ErrorIs(t, Datasync(f), ErrInjected)
	assert.ErrorIs(t, f.Sync(), ErrInjected)
	require.NoError(t, f.Close())

	err = ffs.Rename(tmpPath, filepath.Join(tmp, "a.data"))
	assert.ErrorIs(t, err, ErrInjected)
	_, err = os.Stat(tmpPath)
	assert.NoError(t, err, "failed rename must leave source in place")

	assert.ErrorIs(t, ffs.Remove(filepath.Join(tmp, "a.data")), ErrInjected)

	_, err = ffs.OpenFile(filepath.Join(tmp, "x.nope"), os.O_CREATE|os.O_WRONLY, 0644)
	assert.ErrorIs(t, err, ErrInjected)

	// Later rules win.
	ffs.AddRule(".data", Fault{FailAfterBytes: -1})
	assert.NoError(t, ffs.Rename(tmpPath, filepath.Join(tmp, "a.data")))
}

func TestFaultyFS_Ops(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)

	fpath := filepath.Join(tmp, "ops.tmp")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, Datasync(f))
	require.NoError(t, f.Close())
	require.NoError(t, ffs.Rename(fpath, filepath.Join(tmp, "ops.data")))
	require.NoError(t, SyncDir(ffs, tmp))

	assert.Equal(t, []string{"open", "write", "datasync", "close", "rename", "open", "sync", "close"}, ffs.Ops())

	ffs.Reset()
	assert.Empty(t, ffs.Ops())
	assert.Zero(t, ffs.Written())
}
