package durable

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stablestore/internal/fs"
)

func paths(dir string) (string, string) {
	return filepath.Join(dir, "k.tmp"), filepath.Join(dir, "k.data")
}

func TestCommit_Sequence(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	w := NewWriter(ffs, dir)
	tmp, data := paths(dir)

	require.NoError(t, w.Commit(tmp, data, []byte("v1")))

	// Temp file flushed before rename, directory flushed after.
	assert.Equal(t, []string{"open", "write", "datasync", "close", "rename", "open", "sync", "close"}, ffs.Ops())

	got, err := os.ReadFile(data)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	_, err = os.Stat(tmp)
	assert.True(t, os.IsNotExist(err))
}

func TestCommit_Overwrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(nil, dir)
	tmp, data := paths(dir)

	require.NoError(t, w.Commit(tmp, data, []byte("first value")))
	require.NoError(t, w.Commit(tmp, data, []byte("v2")))

	got, err := os.ReadFile(data)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestCommit_EmptyValue(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(nil, dir)
	tmp, data := paths(dir)

	require.NoError(t, w.Commit(tmp, data, nil))
	info, err := os.Stat(data)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCommit_FailuresKeepPreviousContent(t *testing.T) {
	tests := []struct {
		name   string
		suffix string
		fault  fs.Fault
		op     string
	}{
		{"create", ".tmp", fs.Fault{FailAfterBytes: -1, FailOnOpen: true}, OpCreate},
		{"write", ".tmp", fs.Fault{FailAfterBytes: 2}, OpWrite},
		{"datasync", ".tmp", fs.Fault{FailAfterBytes: -1, FailOnSync: true}, OpDatasync},
		{"close", ".tmp", fs.Fault{FailAfterBytes: -1, FailOnClose: true}, OpClose},
		{"rename", ".data", fs.Fault{FailAfterBytes: -1, FailOnRename: true}, OpRename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ffs := fs.NewFaultyFS(nil)
			w := NewWriter(ffs, dir)
			tmp, data := paths(dir)

			require.NoError(t, w.Commit(tmp, data, []byte("old")))
			ffs.AddRule(tt.suffix, tt.fault)

			err := w.Commit(tmp, data, []byte("new value"))
			require.Error(t, err)

			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.op, de.Op)
			assert.ErrorIs(t, err, fs.ErrInjected)

			got, err := os.ReadFile(data)
			require.NoError(t, err)
			assert.Equal(t, "old", string(got))

			_, err = os.Stat(tmp)
			assert.True(t, os.IsNotExist(err), "temp file must be discarded")
		})
	}
}

func TestCommit_DirSyncFailureAfterRename(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	w := NewWriter(ffs, dir)
	tmp, data := paths(dir)

	ffs.AddRule(filepath.Base(dir), fs.Fault{FailAfterBytes: -1, FailOnSync: true})

	err := w.Commit(tmp, data, []byte("new"))
	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, OpSyncDir, de.Op)

	// The rename already happened; the data is visible.
	got, err := os.ReadFile(data)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	w := NewWriter(ffs, dir)
	tmp, data := paths(dir)

	ok, err := w.Remove(data)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"remove"}, ffs.Ops(), "missing file must not flush the directory")

	require.NoError(t, w.Commit(tmp, data, []byte("v")))
	ffs.Reset()

	ok, err = w.Remove(data)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"remove", "open", "sync", "close"}, ffs.Ops())

	_, err = os.Stat(data)
	assert.True(t, os.IsNotExist(err))
}

func TestRemove_Failures(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	w := NewWriter(ffs, dir)
	tmp, data := paths(dir)
	require.NoError(t, w.Commit(tmp, data, []byte("v")))

	ffs.AddRule(".data", fs.Fault{FailAfterBytes: -1, FailOnRemove: true})
	ok, err := w.Remove(data)
	assert.False(t, ok)
	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, OpRemove, de.Op)

	ffs.Reset()
	ffs.AddRule(filepath.Base(dir), fs.Fault{FailAfterBytes: -1, FailOnSync: true})
	ok, err = w.Remove(data)
	assert.True(t, ok)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, OpSyncDir, de.Op)
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(nil, dir)

	for _, name := range []string{"aa.tmp", "bb.tmp", "aa.data", "keep.me.tmp", "other"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cc.tmp"), 0755))

	n, err := w.Sweep(".tmp", func(stem string) bool { return !strings.Contains(stem, ".") })
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"aa.data", "keep.me.tmp", "other", "cc.tmp"}, names)
}
