// Package durable implements the crash-safe commit sequence for single files.
//
// A commit writes the new content to a temp file, flushes it, renames it over
// the target and flushes the containing directory:
//
//	create(tmp) -> write -> datasync(tmp) -> close -> rename(tmp, dst) -> fsync(dir)
//
// The target therefore only ever holds the old content or the complete new
// content. A crash before the rename leaves, at worst, a stale temp file.
// A crash after the rename but before the directory flush can lose the
// rename itself on some filesystems, never the data.
package durable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/stablestore/internal/fs"
)

// Steps of the durability sequence, as reported in Error.Op.
const (
	OpCreate   = "create"
	OpWrite    = "write"
	OpDatasync = "datasync"
	OpClose    = "close"
	OpRename   = "rename"
	OpSyncDir  = "syncdir"
	OpRemove   = "remove"
	OpReadDir  = "readdir"
)

// Error reports the step of the sequence that failed.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("durable: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Writer performs durable commits and removals inside a single directory.
type Writer struct {
	fs  fs.FileSystem
	dir string
}

// NewWriter creates a Writer for files inside dir.
func NewWriter(fsys fs.FileSystem, dir string) *Writer {
	if fsys == nil {
		fsys = fs.Default
	}
	return &Writer{fs: fsys, dir: dir}
}

// Commit durably replaces the content of dataPath with data, staging it in
// tempPath. Both paths must live directly inside the writer's directory.
//
// On any failure before the rename the temp file is removed on a best-effort
// basis and dataPath is untouched. A failure of the final directory flush is
// returned even though the rename already happened.
func (w *Writer) Commit(tempPath, dataPath string, data []byte) error {
	f, err := w.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &Error{Op: OpCreate, Path: tempPath, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		w.discard(tempPath)
		return &Error{Op: OpWrite, Path: tempPath, Err: err}
	}
	if err := fs.Datasync(f); err != nil {
		f.Close()
		w.discard(tempPath)
		return &Error{Op: OpDatasync, Path: tempPath, Err: err}
	}
	if err := f.Close(); err != nil {
		w.discard(tempPath)
		return &Error{Op: OpClose, Path: tempPath, Err: err}
	}

	if err := w.fs.Rename(tempPath, dataPath); err != nil {
		w.discard(tempPath)
		return &Error{Op: OpRename, Path: dataPath, Err: err}
	}

	return w.SyncDir()
}

// Remove deletes dataPath and flushes the directory.
//
// It reports whether the file existed and was deleted. When the file is
// deleted but the directory flush fails, Remove returns true together with
// the flush error.
func (w *Writer) Remove(dataPath string) (bool, error) {
	if err := w.fs.Remove(dataPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &Error{Op: OpRemove, Path: dataPath, Err: err}
	}
	return true, w.SyncDir()
}

// SyncDir flushes the writer's directory.
func (w *Writer) SyncDir() error {
	if err := fs.SyncDir(w.fs, w.dir); err != nil {
		return &Error{Op: OpSyncDir, Path: w.dir, Err: err}
	}
	return nil
}

// Sweep removes regular files in the directory whose name ends in suffix
// and whose remaining stem satisfies match. It returns the number of files
// removed and flushes the directory if that number is not zero.
func (w *Writer) Sweep(suffix string, match func(stem string) bool) (int, error) {
	entries, err := w.fs.ReadDir(w.dir)
	if err != nil {
		return 0, &Error{Op: OpReadDir, Path: w.dir, Err: err}
	}

	removed := 0
	var errs []error
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		stem, ok := strings.CutSuffix(e.Name(), suffix)
		if !ok || !match(stem) {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if err := w.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, &Error{Op: OpRemove, Path: path, Err: err})
			continue
		}
		removed++
	}

	if removed > 0 {
		if err := w.SyncDir(); err != nil {
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}

func (w *Writer) discard(path string) {
	_ = w.fs.Remove(path)
}
