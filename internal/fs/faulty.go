package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	FailAfterBytes int64 // Fail writes after this many bytes written TO THIS FILE. -1 to disable.
	FailOnOpen     bool
	FailOnSync     bool
	FailOnClose    bool
	FailOnRename   bool // Matched against the rename target.
	FailOnRemove   bool
	Err            error
}

type rule struct {
	suffix string
	fault  Fault
}

// FaultyFS is a FileSystem wrapper that can inject errors.
//
// Rules are matched by path suffix; the last matching rule wins. Paths
// without a matching rule use Default.
type FaultyFS struct {
	FS      FileSystem
	Default Fault

	mu      sync.Mutex
	rules   []rule
	written int64
	ops     []string
}

// NewFaultyFS creates a new FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{
		FS: fsys,
		Default: Fault{
			FailAfterBytes: -1, // No limit
		},
	}
}

// AddRule adds a fault injection rule for paths ending in suffix.
func (f *FaultyFS) AddRule(suffix string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{suffix: suffix, fault: fault})
}

// Reset drops all rules and the recorded operation log.
func (f *FaultyFS) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = nil
	f.ops = nil
	f.written = 0
}

// Written returns the total bytes written through this FS.
func (f *FaultyFS) Written() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

// Ops returns the recorded operation log, e.g. "open", "write", "datasync",
// "sync", "close", "rename", "remove".
func (f *FaultyFS) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

func (f *FaultyFS) record(op string) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}

func (f *FaultyFS) match(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()
	fault := f.Default
	for _, r := range f.rules {
		if strings.HasSuffix(name, r.suffix) {
			fault = r.fault
		}
	}
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	return fault
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f.record("open")
	fault := f.match(name)
	if fault.FailOnOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: fault.Err}
	}
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) Remove(name string) error {
	f.record("remove")
	if fault := f.match(name); fault.FailOnRemove {
		return &os.PathError{Op: "remove", Path: name, Err: fault.Err}
	}
	return f.FS.Remove(name)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	f.record("rename")
	if fault := f.match(newpath); fault.FailOnRename {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fault.Err}
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.FS.Stat(name)
}

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	return f.FS.ReadDir(name)
}

type faultyFile struct {
	File
	fs      *FaultyFS
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (n int, err error) {
	ff.fs.record("write")
	if ff.fault.FailAfterBytes >= 0 && ff.written+int64(len(p)) > ff.fault.FailAfterBytes {
		// Write the allowed prefix so the file is left torn, as after a crash.
		allowed := ff.fault.FailAfterBytes - ff.written
		if allowed > 0 {
			n, _ = ff.File.Write(p[:allowed])
			ff.written += int64(n)
			ff.fs.addWritten(n)
		}
		return n, ff.fault.Err
	}

	n, err = ff.File.Write(p)
	if n > 0 {
		ff.written += int64(n)
		ff.fs.addWritten(n)
	}
	return n, err
}

func (f *FaultyFS) addWritten(n int) {
	f.mu.Lock()
	f.written += int64(n)
	f.mu.Unlock()
}

func (ff *faultyFile) Datasync() error {
	ff.fs.record("datasync")
	if ff.fault.FailOnSync {
		return ff.fault.Err
	}
	return Datasync(ff.File)
}

func (ff *faultyFile) Sync() error {
	ff.fs.record("sync")
	if ff.fault.FailOnSync {
		return ff.fault.Err
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	ff.fs.record("close")
	if ff.fault.FailOnClose {
		ff.File.Close()
		return ff.fault.Err
	}
	return ff.File.Close()
}
