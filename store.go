package stablestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/stablestore/internal/durable"
	"github.com/hupe1980/stablestore/internal/fs"
	"github.com/hupe1980/stablestore/internal/keyenc"
	"github.com/hupe1980/stablestore/internal/keylock"
	"github.com/hupe1980/stablestore/resource"
)

const (
	// MaxKeyLen is the maximum key length in bytes.
	MaxKeyLen = 255

	// MaxValueLen is the maximum value length in bytes.
	MaxValueLen = 65535

	// TempSuffix marks staging files written during Put.
	TempSuffix = ".tmp"

	// DataSuffix marks committed data files.
	DataSuffix = ".data"
)

// StableStorage is a durable key-value map.
type StableStorage interface {
	// Put durably stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, if any.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Remove deletes key and reports whether a value was removed.
	Remove(ctx context.Context, key string) bool
}

var _ StableStorage = (*Store)(nil)

// Store is a StableStorage backed by a single filesystem directory.
//
// Each key is stored in its own file named after the key digest. Operations
// on distinct keys are independent and safe for concurrent use. Unless the
// store was opened WithKeyLocking, callers must serialize Put and Remove on
// the same key.
type Store struct {
	root    string
	fs      fs.FileSystem
	writer  *durable.Writer
	locks   *keylock.Map // nil unless WithKeyLocking
	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector
}

// Open returns a Store rooted at root.
//
// root must already exist and be a directory; Open never creates it.
func Open(root string, optFns ...Option) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty root directory", ErrInvalidArgument)
	}

	o := applyOptions(optFns)

	info, err := o.fs.Stat(root)
	if err != nil {
		return nil, &IOError{Op: "stat", Path: root, cause: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidArgument, root)
	}

	s := &Store{
		root:    root,
		fs:      o.fs,
		writer:  durable.NewWriter(o.fs, root),
		rc:      o.resourceController,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
	if o.keyLocking {
		s.locks = keylock.New()
	}
	return s, nil
}

// Root returns the storage directory.
func (s *Store) Root() string { return s.root }

// DataPath returns the path of the data file that holds key.
func (s *Store) DataPath(key string) string {
	_, dataPath := s.paths(keyenc.Encode(key))
	return dataPath
}

func (s *Store) paths(digest string) (tempPath, dataPath string) {
	return filepath.Join(s.root, digest+TempSuffix), filepath.Join(s.root, digest+DataSuffix)
}

// Put durably stores value under key.
//
// Once Put returns nil the value survives a crash. If the process crashes
// while Put is running, a later Get returns either the previous value (or
// nothing) or the complete new value.
//
// Put fails with an *InvalidArgumentError if key or value exceeds its bound,
// before any IO, and with an *IOError if any filesystem step fails.
func (s *Store) Put(ctx context.Context, key string, value []byte) (err error) {
	if len(key) > MaxKeyLen {
		return &InvalidArgumentError{Field: "key", Len: len(key), Max: MaxKeyLen}
	}
	if len(value) > MaxValueLen {
		return &InvalidArgumentError{Field: "value", Len: len(value), Max: MaxValueLen}
	}

	digest := keyenc.Encode(key)
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		s.metrics.RecordPut(len(value), elapsed, err)
		s.logger.LogPut(ctx, digest, len(value), elapsed, err)
	}()

	release, err := s.admit(ctx, len(value))
	if err != nil {
		return err
	}
	defer release()

	if s.locks != nil {
		unlock := s.locks.Lock(digest)
		defer unlock()
	}

	tempPath, dataPath := s.paths(digest)
	return translateError(s.writer.Commit(tempPath, dataPath, value))
}

// Get returns the value stored under key.
//
// A key that was never stored and a data file that cannot be read are both
// reported as absent; read failures are logged.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if len(key) > MaxKeyLen {
		return nil, false
	}

	digest := keyenc.Encode(key)
	start := time.Now()

	release, err := s.admit(ctx, 0)
	if err != nil {
		s.logger.LogGet(ctx, digest, false, err)
		s.metrics.RecordGet(false, time.Since(start))
		return nil, false
	}
	defer release()

	_, dataPath := s.paths(digest)
	data, err := fs.ReadFile(s.fs, dataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		s.logger.LogGet(ctx, digest, false, err)
		s.metrics.RecordGet(false, time.Since(start))
		return nil, false
	}

	s.logger.LogGet(ctx, digest, true, nil)
	s.metrics.RecordGet(true, time.Since(start))
	return data, true
}

// Remove deletes the value stored under key.
//
// It reports whether a data file existed and was deleted. Failures are
// logged, never returned, and never retried.
func (s *Store) Remove(ctx context.Context, key string) bool {
	if len(key) > MaxKeyLen {
		return false
	}

	digest := keyenc.Encode(key)
	start := time.Now()

	release, err := s.admit(ctx, 0)
	if err != nil {
		s.logger.LogRemove(ctx, digest, false, err)
		s.metrics.RecordRemove(false, time.Since(start))
		return false
	}
	defer release()

	if s.locks != nil {
		unlock := s.locks.Lock(digest)
		defer unlock()
	}

	_, dataPath := s.paths(digest)
	removed, err := s.writer.Remove(dataPath)
	s.logger.LogRemove(ctx, digest, removed, translateError(err))
	s.metrics.RecordRemove(removed, time.Since(start))
	return removed
}

// SweepTemp removes temp files left behind by a crash during Put.
//
// Only files named <digest>.tmp are touched. It must not run concurrently
// with Put. It returns the number of files removed.
func (s *Store) SweepTemp(ctx context.Context) (int, error) {
	n, err := s.writer.Sweep(TempSuffix, keyenc.Valid)
	err = translateError(err)
	s.logger.LogSweep(ctx, n, err)
	return n, err
}

func (s *Store) admit(ctx context.Context, writeBytes int) (release func(), err error) {
	if err := s.rc.AcquireOp(ctx); err != nil {
		return nil, err
	}
	if err := s.rc.AcquireIO(ctx, writeBytes); err != nil {
		s.rc.ReleaseOp()
		return nil, err
	}
	return s.rc.ReleaseOp, nil
}
