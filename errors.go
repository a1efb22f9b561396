package stablestore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/stablestore/internal/durable"
)

var (
	// ErrInvalidArgument is returned when a key, value or root path is rejected
	// before any IO takes place.
	ErrInvalidArgument = errors.New("stablestore: invalid argument")

	// ErrIO is returned when the filesystem fails during an operation.
	ErrIO = errors.New("stablestore: I/O failure")
)

// InvalidArgumentError reports a key or value exceeding its size bound.
//
// It satisfies errors.Is(err, ErrInvalidArgument).
type InvalidArgumentError struct {
	Field string // "key" or "value"
	Len   int
	Max   int
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("stablestore: %s length %d exceeds maximum %d", e.Field, e.Len, e.Max)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// IOError reports a filesystem failure at a given step of an operation.
//
// It satisfies errors.Is(err, ErrIO). The original underlying error can be
// accessed via errors.Unwrap.
type IOError struct {
	Op    string // step of the durability sequence, e.g. "datasync" or "rename"
	Path  string
	cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("stablestore: %s %s: %v", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

func (e *IOError) Is(target error) bool { return target == ErrIO }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var de *durable.Error
	if errors.As(err, &de) {
		return &IOError{Op: de.Op, Path: de.Path, cause: de.Err}
	}

	return err
}
