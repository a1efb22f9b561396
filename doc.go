// Package stablestore provides a durable key-value blob store on top of a
// plain filesystem directory.
//
// It is meant as the persistence layer of a larger fault-tolerant service,
// such as a replicated state machine that must not lose small values across
// process crashes or power loss.
//
// # Quick Start
//
//	st, err := stablestore.Open("/var/lib/node/stable")
//	if err != nil {
//	    return err
//	}
//	if err := st.Put(ctx, "term", []byte{0, 0, 0, 7}); err != nil {
//	    return err
//	}
//	v, ok := st.Get(ctx, "term")
//	removed := st.Remove(ctx, "term")
//
// # Durability Model
//
// Every key lives in its own file, <digest>.data, where digest is the
// base64-encoded SHA-256 of the key with path separators removed. Put stages
// the value in <digest>.tmp and commits it with:
//
//	write(tmp) -> fdatasync(tmp) -> rename(tmp, data) -> fsync(dir)
//
// A successful Put survives any later crash. A crash during Put leaves either
// the old value or the complete new value, never a torn one. Remove deletes
// the data file and flushes the directory so the key cannot reappear.
//
// # Limits
//
// Keys are at most MaxKeyLen (255) bytes and values at most MaxValueLen
// (65535) bytes. Files contain the raw value bytes and nothing else.
//
// # Errors
//
// Put returns errors matching ErrInvalidArgument or ErrIO. Get and Remove
// never fail: read errors are reported as absent and removal errors as
// false, both logged through the configured Logger.
//
// # Concurrency
//
// Operations on distinct keys may run concurrently. Two concurrent Put or
// Remove calls on the same key must be serialized by the caller, unless the
// store is opened WithKeyLocking. Run SweepTemp only while no Put is in
// flight, typically once at startup.
package stablestore
