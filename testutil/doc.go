// Package testutil provides testing utilities for stablestore.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG for generating keys and values.
//
//	rng := testutil.NewRNG(seed)
//	key := rng.Key(32)        // printable key, may contain '/'
//	val := rng.Bytes(1024)    // random value bytes
//	pairs := rng.Pairs(100, 64, 4096)
package testutil
