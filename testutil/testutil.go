package testutil

import (
	"math/rand"
	"sync"
)

// keyAlphabet deliberately includes path separators and dots.
const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789/._-+= "

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Key returns a random printable key of length n.
func (r *RNG) Key(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keyLocked(n)
}

func (r *RNG) keyLocked(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = keyAlphabet[r.rand.Intn(len(keyAlphabet))]
	}
	return string(b)
}

// Bytes returns n random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	r.rand.Read(b)
	return b
}

// Pair is a generated key/value pair.
type Pair struct {
	Key   string
	Value []byte
}

// Pairs returns num pairs with distinct keys of length in [1, maxKey] and
// values of length in [0, maxValue].
func (r *RNG) Pairs(num, maxKey, maxValue int) []Pair {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, num)
	pairs := make([]Pair, 0, num)
	for len(pairs) < num {
		key := r.keyLocked(1 + r.rand.Intn(maxKey))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		value := make([]byte, r.rand.Intn(maxValue+1))
		r.rand.Read(value)
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs
}
