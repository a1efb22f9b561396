// Package keyenc maps arbitrary keys onto flat, filesystem-safe file name stems.
//
// A stem is the standard base64 encoding of SHA-256(key) with every path
// separator removed. Keys never reach the filesystem verbatim, so a key such
// as "../../etc/passwd" cannot escape the storage root.
package keyenc

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// MaxLen is the maximum length of an encoded stem: the padded base64 length
// of a SHA-256 sum.
const MaxLen = (sha256.Size + 2) / 3 * 4

// Encode returns the file name stem for key.
func Encode(key string) string {
	sum := sha256.Sum256([]byte(key))
	return sanitize(base64.StdEncoding.EncodeToString(sum[:]))
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return -1
		}
		return r
	}, s)
}

// MinLen is the shortest stem Valid accepts. An encoded digest loses one
// character per stripped '/', and a SHA-256 sum whose encoding holds more than
// MaxLen-MinLen slashes is too unlikely to matter. A temp file for such a key
// is left in place by a sweep.
const MinLen = MaxLen - 12

// lastSymbols are the base64 symbols that can precede the pad of a 32-byte
// encoding. The final symbol carries 4 data bits and 2 zero bits, so it is
// never '/' and is never stripped.
const lastSymbols = "AEIMQUYcgkosw048"

// Valid reports whether stem has the shape of an Encode result: MinLen to
// MaxLen characters from [A-Za-z0-9+], a symbol from lastSymbols, and a single
// trailing '='.
func Valid(stem string) bool {
	if len(stem) < MinLen || len(stem) > MaxLen {
		return false
	}
	body, ok := strings.CutSuffix(stem, "=")
	if !ok || !strings.ContainsRune(lastSymbols, rune(body[len(body)-1])) {
		return false
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+':
		default:
			return false
		}
	}
	return true
}
