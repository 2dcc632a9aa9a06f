// Package plumbing holds the low-level value types shared across the
// object store, diff and blame packages.
package plumbing

import (
	"bytes"
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"
)

// HashSize is the width in bytes of a content address.
const HashSize = 32

// Hash is a BLAKE3 content address identifying a commit, tree or blob.
type Hash [HashSize]byte

// ZeroHash is the Hash with all-zero bytes, used to mark buffer-blame
// hunks that were never attributed to a stored commit.
var ZeroHash Hash

// NewHash decodes a hex string into a Hash. Malformed input decodes to
// whatever hex.Decode manages to fill before failing, same as the
// teacher's tolerant constructor.
func NewHash(s string) Hash {
	b, _ := hex.DecodeString(s)
	var h Hash
	copy(h[:], b)
	return h
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String renders h as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Less orders hashes lexicographically by their byte representation.
func (h Hash) Less(o Hash) bool {
	return bytes.Compare(h[:], o[:]) < 0
}

// HashesSort sorts a slice of Hash values in increasing order.
func HashesSort(hs []Hash) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Less(hs[j]) })
}

// Hasher computes a content Hash incrementally.
type Hasher struct {
	h *blake3.Hasher
}

// NewHasher returns a ready-to-use Hasher.
func NewHasher() Hasher {
	return Hasher{h: blake3.New()}
}

// Write implements io.Writer.
func (h Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum returns the Hash of everything written so far.
func (h Hasher) Sum() (out Hash) {
	copy(out[:], h.h.Sum(nil))
	return out
}

// HashOf is a convenience wrapper that hashes a single byte slice.
func HashOf(kind string, data []byte) Hash {
	h := NewHasher()
	_, _ = h.Write([]byte(kind))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(data)
	return h.Sum()
}
