// Package determinism provides primitives for reproducible output: content
// hashes over canonical JSON and sorted iteration over maps.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// HashJSON hashes the JSON encoding of v. encoding/json sorts map keys and
// emits struct fields in declaration order, so equal values hash equally.
func HashJSON(v any) (ContentHash, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return ContentHash{}, err
	}
	return ComputeHash(data), nil
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, enough for logs
func (h ContentHash) Short() string {
	return h.Hex()[:12]
}

// IsZero reports whether the hash was never computed
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Short() + "..."
}

// MarshalText encodes the hash as hex
func (h ContentHash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText decodes a hex hash
func (h *ContentHash) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*h = ContentHash{}
		return nil
	}
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	copy(h[:], raw)
	return nil
}

// SortedKeys returns the keys of a string-keyed map in ascending order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RangeMapSorted iterates over a map in sorted key order
func RangeMapSorted[V any](m map[string]V, fn func(string, V) bool) {
	for _, k := range SortedKeys(m) {
		if !fn(k, m[k]) {
			break
		}
	}
}
