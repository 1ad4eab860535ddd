// Package hash wraps xxHash64 for the codec's one internal hashing need:
// interning repeated dictionary-variable bytes within a single
// EncodeCLPString call.
package hash

import "github.com/cespare/xxhash/v2"

// Bytes computes the xxHash64 of data.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
