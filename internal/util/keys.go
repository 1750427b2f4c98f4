package util

import (
	"crypto/sha256"
	"fmt"
)

// StoreKey returns the storage key for a normalized query text: a fixed
// prefix plus a short hash. SQL text can be arbitrarily long and contain
// characters some byte stores dislike in keys; the hash keeps keys short and
// uniform. Collisions are caught by the wire envelope, which embeds the full
// text.
func StoreKey(prefix, normalizedText string) string {
	sum := sha256.Sum256([]byte(normalizedText))
	return fmt.Sprintf("%s:%x", prefix, sum[:8])
}
