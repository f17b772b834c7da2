package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Artifact keys are content-addressed: a network key is derived from the
// records batch hash (plus the names map, if any), and a projection key
// from the network key and the projection options. Equal inputs always map
// to the same entry; changed inputs roll the key over instead of requiring
// invalidation.

// hashKey builds a "<kind>:<digest>" key from the given components. The
// components are JSON-encoded so that option structs key on their field
// values, not their identity.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", kind, Hash(data))
}

// Hash returns the SHA-256 digest of data as a 64-character hex string.
// The full digest is kept; truncating would invite collisions between
// record batches.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
