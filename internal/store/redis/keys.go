package redis

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// KeyPrefixIdentity is the prefix for normalized id -> profile entries
	KeyPrefixIdentity = "bookhub:identity:"
	// KeyPrefixLink is the prefix for cached link statuses
	KeyPrefixLink = "bookhub:link:"
)

// IdentityKey returns the Redis key for a normalized user ID
func IdentityKey(id string) string {
	return KeyPrefixIdentity + id
}

// LinkKey returns the Redis key for a URL. URLs are hashed to keep keys bounded.
func LinkKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return KeyPrefixLink + hex.EncodeToString(sum[:16])
}
