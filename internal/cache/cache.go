// Package cache provides memory, disk, and layered caching for embedding
// vectors. Keys are content hashes, so identical text always maps to the
// same cached vector regardless of length.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from arbitrary content
func Key(content string) string {
	hash := sha256.Sum256([]byte(content))
	return "normlens:v1:" + hex.EncodeToString(hash[:])
}
