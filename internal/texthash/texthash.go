// Package texthash derives stable cache keys from text content.
// The analysis cache and the search cache both key on this digest;
// identical content always hashes identically, and any edit to the
// underlying text makes old entries unreachable (not deleted).
package texthash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the lowercase hex SHA-256 digest of text.
func Sum(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
