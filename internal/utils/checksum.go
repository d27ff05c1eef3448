package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gowebpki/jcs"
)

// CanonicalizeJSON returns the RFC 8785 (JCS) canonical form of a JSON document
func CanonicalizeJSON(data []byte) ([]byte, error) {
	return jcs.Transform(data)
}

// DigestJSON returns the sha256 hex digest of the canonical form of a JSON
// document. Formatting differences do not change the digest.
func DigestJSON(data []byte) (string, error) {
	canonical, err := CanonicalizeJSON(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
