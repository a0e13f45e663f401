package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a stage cache key of the form "<stage>:<digest>". The
// digest covers the diagram hash together with the stage options, so any
// option change yields a fresh key. The stage prefix doubles as the
// namespace the file backend uses for its directory layout.
func hashKey(stage string, parts ...any) string {
	payload, _ := json.Marshal(parts)
	sum := sha256.Sum256(payload)
	return stage + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 digest of data. The pipeline uses it to
// fingerprint a diagram's canonical JSON encoding; the digest feeds the
// stage keys above and is reported back as the result's diagram hash.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
