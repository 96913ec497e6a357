package manifest

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashManifest computes the SHA-256 digest of the raw manifest bytes as
// lowercase hex. The digest is anchored on the ledger as the batch content
// fingerprint and persisted on the Upload record so byte-identical
// resubmissions are detectable.
func HashManifest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
