package manifest

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainManifest is the domain prefix for manifest content hashes.
// Version suffix enables future algorithm migration.
const DomainManifest = "pinset/manifest/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed identity of a manifest over its
// canonical rendering. Two manifests that differ only in constraint
// spacing or annotation padding hash identically; manifests whose
// declarations differ, or appear in a different order, do not.
func (m *Manifest) Hash() string {
	return hashWithDomain(DomainManifest, m.Canonical())
}
