package crypto

import (
	"encoding/hex"
	"slices"
)

// SharedKey represents an X25519 shared secret.
// Security: must always be derived from, never used as a cipher key as-is.
type SharedKey []byte

// NewSharedKey creates a SharedKey from a byte slice.
// This function makes a copy of the input data to ensure immutability.
func NewSharedKey(data []byte) SharedKey {
	sk := make([]byte, len(data))
	copy(sk, data)
	return SharedKey(sk)
}

// Bytes returns a copy of the shared key.
func (sk SharedKey) Bytes() []byte {
	return slices.Clone(sk)
}

// Fingerprint returns a short hex prefix that identifies the key in logs
// without revealing it.
func (sk SharedKey) Fingerprint() string {
	if len(sk) == 0 {
		return ""
	}
	sum := keyFingerprint(sk)
	return hex.EncodeToString(sum[:4])
}
