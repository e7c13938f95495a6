package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
)

// KemPublicKey represents an X25519 public key used for vote key agreement.
type KemPublicKey [32]byte

// KemPrivateKey represents an X25519 private scalar.
type KemPrivateKey [32]byte

// ErrInvalidKemKey is returned for X25519 keys of the wrong length or encoding.
var ErrInvalidKemKey = errors.New("invalid x25519 key")

// KemPublicKeyFromBytes copies a 32-byte X25519 public key.
func KemPublicKeyFromBytes(b []byte) (KemPublicKey, error) {
	var pk KemPublicKey
	if len(b) != len(pk) {
		return pk, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKemKey, len(b), len(pk))
	}
	copy(pk[:], b)
	return pk, nil
}

// KemPublicKeyFromHex parses a hex-encoded X25519 public key.
func KemPublicKeyFromHex(s string) (KemPublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return KemPublicKey{}, fmt.Errorf("%w: %v", ErrInvalidKemKey, err)
	}
	return KemPublicKeyFromBytes(b)
}

// IsZero reports whether the key is all zero bytes, which is what an
// uninitialised key slot reads as.
func (pk KemPublicKey) IsZero() bool {
	return pk == KemPublicKey{}
}

// String returns the hex encoding of the key.
func (pk KemPublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

// GenerateKemKeyPair generates a new X25519 key pair from crypto/rand.
func GenerateKemKeyPair() (KemPublicKey, KemPrivateKey, error) {
	return GenerateKemKeyPairFrom(rand.Reader)
}

// GenerateKemKeyPairFrom generates a new X25519 key pair reading the private
// scalar from r.
func GenerateKemKeyPairFrom(r io.Reader) (KemPublicKey, KemPrivateKey, error) {
	var privKey KemPrivateKey
	var pubKey KemPublicKey

	if _, err := io.ReadFull(r, privKey[:]); err != nil {
		return pubKey, privKey, fmt.Errorf("%w: %v", ErrRandomnessUnavailable, err)
	}

	pub, err := curve25519.X25519(privKey[:], curve25519.Basepoint)
	if err != nil {
		return pubKey, privKey, err
	}
	copy(pubKey[:], pub)
	return pubKey, privKey, nil
}

// SharedSecret performs raw X25519 key agreement. The result is the shared
// curve point, not a derived key; ciphers derive their own keys from it.
// Low-order public keys are rejected.
func SharedSecret(privateKey KemPrivateKey, publicKey KemPublicKey) (SharedKey, error) {
	point, err := curve25519.X25519(privateKey[:], publicKey[:])
	if err != nil {
		return nil, fmt.Errorf("x25519: %w", err)
	}
	return SharedKey(point), nil
}
