package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// BlockSize is the size of one ciphertext block. Each plaintext value
// occupies exactly one block.
const BlockSize = 32

var (
	// ErrEmptySecret is returned when a cipher is keyed with no shared secret.
	ErrEmptySecret = errors.New("empty shared secret")

	// ErrMalformedBlock is returned when a decrypted block carries non-zero padding.
	ErrMalformedBlock = errors.New("malformed ciphertext block")
)

// Cipher encrypts a sequence of integers under an X25519 shared secret.
// The vote program's coordinator supplies the production implementation;
// this package ships StreamCipher for local use and tests.
type Cipher interface {
	Encrypt(secret SharedKey, nonce [16]byte, plaintext []uint64) ([][BlockSize]byte, error)
}

// StreamCipher is a ChaCha20 block stream keyed by HKDF over SHA3-256.
// Every plaintext value is laid out little-endian in a zero-padded 32-byte
// block and XORed with the keystream.
type StreamCipher struct {
	// Info is the HKDF context string; empty means DefaultCipherInfo.
	Info []byte
}

// DefaultCipherInfo domain-separates vote encryption keys.
var DefaultCipherInfo = []byte("arcpoll-vote-cipher-v1")

func (c StreamCipher) keystream(secret SharedKey, nonce [16]byte, nBlocks int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	info := c.Info
	if len(info) == 0 {
		info = DefaultCipherInfo
	}

	kdf := hkdf.New(sha3.New256, secret, nonce[:], info)
	material := make([]byte, chacha20.KeySize+chacha20.NonceSize)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}

	stream, err := chacha20.NewUnauthenticatedCipher(material[:chacha20.KeySize], material[chacha20.KeySize:])
	if err != nil {
		return nil, fmt.Errorf("chacha20: %w", err)
	}

	ks := make([]byte, nBlocks*BlockSize)
	stream.XORKeyStream(ks, ks)
	return ks, nil
}

// Encrypt implements Cipher.
func (c StreamCipher) Encrypt(secret SharedKey, nonce [16]byte, plaintext []uint64) ([][BlockSize]byte, error) {
	ks, err := c.keystream(secret, nonce, len(plaintext))
	if err != nil {
		return nil, err
	}

	out := make([][BlockSize]byte, len(plaintext))
	for i, v := range plaintext {
		binary.LittleEndian.PutUint64(out[i][:8], v)
		XorInplace(out[i][:], ks[i*BlockSize:(i+1)*BlockSize])
	}
	return out, nil
}

// Decrypt reverses Encrypt.
func (c StreamCipher) Decrypt(secret SharedKey, nonce [16]byte, blocks [][BlockSize]byte) ([]uint64, error) {
	ks, err := c.keystream(secret, nonce, len(blocks))
	if err != nil {
		return nil, err
	}

	out := make([]uint64, len(blocks))
	for i := range blocks {
		block := blocks[i]
		XorInplace(block[:], ks[i*BlockSize:(i+1)*BlockSize])
		for _, b := range block[8:] {
			if b != 0 {
				return nil, fmt.Errorf("%w: block %d", ErrMalformedBlock, i)
			}
		}
		out[i] = binary.LittleEndian.Uint64(block[:8])
	}
	return out, nil
}

// XorInplace XORs r into l. Both slices must have the same length.
func XorInplace(l []byte, r []byte) {
	if len(l) != len(r) {
		panic("xor: length mismatch")
	}
	for i := range r {
		l[i] ^= r[i]
	}
}

func keyFingerprint(b []byte) [32]byte {
	return sha3.Sum256(b)
}
