package crypto

import (
	"bytes"
	"testing"
)

func FuzzStreamCipherRoundTrip(f *testing.F) {
	f.Add(bytes.Repeat([]byte{1}, 32), []byte("0123456789abcdef"), uint64(0), uint64(2))
	f.Add([]byte{0xff}, make([]byte, 16), ^uint64(0), uint64(1))

	f.Fuzz(func(t *testing.T, secret []byte, nonceBytes []byte, a uint64, b uint64) {
		if len(secret) == 0 || len(nonceBytes) < 16 {
			t.Skip()
		}
		var nonce [16]byte
		copy(nonce[:], nonceBytes)

		c := StreamCipher{}
		blocks, err := c.Encrypt(NewSharedKey(secret), nonce, []uint64{a, b})
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}

		// Invariant 1: one block per plaintext value
		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2", len(blocks))
		}

		// Invariant 2: decryption recovers the plaintext
		out, err := c.Decrypt(NewSharedKey(secret), nonce, blocks)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if out[0] != a || out[1] != b {
			t.Fatalf("round trip mismatch: got %v, want [%d %d]", out, a, b)
		}

		// Invariant 3: a different nonce yields different ciphertext
		nonce[0] ^= 0xff
		other, err := c.Encrypt(NewSharedKey(secret), nonce, []uint64{a, b})
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		if other[0] == blocks[0] {
			t.Error("ciphertext did not change with the nonce")
		}
	})
}

func FuzzXorInplace(f *testing.F) {
	f.Add([]byte{0}, []byte{0})
	f.Add([]byte{1, 2, 3}, []byte{4, 5, 6})

	f.Fuzz(func(t *testing.T, a, b []byte) {
		if len(a) != len(b) || len(a) == 0 {
			t.Skip()
		}
		orig := bytes.Clone(a)

		// Invariant: XOR twice restores the original
		XorInplace(a, b)
		XorInplace(a, b)
		if !bytes.Equal(a, orig) {
			t.Error("double XOR did not restore original")
		}
	})
}
