// Package crypto provides the cryptographic primitives behind confidential votes.
//
// The package covers:
//
//   - X25519 key pairs and raw key agreement (SharedSecret) used to share a
//     secret with the confidential-compute coordinator
//   - The Cipher capability that turns a shared secret, a 16-byte nonce and a
//     sequence of integers into 32-byte ciphertext blocks, with StreamCipher
//     as the local implementation
//   - IDGenerator, which draws the random computation offsets and nonces that
//     correlate on-chain instructions with off-chain computations
//
// # Randomness
//
// All randomness comes from an io.Reader that defaults to crypto/rand.
// A failing reader surfaces as ErrRandomnessUnavailable; nothing here retries.
//
// # Ciphers
//
// The coordinator's production cipher is an external capability. StreamCipher
// has the same shape (one 32-byte block per plaintext value) so the rest of
// the system can be exercised end to end without it.
package crypto
