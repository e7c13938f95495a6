// Package confidential encrypts ballots for the coordinator cluster.
//
// A ballot is encrypted under an X25519 shared secret between a fresh sender
// key and the coordinator's public key. When that key cannot be fetched the
// ballot is encrypted against a throwaway key instead and marked as fallback,
// so callers can always build a vote instruction and can tell the two apart.
package confidential
