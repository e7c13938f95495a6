package confidential

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/flashbots/arcpoll/crypto"
)

// Mode records whether a payload is readable by the coordinator.
type Mode string

const (
	// ModeReal payloads are keyed against the coordinator's public key.
	ModeReal Mode = "real"
	// ModeFallback payloads are keyed against a throwaway key and will not
	// decrypt on the cluster. They are still well-formed.
	ModeFallback Mode = "fallback"
)

// RetryPolicy bounds remote key retrieval.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy tries five times, 800ms apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, Delay: 800 * time.Millisecond}
}

// EncryptedPayload is one encrypted ballot. It is built per vote and never stored.
type EncryptedPayload struct {
	Ciphertext      [][crypto.BlockSize]byte
	Nonce           [16]byte
	SenderPublicKey crypto.KemPublicKey
	Mode            Mode
	OptionIndex     uint64
}

// VoteFields returns the ciphertext block, sender key and nonce in the form
// the vote instruction takes them.
func (p *EncryptedPayload) VoteFields() (ciphertext, senderKey, nonce []byte) {
	var first [crypto.BlockSize]byte
	if len(p.Ciphertext) > 0 {
		first = p.Ciphertext[0]
	}
	return first[:], p.SenderPublicKey[:], p.Nonce[:]
}

// Base64Fields is VoteFields, base64 encoded.
func (p *EncryptedPayload) Base64Fields() (ciphertext, senderKey, nonce string) {
	c, k, n := p.VoteFields()
	enc := base64.StdEncoding.EncodeToString
	return enc(c), enc(k), enc(n)
}

// Encryptor produces encrypted ballots.
type Encryptor struct {
	keys   KeySource
	cipher crypto.Cipher
	retry  RetryPolicy
	rand   io.Reader
	log    *slog.Logger
}

// Option customizes an Encryptor.
type Option func(*Encryptor)

// WithCipher replaces the default stream cipher.
func WithCipher(c crypto.Cipher) Option {
	return func(e *Encryptor) { e.cipher = c }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(e *Encryptor) { e.retry = p }
}

// WithRand replaces crypto/rand for keys and nonces.
func WithRand(r io.Reader) Option {
	return func(e *Encryptor) { e.rand = r }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(log *slog.Logger) Option {
	return func(e *Encryptor) { e.log = log }
}

// NewEncryptor returns an encryptor keyed against keys. A nil keys source
// always produces fallback payloads.
func NewEncryptor(keys KeySource, opts ...Option) *Encryptor {
	e := &Encryptor{
		keys:   keys,
		cipher: crypto.StreamCipher{},
		retry:  DefaultRetryPolicy(),
		rand:   rand.Reader,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EncryptVote encrypts the option named by selection.
func (e *Encryptor) EncryptVote(ctx context.Context, selection string) (*EncryptedPayload, error) {
	index, err := ParseSelection(selection)
	if err != nil {
		return nil, err
	}
	return e.EncryptOption(ctx, index)
}

// EncryptOption encrypts an option index. Remote key failures select
// fallback mode and are never returned; randomness and cipher failures are.
func (e *Encryptor) EncryptOption(ctx context.Context, index uint64) (*EncryptedPayload, error) {
	senderPub, senderPriv, err := crypto.GenerateKemKeyPairFrom(e.rand)
	if err != nil {
		return nil, err
	}
	nonce, err := (&crypto.IDGenerator{Rand: e.rand}).RandomNonce()
	if err != nil {
		return nil, err
	}

	mode := ModeReal
	secret, err := e.remoteSecret(ctx, senderPriv)
	if err != nil {
		mode = ModeFallback
		keyErr := err
		secret, err = e.fallbackSecret(senderPriv)
		if err != nil {
			return nil, err
		}
		e.log.Warn("coordinator key unavailable, encrypting in fallback mode",
			"err", keyErr, "key", secret.Fingerprint())
	}

	blocks, err := e.cipher.Encrypt(secret, nonce, []uint64{index})
	if err != nil {
		return nil, fmt.Errorf("encrypting vote: %w", err)
	}

	return &EncryptedPayload{
		Ciphertext:      blocks,
		Nonce:           nonce,
		SenderPublicKey: senderPub,
		Mode:            mode,
		OptionIndex:     index,
	}, nil
}

func (e *Encryptor) remoteSecret(ctx context.Context, senderPriv crypto.KemPrivateKey) (crypto.SharedKey, error) {
	if e.keys == nil {
		return nil, fmt.Errorf("%w: no key source configured", ErrKeyUnavailable)
	}
	remote, err := e.fetchWithRetry(ctx)
	if err != nil {
		return nil, err
	}
	return crypto.SharedSecret(senderPriv, remote)
}

// fallbackSecret agrees against a fresh ephemeral key nobody retains.
func (e *Encryptor) fallbackSecret(senderPriv crypto.KemPrivateKey) (crypto.SharedKey, error) {
	peer, _, err := crypto.GenerateKemKeyPairFrom(e.rand)
	if err != nil {
		return nil, err
	}
	return crypto.SharedSecret(senderPriv, peer)
}

func (e *Encryptor) fetchWithRetry(ctx context.Context) (crypto.KemPublicKey, error) {
	attempts := e.retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		key, err := e.keys.FetchKey(ctx)
		if err == nil && !key.IsZero() {
			return key, nil
		}
		if err == nil {
			err = ErrKeyUnavailable
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return crypto.KemPublicKey{}, ctx.Err()
		case <-time.After(e.retry.Delay):
		}
	}
	return crypto.KemPublicKey{}, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
