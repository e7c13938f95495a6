package confidential

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flashbots/arcpoll/crypto"
	"github.com/stretchr/testify/require"
)

type failingKeys struct {
	calls atomic.Int32
}

func (f *failingKeys) FetchKey(ctx context.Context) (crypto.KemPublicKey, error) {
	f.calls.Add(1)
	return crypto.KemPublicKey{}, errors.New("rpc timeout")
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) { return 0, errors.New("entropy exhausted") }

func fastRetry() Option {
	return WithRetryPolicy(RetryPolicy{Attempts: 5, Delay: time.Millisecond})
}

func TestParseSelection(t *testing.T) {
	for input, want := range map[string]uint64{
		"Yes, absolutely":  0,
		"No, not really":   1,
		"I'm not sure yet": 2,
		"yes":              0,
		"NO":               1,
		" maybe ":          2,
		"2":                2,
		"Y":                0,
		"n":                1,
		"m":                2,
	} {
		got, err := ParseSelection(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "3", "absolutely", "-1"} {
		_, err := ParseSelection(input)
		require.ErrorIs(t, err, ErrUnknownOption, input)
	}
}

func TestEncryptVoteRealMode(t *testing.T) {
	coordPub, coordPriv, err := crypto.GenerateKemKeyPair()
	require.NoError(t, err)

	enc := NewEncryptor(&StaticKeySource{Key: coordPub})
	payload, err := enc.EncryptVote(context.Background(), "I'm not sure yet")
	require.NoError(t, err)
	require.Equal(t, ModeReal, payload.Mode)
	require.Equal(t, uint64(2), payload.OptionIndex)
	require.Len(t, payload.Ciphertext, 1)

	// The coordinator recovers the option from its side of the agreement.
	secret, err := crypto.SharedSecret(coordPriv, payload.SenderPublicKey)
	require.NoError(t, err)
	plain, err := crypto.StreamCipher{}.Decrypt(secret, payload.Nonce, payload.Ciphertext)
	require.NoError(t, err)
	require.Equal(t, []uint64{2}, plain)
}

func TestEncryptVoteFallsBackWhenKeyFetchFails(t *testing.T) {
	keys := &failingKeys{}
	var logs bytes.Buffer

	enc := NewEncryptor(keys, fastRetry(), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	payload, err := enc.EncryptVote(context.Background(), "yes")
	require.NoError(t, err)

	require.Equal(t, ModeFallback, payload.Mode)
	require.Equal(t, int32(5), keys.calls.Load())
	require.Len(t, payload.Ciphertext, 1)
	require.False(t, payload.SenderPublicKey.IsZero())
	require.Contains(t, logs.String(), "fallback")
	require.Regexp(t, `key=[0-9a-f]{8}`, logs.String())

	ct, key, nonce := payload.VoteFields()
	require.Len(t, ct, 32)
	require.Len(t, key, 32)
	require.Len(t, nonce, 16)
}

func TestEncryptVoteWithoutKeySource(t *testing.T) {
	payload, err := NewEncryptor(nil).EncryptVote(context.Background(), "no")
	require.NoError(t, err)
	require.Equal(t, ModeFallback, payload.Mode)
}

func TestEncryptVoteCancelledRetryFallsBack(t *testing.T) {
	keys := &failingKeys{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enc := NewEncryptor(keys, WithRetryPolicy(RetryPolicy{Attempts: 5, Delay: time.Hour}))
	payload, err := enc.EncryptVote(ctx, "yes")
	require.NoError(t, err)
	require.Equal(t, ModeFallback, payload.Mode)
	require.Equal(t, int32(1), keys.calls.Load())
}

func TestEncryptVoteRejectsUnknownOption(t *testing.T) {
	keys := &failingKeys{}
	_, err := NewEncryptor(keys).EncryptVote(context.Background(), "perhaps")
	require.ErrorIs(t, err, ErrUnknownOption)
	require.Zero(t, keys.calls.Load())
}

func TestEncryptVoteRandomnessFailure(t *testing.T) {
	_, err := NewEncryptor(nil, WithRand(failingReader{})).EncryptVote(context.Background(), "yes")
	require.ErrorIs(t, err, crypto.ErrRandomnessUnavailable)
}

func TestEncryptVoteFreshKeysPerCall(t *testing.T) {
	enc := NewEncryptor(nil)
	a, err := enc.EncryptVote(context.Background(), "yes")
	require.NoError(t, err)
	b, err := enc.EncryptVote(context.Background(), "yes")
	require.NoError(t, err)

	require.NotEqual(t, a.SenderPublicKey, b.SenderPublicKey)
	require.NotEqual(t, a.Nonce, b.Nonce)
	require.NotEqual(t, a.Ciphertext, b.Ciphertext)
}
