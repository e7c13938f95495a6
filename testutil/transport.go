package testutil

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// FakeTransport is an in-memory ledger transport. Setting one of the *Err
// fields makes the matching call fail with that error.
type FakeTransport struct {
	mu sync.Mutex

	Blockhash solana.Hash
	Accounts  map[solana.PublicKey][]byte
	Logs      map[solana.Signature][]string
	Submitted [][]byte

	BlockhashErr error
	AccountErr   error
	LogsErr      error
	SubmitErr    error

	AccountCalls int
}

// TransportOption customizes a FakeTransport.
type TransportOption func(*FakeTransport)

// WithAccount stores account data.
func WithAccount(key solana.PublicKey, data []byte) TransportOption {
	return func(f *FakeTransport) { f.Accounts[key] = data }
}

// WithLogs stores the logs of a transaction.
func WithLogs(sig solana.Signature, lines ...string) TransportOption {
	return func(f *FakeTransport) { f.Logs[sig] = lines }
}

// WithBlockhash sets the blockhash returned by LatestBlockhash.
func WithBlockhash(h solana.Hash) TransportOption {
	return func(f *FakeTransport) { f.Blockhash = h }
}

// NewFakeTransport returns an empty transport with a fixed non-zero blockhash.
func NewFakeTransport(opts ...TransportOption) *FakeTransport {
	f := &FakeTransport{
		Blockhash: solana.HashFromBytes(sha256Bytes("blockhash")),
		Accounts:  make(map[solana.PublicKey][]byte),
		Logs:      make(map[solana.Signature][]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FakeTransport) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BlockhashErr != nil {
		return solana.Hash{}, f.BlockhashErr
	}
	return f.Blockhash, nil
}

func (f *FakeTransport) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AccountCalls++
	if f.AccountErr != nil {
		return nil, f.AccountErr
	}
	data, ok := f.Accounts[account]
	if !ok {
		return nil, fmt.Errorf("account %s not found", account)
	}
	return data, nil
}

func (f *FakeTransport) TransactionLogs(ctx context.Context, sig solana.Signature) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LogsErr != nil {
		return nil, f.LogsErr
	}
	lines, ok := f.Logs[sig]
	if !ok {
		return nil, fmt.Errorf("transaction %s not found", sig)
	}
	return lines, nil
}

func (f *FakeTransport) Submit(ctx context.Context, raw []byte) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return solana.Signature{}, f.SubmitErr
	}
	f.Submitted = append(f.Submitted, raw)
	return SignatureFor(raw), nil
}

// SignatureFor returns a deterministic signature derived from data.
func SignatureFor(data []byte) solana.Signature {
	var sig solana.Signature
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	copy(sig[:32], first[:])
	copy(sig[32:], second[:])
	return sig
}

func sha256Bytes(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}
