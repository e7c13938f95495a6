package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a transaction is unknown or not yet confirmed.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Transport is the ledger access this module consumes. Implementations own
// retries and timeouts; callers propagate their errors unchanged.
type Transport interface {
	// LatestBlockhash returns a recent block reference for new transactions.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// AccountData returns the raw data of an account.
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)

	// TransactionLogs returns the log lines of a confirmed transaction.
	TransactionLogs(ctx context.Context, sig solana.Signature) ([]string, error)

	// Submit broadcasts a signed, serialized transaction.
	Submit(ctx context.Context, raw []byte) (solana.Signature, error)
}

// Signer signs serialized transaction messages.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(message []byte) (solana.Signature, error)
}

// KeypairSigner signs with an in-process private key.
type KeypairSigner struct {
	key solana.PrivateKey
}

// NewKeypairSigner wraps a private key.
func NewKeypairSigner(key solana.PrivateKey) *KeypairSigner {
	return &KeypairSigner{key: key}
}

// LoadKeypairSigner reads a solana-keygen JSON keypair file.
func LoadKeypairSigner(path string) (*KeypairSigner, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, err
	}
	return NewKeypairSigner(key), nil
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

func (s *KeypairSigner) Sign(message []byte) (solana.Signature, error) {
	return s.key.Sign(message)
}
