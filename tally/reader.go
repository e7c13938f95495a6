package tally

import (
	"context"

	"github.com/flashbots/arcpoll/ledger"
	"github.com/gagliardetto/solana-go"
)

// Reader recovers tallies through a ledger transport. Transport errors are
// returned unchanged.
type Reader struct {
	transport ledger.Transport
	decoder   *Decoder
}

// NewReader returns a reader decoding with decoder.
func NewReader(transport ledger.Transport, decoder *Decoder) *Reader {
	return &Reader{transport: transport, decoder: decoder}
}

// FromTransaction decodes the logs of a reveal callback transaction.
func (r *Reader) FromTransaction(ctx context.Context, sig solana.Signature) (Reading, error) {
	lines, err := r.transport.TransactionLogs(ctx, sig)
	if err != nil {
		return Reading{}, err
	}
	return r.decoder.Best(lines)
}

// FromAccount reads the counters stored in a poll account.
func (r *Reader) FromAccount(ctx context.Context, poll solana.PublicKey) (Tally, error) {
	data, err := r.transport.AccountData(ctx, poll)
	if err != nil {
		return Tally{}, err
	}
	return FromPollAccount(data)
}

// Logs returns the raw log lines of a transaction.
func (r *Reader) Logs(ctx context.Context, sig solana.Signature) ([]string, error) {
	return r.transport.TransactionLogs(ctx, sig)
}
