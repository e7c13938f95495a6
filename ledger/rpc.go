package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCTransport implements Transport over a Solana JSON-RPC endpoint.
type RPCTransport struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// NewRPCTransport connects to endpoint, reading at confirmed commitment.
func NewRPCTransport(endpoint string) *RPCTransport {
	return &RPCTransport{
		client:     rpc.New(endpoint),
		commitment: rpc.CommitmentConfirmed,
	}
}

func (t *RPCTransport) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := t.client.GetLatestBlockhash(ctx, t.commitment)
	if err != nil {
		return solana.Hash{}, err
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, errors.New("empty blockhash response")
	}
	return out.Value.Blockhash, nil
}

func (t *RPCTransport) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	out, err := t.client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: t.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (out == nil || out.Value == nil)) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	if err != nil {
		return nil, err
	}
	if out.Value.Data == nil {
		return nil, nil
	}
	return out.Value.Data.GetBinary(), nil
}

func (t *RPCTransport) TransactionLogs(ctx context.Context, sig solana.Signature) ([]string, error) {
	version := uint64(0)
	out, err := t.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     t.commitment,
		MaxSupportedTransactionVersion: &version,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && out == nil) {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, sig)
	}
	if err != nil {
		return nil, err
	}
	if out.Meta == nil {
		return nil, nil
	}
	return out.Meta.LogMessages, nil
}

func (t *RPCTransport) Submit(ctx context.Context, raw []byte) (solana.Signature, error) {
	return t.client.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		PreflightCommitment: t.commitment,
	})
}
