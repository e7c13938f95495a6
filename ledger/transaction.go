package ledger

import (
	"context"
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// UnsignedTransaction assembles instructions into a legacy transaction paid
// by payer against the latest blockhash. Signature slots are zero-filled so
// the result can be handed to a wallet for signing.
func UnsignedTransaction(ctx context.Context, t Transport, payer solana.PublicKey, ixs ...solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := t.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	return NewUnsignedTransaction(blockhash, payer, ixs...)
}

// NewUnsignedTransaction is UnsignedTransaction with a known blockhash.
func NewUnsignedTransaction(blockhash solana.Hash, payer solana.PublicKey, ixs ...solana.Instruction) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("assembling transaction: %w", err)
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	return tx, nil
}

// EncodeTransaction returns the base64 wire encoding of tx.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serializing transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeTransaction parses a base64 wire transaction.
func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding transaction: %w", err)
	}
	return solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
}

// Sign fills the fee payer's signature slot. Transactions needing more than
// one signer are rejected.
func Sign(tx *solana.Transaction, signer Signer) error {
	if n := tx.Message.Header.NumRequiredSignatures; n != 1 {
		return fmt.Errorf("transaction needs %d signatures, signer provides 1", n)
	}
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(signer.PublicKey()) {
		return fmt.Errorf("signer %s is not the fee payer", signer.PublicKey())
	}
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serializing message: %w", err)
	}
	sig, err := signer.Sign(msg)
	if err != nil {
		return fmt.Errorf("signing: %w", err)
	}
	tx.Signatures = []solana.Signature{sig}
	return nil
}

// SignAndSubmit assembles, signs and broadcasts instructions paid by signer.
func SignAndSubmit(ctx context.Context, t Transport, signer Signer, ixs ...solana.Instruction) (solana.Signature, error) {
	tx, err := UnsignedTransaction(ctx, t, signer.PublicKey(), ixs...)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := Sign(tx, signer); err != nil {
		return solana.Signature{}, err
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("serializing transaction: %w", err)
	}
	return t.Submit(ctx, raw)
}
