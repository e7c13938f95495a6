package protocol

import (
	"fmt"
	"unicode/utf8"

	"github.com/flashbots/arcpoll/address"
	"github.com/flashbots/arcpoll/codec"
	"github.com/flashbots/arcpoll/crypto"
	"github.com/gagliardetto/solana-go"
)

const (
	CiphertextSize = 32
	PublicKeySize  = 32
	NonceSize      = 16
)

// ValidationError names an input field that cannot be encoded.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CorrelationSource supplies fresh correlation identifiers.
type CorrelationSource interface {
	NewCorrelation() (crypto.Correlation, error)
}

// operationSpec is the fixed wire contract of one instruction.
type operationSpec struct {
	Name          string
	Discriminator Discriminator
	Circuit       string
	PollWritable  bool
}

var operations = map[Operation]operationSpec{
	OpCreateNewPoll: {
		Name:          "create_new_poll",
		Discriminator: CreateNewPollDiscriminator,
		Circuit:       "init_vote_stats",
		PollWritable:  true,
	},
	OpVote: {
		Name:          "vote",
		Discriminator: VoteDiscriminator,
		Circuit:       "vote",
		PollWritable:  true,
	},
	OpRevealResult: {
		Name:          "reveal_result",
		Discriminator: RevealResultDiscriminator,
		Circuit:       "reveal_result",
		PollWritable:  false,
	},
}

// CreatePollParams are the inputs of create_new_poll. The payer becomes the
// poll authority.
type CreatePollParams struct {
	Payer    solana.PublicKey
	PollID   uint32
	Question string
}

// VoteParams are the inputs of vote. Ciphertext, SenderPublicKey and Nonce
// come from an encrypted payload.
type VoteParams struct {
	Payer           solana.PublicKey
	Authority       solana.PublicKey
	PollID          uint32
	Ciphertext      []byte
	SenderPublicKey []byte
	Nonce           []byte
}

// RevealParams are the inputs of reveal_result. Only the poll authority can
// reveal, so the payer also seeds the poll address.
type RevealParams struct {
	Payer  solana.PublicKey
	PollID uint32
}

// Builder produces instruction descriptors for the poll program.
type Builder struct {
	config  *ProgramConfig
	deriver *address.Deriver
	ids     CorrelationSource
}

// NewBuilder returns a builder for config. A nil ids uses crypto/rand.
func NewBuilder(config *ProgramConfig, ids CorrelationSource) *Builder {
	if ids == nil {
		ids = crypto.NewIDGenerator()
	}
	return &Builder{
		config:  config,
		deriver: address.NewDeriver(config.ProgramID, config.CoordinatorID, config.ClusterOffset),
		ids:     ids,
	}
}

// Deriver exposes the address deriver bound to the builder's config.
func (b *Builder) Deriver() *address.Deriver {
	return b.deriver
}

// CreateNewPoll builds create_new_poll. The question is truncated to
// MaxQuestionBytes on a rune boundary.
func (b *Builder) CreateNewPoll(p CreatePollParams) (*Instruction, error) {
	if p.Payer.IsZero() {
		return nil, &ValidationError{Field: "payer", Reason: "missing"}
	}
	if !utf8.ValidString(p.Question) {
		return nil, &ValidationError{Field: "question", Reason: "not valid UTF-8"}
	}
	question := TruncateUTF8(p.Question, MaxQuestionBytes)

	poll, err := b.deriver.PollAccount(p.Payer, p.PollID)
	if err != nil {
		return nil, err
	}
	return b.build(call{
		op:     OpCreateNewPoll,
		payer:  p.Payer,
		pollID: p.PollID,
		poll:   poll,
		args: func(enc *codec.Encoder, c crypto.Correlation) {
			enc.String(question).U128(c.Nonce)
		},
	})
}

// Vote builds vote. The nonce is the payload's, not a fresh one.
func (b *Builder) Vote(p VoteParams) (*Instruction, error) {
	switch {
	case p.Payer.IsZero():
		return nil, &ValidationError{Field: "payer", Reason: "missing"}
	case p.Authority.IsZero():
		return nil, &ValidationError{Field: "authority", Reason: "missing"}
	case len(p.Ciphertext) != CiphertextSize:
		return nil, &ValidationError{Field: "vote", Reason: fmt.Sprintf("ciphertext is %d bytes, want %d", len(p.Ciphertext), CiphertextSize)}
	case len(p.SenderPublicKey) != PublicKeySize:
		return nil, &ValidationError{Field: "voteEncryptionPubkey", Reason: fmt.Sprintf("key is %d bytes, want %d", len(p.SenderPublicKey), PublicKeySize)}
	case len(p.Nonce) != NonceSize:
		return nil, &ValidationError{Field: "voteNonce", Reason: fmt.Sprintf("nonce is %d bytes, want %d", len(p.Nonce), NonceSize)}
	}
	nonce, err := codec.Uint128FromBytes(p.Nonce)
	if err != nil {
		return nil, err
	}

	poll, err := b.deriver.PollAccount(p.Authority, p.PollID)
	if err != nil {
		return nil, err
	}
	receipt, err := b.deriver.VoteReceipt(poll, p.Payer)
	if err != nil {
		return nil, err
	}
	return b.build(call{
		op:     OpVote,
		payer:  p.Payer,
		pollID: p.PollID,
		poll:   poll,
		args: func(enc *codec.Encoder, _ crypto.Correlation) {
			enc.FixedBytes(p.Ciphertext, CiphertextSize).
				FixedBytes(p.SenderPublicKey, PublicKeySize).
				U128(nonce)
		},
		tail: solana.AccountMetaSlice{
			solana.NewAccountMeta(p.Authority, false, false),
			solana.NewAccountMeta(receipt, true, false),
		},
	})
}

// RevealResult builds reveal_result.
func (b *Builder) RevealResult(p RevealParams) (*Instruction, error) {
	if p.Payer.IsZero() {
		return nil, &ValidationError{Field: "payer", Reason: "missing"}
	}
	poll, err := b.deriver.PollAccount(p.Payer, p.PollID)
	if err != nil {
		return nil, err
	}
	return b.build(call{
		op:     OpRevealResult,
		payer:  p.Payer,
		pollID: p.PollID,
		poll:   poll,
	})
}

type call struct {
	op     Operation
	payer  solana.PublicKey
	pollID uint32
	poll   solana.PublicKey
	// args appends the fields following computation offset and poll id.
	args func(enc *codec.Encoder, c crypto.Correlation)
	tail solana.AccountMetaSlice
}

func (b *Builder) build(c call) (*Instruction, error) {
	spec, ok := operations[c.op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %d", int(c.op))
	}

	corr, err := b.ids.NewCorrelation()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}

	accounts, err := b.queueAccounts(c.payer, spec.Circuit, corr.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	accounts = append(accounts, solana.NewAccountMeta(c.poll, spec.PollWritable, false))
	accounts = append(accounts, c.tail...)

	enc := codec.NewEncoder().U64(corr.Offset).U32(c.pollID)
	if c.args != nil {
		c.args(enc, corr)
	}
	args, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("%s: encoding arguments: %w", spec.Name, err)
	}

	return &Instruction{
		Operation:         c.op,
		ProgramID:         b.config.ProgramID,
		Discriminator:     spec.Discriminator,
		Args:              args,
		Accounts:          accounts,
		ComputationOffset: corr.Offset,
	}, nil
}

// queueAccounts returns the twelve accounts every operation passes to the
// coordinator, in wire order.
func (b *Builder) queueAccounts(payer solana.PublicKey, circuit string, computationOffset uint64) (solana.AccountMetaSlice, error) {
	d := b.deriver
	signer, err := d.SignerAccount()
	if err != nil {
		return nil, err
	}
	mxe, err := d.MXEAccount()
	if err != nil {
		return nil, err
	}
	mempool, err := d.MempoolAccount()
	if err != nil {
		return nil, err
	}
	execpool, err := d.ExecutingPool()
	if err != nil {
		return nil, err
	}
	computation, err := d.ComputationAccount(computationOffset)
	if err != nil {
		return nil, err
	}
	compDef, err := d.CompDefAccount(circuit)
	if err != nil {
		return nil, err
	}
	cluster, err := d.ClusterAccount()
	if err != nil {
		return nil, err
	}

	return solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(signer, true, false),
		solana.NewAccountMeta(mxe, false, false),
		solana.NewAccountMeta(mempool, true, false),
		solana.NewAccountMeta(execpool, true, false),
		solana.NewAccountMeta(computation, true, false),
		solana.NewAccountMeta(compDef, false, false),
		solana.NewAccountMeta(cluster, true, false),
		solana.NewAccountMeta(b.config.PoolAccount, true, false),
		solana.NewAccountMeta(b.config.ClockAccount, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(b.config.CoordinatorID, false, false),
	}, nil
}

// TruncateUTF8 returns the longest prefix of s no longer than max bytes that
// does not split a rune.
func TruncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
