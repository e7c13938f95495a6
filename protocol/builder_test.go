package protocol

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"strings"
	"testing"

	"github.com/flashbots/arcpoll/address"
	"github.com/flashbots/arcpoll/codec"
	"github.com/flashbots/arcpoll/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

type countingIDs struct {
	calls int
	corr  crypto.Correlation
	err   error
}

func (c *countingIDs) NewCorrelation() (crypto.Correlation, error) {
	c.calls++
	return c.corr, c.err
}

func newTestBuilder() (*Builder, *countingIDs) {
	ids := &countingIDs{corr: crypto.Correlation{
		Offset: 0x0102030405060708,
		Nonce:  codec.Uint128{Lo: 0x1111111111111111, Hi: 0x2222222222222222},
	}}
	return NewBuilder(DefaultProgramConfig(), ids), ids
}

func TestDiscriminators(t *testing.T) {
	sum := sha256.Sum256([]byte("global:reveal_result"))
	require.Equal(t, sum[:8], RevealResultDiscriminator[:])
	require.Equal(t, Discriminator{18, 23, 205, 123, 193, 24, 162, 162}, CreateNewPollDiscriminator)
	require.Equal(t, Discriminator{227, 110, 155, 23, 136, 126, 172, 25}, VoteDiscriminator)

	require.True(t, VoteDiscriminator.Matches(append(VoteDiscriminator[:], 1, 2, 3)))
	require.False(t, VoteDiscriminator.Matches(VoteDiscriminator[:7]))
}

func TestCreateNewPollLayout(t *testing.T) {
	b, ids := newTestBuilder()
	payer := solana.NewWallet().PublicKey()

	ix, err := b.CreateNewPoll(CreatePollParams{Payer: payer, PollID: 9, Question: "Ship it?"})
	require.NoError(t, err)
	require.Equal(t, 1, ids.calls)

	data := ix.Data()
	require.Len(t, data, 8+8+4+4+len("Ship it?")+16)
	require.Equal(t, CreateNewPollDiscriminator[:], data[:8])

	d := codec.NewDecoder(data[8:])
	offset, err := d.U64()
	require.NoError(t, err)
	require.Equal(t, ids.corr.Offset, offset)
	pollID, err := d.U32()
	require.NoError(t, err)
	require.Equal(t, uint32(9), pollID)
	question, err := d.String()
	require.NoError(t, err)
	require.Equal(t, "Ship it?", question)
	nonce, err := d.U128()
	require.NoError(t, err)
	require.Equal(t, ids.corr.Nonce, nonce)
	require.Zero(t, d.Remaining())
}

func TestCreateNewPollTruncatesQuestion(t *testing.T) {
	b, _ := newTestBuilder()
	payer := solana.NewWallet().PublicKey()

	long := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 50)
	ix, err := b.CreateNewPoll(CreatePollParams{Payer: payer, PollID: 1, Question: long})
	require.NoError(t, err)
	require.Len(t, ix.Data(), 8+8+4+4+199+16)

	exact := strings.Repeat("q", MaxQuestionBytes+10)
	ix, err = b.CreateNewPoll(CreatePollParams{Payer: payer, PollID: 1, Question: exact})
	require.NoError(t, err)
	require.Len(t, ix.Data(), 8+8+4+4+MaxQuestionBytes+16)

	_, err = b.CreateNewPoll(CreatePollParams{Payer: payer, PollID: 1, Question: "\xff\xfe"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "question", verr.Field)
}

func TestVoteLayout(t *testing.T) {
	b, ids := newTestBuilder()
	voter := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ct := bytes.Repeat([]byte{0xaa}, 32)
	pk := bytes.Repeat([]byte{0xbb}, 32)
	nonce := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	ix, err := b.Vote(VoteParams{
		Payer:           voter,
		Authority:       authority,
		PollID:          3,
		Ciphertext:      ct,
		SenderPublicKey: pk,
		Nonce:           nonce,
	})
	require.NoError(t, err)
	require.Equal(t, 1, ids.calls)

	data := ix.Data()
	require.Len(t, data, 100)
	require.Equal(t, VoteDiscriminator[:], data[:8])
	require.Equal(t, codec.EncodeU64LE(ids.corr.Offset), data[8:16])
	require.Equal(t, []byte{3, 0, 0, 0}, data[16:20])
	require.Equal(t, ct, data[20:52])
	require.Equal(t, pk, data[52:84])
	require.Equal(t, nonce, data[84:100], "vote nonce comes from the payload")
}

func TestVoteValidation(t *testing.T) {
	b, ids := newTestBuilder()
	valid := VoteParams{
		Payer:           solana.NewWallet().PublicKey(),
		Authority:       solana.NewWallet().PublicKey(),
		Ciphertext:      make([]byte, 32),
		SenderPublicKey: make([]byte, 32),
		Nonce:           make([]byte, 16),
	}

	for field, mutate := range map[string]func(p *VoteParams){
		"vote":                 func(p *VoteParams) { p.Ciphertext = make([]byte, 31) },
		"voteEncryptionPubkey": func(p *VoteParams) { p.SenderPublicKey = make([]byte, 33) },
		"voteNonce":            func(p *VoteParams) { p.Nonce = nil },
		"authority":            func(p *VoteParams) { p.Authority = solana.PublicKey{} },
		"payer":                func(p *VoteParams) { p.Payer = solana.PublicKey{} },
	} {
		p := valid
		mutate(&p)
		_, err := b.Vote(p)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), field)
		require.Equal(t, field, verr.Field)
	}
	require.Zero(t, ids.calls, "validation happens before any randomness is drawn")
}

func TestRevealResultLayout(t *testing.T) {
	b, ids := newTestBuilder()
	ix, err := b.RevealResult(RevealParams{Payer: solana.NewWallet().PublicKey(), PollID: 0xdeadbeef})
	require.NoError(t, err)
	require.Equal(t, 1, ids.calls)

	data := ix.Data()
	require.Len(t, data, 20)
	require.Equal(t, RevealResultDiscriminator[:], data[:8])
	require.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, data[16:20])
}

func TestAccountOrder(t *testing.T) {
	b, ids := newTestBuilder()
	cfg := DefaultProgramConfig()
	d := address.NewDeriver(cfg.ProgramID, cfg.CoordinatorID, cfg.ClusterOffset)

	voter := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	must := func(k solana.PublicKey, err error) solana.PublicKey {
		require.NoError(t, err)
		return k
	}
	poll := must(d.PollAccount(authority, 5))

	ix, err := b.Vote(VoteParams{
		Payer:           voter,
		Authority:       authority,
		PollID:          5,
		Ciphertext:      make([]byte, 32),
		SenderPublicKey: make([]byte, 32),
		Nonce:           make([]byte, 16),
	})
	require.NoError(t, err)

	want := solana.AccountMetaSlice{
		solana.NewAccountMeta(voter, true, true),
		solana.NewAccountMeta(must(d.SignerAccount()), true, false),
		solana.NewAccountMeta(must(d.MXEAccount()), false, false),
		solana.NewAccountMeta(must(d.MempoolAccount()), true, false),
		solana.NewAccountMeta(must(d.ExecutingPool()), true, false),
		solana.NewAccountMeta(must(d.ComputationAccount(ids.corr.Offset)), true, false),
		solana.NewAccountMeta(must(d.CompDefAccount("vote")), false, false),
		solana.NewAccountMeta(must(d.ClusterAccount()), true, false),
		solana.NewAccountMeta(cfg.PoolAccount, true, false),
		solana.NewAccountMeta(cfg.ClockAccount, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(cfg.CoordinatorID, false, false),
		solana.NewAccountMeta(poll, true, false),
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(must(d.VoteReceipt(poll, voter)), true, false),
	}
	require.Equal(t, want, ix.Accounts)

	reveal, err := b.RevealResult(RevealParams{Payer: authority, PollID: 5})
	require.NoError(t, err)
	require.Len(t, reveal.Accounts, 13)
	require.Equal(t, poll, reveal.Accounts[12].PublicKey)
	require.False(t, reveal.Accounts[12].IsWritable)
	require.Equal(t, must(d.CompDefAccount("reveal_result")), reveal.Accounts[6].PublicKey)

	create, err := b.CreateNewPoll(CreatePollParams{Payer: authority, PollID: 5, Question: "?"})
	require.NoError(t, err)
	require.Len(t, create.Accounts, 13)
	require.True(t, create.Accounts[12].IsWritable)
	require.Equal(t, must(d.CompDefAccount("init_vote_stats")), create.Accounts[6].PublicKey)
}

func TestRandomnessFailureSurfaces(t *testing.T) {
	b, ids := newTestBuilder()
	ids.err = crypto.ErrRandomnessUnavailable

	_, err := b.RevealResult(RevealParams{Payer: solana.NewWallet().PublicKey(), PollID: 1})
	require.ErrorIs(t, err, crypto.ErrRandomnessUnavailable)
}

func TestSolanaInstruction(t *testing.T) {
	b, _ := newTestBuilder()
	ix, err := b.RevealResult(RevealParams{Payer: solana.NewWallet().PublicKey(), PollID: 2})
	require.NoError(t, err)

	sol := ix.Solana()
	require.Equal(t, DefaultProgramID, sol.ProgramID())
	data, err := sol.Data()
	require.NoError(t, err)
	require.Equal(t, ix.Data(), data)
	require.Equal(t, []*solana.AccountMeta(ix.Accounts), sol.Accounts())
}

func TestTruncateUTF8(t *testing.T) {
	require.Equal(t, "abc", TruncateUTF8("abc", 5))
	require.Equal(t, "ab", TruncateUTF8("abé", 3))
	require.Equal(t, "abé", TruncateUTF8("abéd", 4))
	require.Equal(t, "", TruncateUTF8("€", 2))
}

func TestDefaultProgramConfigValid(t *testing.T) {
	cfg := DefaultProgramConfig()
	require.NoError(t, cfg.Validate())

	cfg.PoolAccount = solana.PublicKey{}
	require.Error(t, cfg.Validate())
}
