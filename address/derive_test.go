package address

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

var (
	testProgram     = solana.MustPublicKeyFromBase58("CFbzcvAxXg8kX52gWeDKjWqSMV5v8aMg9csB75KgQYvK")
	testCoordinator = solana.MustPublicKeyFromBase58("Arcj82pX7HxYKLR92qvgZUAd7vGS1k4hQvAFcPATFdEQ")
)

func TestDeriveDeterministic(t *testing.T) {
	seeds := [][]byte{[]byte("poll"), testProgram.Bytes(), {7, 0, 0, 0}}

	a, bumpA, err := Derive(seeds, testProgram)
	require.NoError(t, err)
	b, bumpB, err := Derive(seeds, testProgram)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Equal(t, bumpA, bumpB)
}

func TestDeriveMatchesFindProgramAddress(t *testing.T) {
	for _, seeds := range [][][]byte{
		{[]byte(SignerTag)},
		{[]byte(PollTag), testCoordinator.Bytes(), {1, 0, 0, 0}},
		{},
	} {
		got, bump, err := Derive(seeds, testProgram)
		require.NoError(t, err)

		want, wantBump, err := solana.FindProgramAddress(seeds, testProgram)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, wantBump, bump)
	}
}

func TestDeriveSensitiveToEverySeedByte(t *testing.T) {
	seeds := [][]byte{[]byte(VoteReceiptTag), testProgram.Bytes(), testCoordinator.Bytes()}
	base, _, err := Derive(seeds, testProgram)
	require.NoError(t, err)

	for i := range seeds {
		for j := range seeds[i] {
			mutated := make([][]byte, len(seeds))
			for k := range seeds {
				mutated[k] = bytes.Clone(seeds[k])
			}
			mutated[i][j] ^= 0x01

			addr, _, err := Derive(mutated, testProgram)
			require.NoError(t, err)
			require.NotEqual(t, base, addr, "seed %d byte %d", i, j)
		}
	}
}

func TestDeriveOwnerMatters(t *testing.T) {
	seeds := [][]byte{[]byte(MXETag), testProgram.Bytes()}
	underProgram, _, err := Derive(seeds, testProgram)
	require.NoError(t, err)
	underCoordinator, _, err := Derive(seeds, testCoordinator)
	require.NoError(t, err)
	require.NotEqual(t, underProgram, underCoordinator)
}

func TestDeriveRejectsInvalidSeeds(t *testing.T) {
	_, _, err := Derive([][]byte{make([]byte, MaxSeedLength+1)}, testProgram)
	require.ErrorIs(t, err, ErrInvalidSeeds)

	tooMany := make([][]byte, MaxSeeds)
	for i := range tooMany {
		tooMany[i] = []byte{byte(i)}
	}
	_, _, err = Derive(tooMany, testProgram)
	require.ErrorIs(t, err, ErrInvalidSeeds)

	_, _, err = Derive(tooMany[:MaxSeeds-1], testProgram)
	require.NoError(t, err)
}

func TestDeriveExhaustion(t *testing.T) {
	orig := createProgramAddress
	defer func() { createProgramAddress = orig }()

	calls := 0
	createProgramAddress = func(seeds [][]byte, owner solana.PublicKey) (solana.PublicKey, error) {
		calls++
		return solana.PublicKey{}, errors.New("on curve")
	}

	_, _, err := Derive([][]byte{[]byte("x")}, testProgram)
	require.ErrorIs(t, err, ErrNoValidDerivation)
	require.Equal(t, 256, calls)
}

func TestDeriveFirstBumpFromTop(t *testing.T) {
	orig := createProgramAddress
	defer func() { createProgramAddress = orig }()

	var tried []byte
	createProgramAddress = func(seeds [][]byte, owner solana.PublicKey) (solana.PublicKey, error) {
		bump := seeds[len(seeds)-1][0]
		tried = append(tried, bump)
		if bump == 253 {
			return solana.PublicKey{9}, nil
		}
		return solana.PublicKey{}, errors.New("on curve")
	}

	addr, bump, err := Derive([][]byte{[]byte("x")}, testProgram)
	require.NoError(t, err)
	require.Equal(t, uint8(253), bump)
	require.Equal(t, []byte{255, 254, 253}, tried)
	require.Equal(t, solana.PublicKey{9}, addr)
}
