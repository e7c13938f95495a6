package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/flashbots/arcpoll/codec"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy pool drained") }

func TestRandomU64Distribution(t *testing.T) {
	g := NewIDGenerator()

	const n = 2000
	seen := make(map[uint64]struct{}, n)
	var highBit, lowBit int
	for i := 0; i < n; i++ {
		v, err := g.RandomU64()
		require.NoError(t, err)
		seen[v] = struct{}{}
		if v>>63 == 1 {
			highBit++
		}
		if v&1 == 1 {
			lowBit++
		}
	}

	// Collisions among 2000 uniform 64-bit draws are vanishingly unlikely.
	require.Len(t, seen, n)
	// Each bit should be set roughly half the time; the bounds are very loose.
	require.InDelta(t, n/2, highBit, n/4)
	require.InDelta(t, n/2, lowBit, n/4)
}

func TestRandomU128UsesBothHalves(t *testing.T) {
	g := NewIDGenerator()
	var hiNonZero, loNonZero bool
	for i := 0; i < 16 && !(hiNonZero && loNonZero); i++ {
		v, err := g.RandomU128()
		require.NoError(t, err)
		hiNonZero = hiNonZero || v.Hi != 0
		loNonZero = loNonZero || v.Lo != 0
	}
	require.True(t, hiNonZero)
	require.True(t, loNonZero)
}

func TestCorrelationFromReader(t *testing.T) {
	src := make([]byte, 24)
	for i := range src {
		src[i] = byte(i + 1)
	}
	g := &IDGenerator{Rand: bytes.NewReader(src)}

	c, err := g.NewCorrelation()
	require.NoError(t, err)

	offset, err := codec.ReadU64LEAt(src, 0)
	require.NoError(t, err)
	nonce, err := codec.Uint128FromBytes(src[8:])
	require.NoError(t, err)
	require.Equal(t, offset, c.Offset)
	require.Equal(t, nonce, c.Nonce)
}

func TestRandomSourceFailureSurfaces(t *testing.T) {
	g := &IDGenerator{Rand: failingReader{}}

	_, err := g.RandomU64()
	require.ErrorIs(t, err, ErrRandomnessUnavailable)
	_, err = g.RandomU128()
	require.ErrorIs(t, err, ErrRandomnessUnavailable)
	_, err = g.RandomNonce()
	require.ErrorIs(t, err, ErrRandomnessUnavailable)
	_, err = g.NewCorrelation()
	require.ErrorIs(t, err, ErrRandomnessUnavailable)
}

func TestNilGeneratorUsesCryptoRand(t *testing.T) {
	var g *IDGenerator
	_, err := g.RandomU64()
	require.NoError(t, err)
}
