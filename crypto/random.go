package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/flashbots/arcpoll/codec"
)

// ErrRandomnessUnavailable is returned when the random source cannot supply bytes.
var ErrRandomnessUnavailable = errors.New("random source unavailable")

// Correlation holds the identifiers that tie one on-chain instruction to its
// off-chain confidential computation.
type Correlation struct {
	// Offset is the computation offset; it also seeds the computation account address.
	Offset uint64
	// Nonce is the 128-bit instruction nonce.
	Nonce codec.Uint128
}

// IDGenerator draws correlation identifiers from a secure random source.
// Values are only statistically unique; the receiving program rejects duplicates.
type IDGenerator struct {
	// Rand defaults to crypto/rand.Reader when nil.
	Rand io.Reader
}

// NewIDGenerator returns a generator backed by crypto/rand.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{Rand: rand.Reader}
}

func (g *IDGenerator) read(n int) ([]byte, error) {
	r := io.Reader(rand.Reader)
	if g != nil && g.Rand != nil {
		r = g.Rand
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomnessUnavailable, err)
	}
	return buf, nil
}

// RandomU64 returns a uniformly random 64-bit value.
func (g *IDGenerator) RandomU64() (uint64, error) {
	buf, err := g.read(8)
	if err != nil {
		return 0, err
	}
	return codec.ReadU64LEAt(buf, 0)
}

// RandomU128 returns a uniformly random 128-bit value.
func (g *IDGenerator) RandomU128() (codec.Uint128, error) {
	buf, err := g.read(16)
	if err != nil {
		return codec.Uint128{}, err
	}
	return codec.Uint128FromBytes(buf)
}

// RandomNonce returns 16 random bytes.
func (g *IDGenerator) RandomNonce() ([16]byte, error) {
	var nonce [16]byte
	buf, err := g.read(len(nonce))
	if err != nil {
		return nonce, err
	}
	copy(nonce[:], buf)
	return nonce, nil
}

// NewCorrelation draws a fresh computation offset and nonce in one read.
func (g *IDGenerator) NewCorrelation() (Correlation, error) {
	buf, err := g.read(24)
	if err != nil {
		return Correlation{}, err
	}
	d := codec.NewDecoder(buf)
	offset, err := d.U64()
	if err != nil {
		return Correlation{}, err
	}
	nonce, err := d.U128()
	if err != nil {
		return Correlation{}, err
	}
	return Correlation{Offset: offset, Nonce: nonce}, nil
}
