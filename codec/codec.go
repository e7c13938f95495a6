package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
)

var (
	// ErrBufferTooShort is returned when a read would run past the end of the input.
	// Callers scanning untrusted blobs treat it as "try the next candidate".
	ErrBufferTooShort = errors.New("buffer too short")

	// ErrSizeMismatch is returned when a fixed-size field is given the wrong number of bytes.
	ErrSizeMismatch = errors.New("fixed-size field has wrong length")

	// ErrInvalidUTF8 is returned when a string field is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("string is not valid UTF-8")
)

// Uint128 is an unsigned 128-bit integer split into its low and high halves.
// On the wire it is 16 bytes, low half first, each half little-endian.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Uint128FromBytes reads a 16-byte little-endian value.
func Uint128FromBytes(b []byte) (Uint128, error) {
	return NewDecoder(b).U128()
}

// Bytes returns the 16-byte little-endian encoding.
func (u Uint128) Bytes() []byte {
	return EncodeU128LE(u)
}

func (u Uint128) String() string {
	return fmt.Sprintf("0x%016x%016x", u.Hi, u.Lo)
}

// Encoder appends borsh-compatible fields to a flat buffer in call order.
// The first write error sticks and is reported by Finish.
type Encoder struct {
	buf bytes.Buffer
	enc *bin.Encoder
	err error
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.enc = bin.NewBorshEncoder(&e.buf)
	return e
}

func (e *Encoder) do(fn func() error) *Encoder {
	if e.err == nil {
		e.err = fn()
	}
	return e
}

// U8 appends a single byte.
func (e *Encoder) U8(v uint8) *Encoder {
	return e.do(func() error { return e.enc.WriteUint8(v) })
}

// U32 appends a 4-byte little-endian integer.
func (e *Encoder) U32(v uint32) *Encoder {
	return e.do(func() error { return e.enc.WriteUint32(v, binary.LittleEndian) })
}

// U64 appends an 8-byte little-endian integer.
func (e *Encoder) U64(v uint64) *Encoder {
	return e.do(func() error { return e.enc.WriteUint64(v, binary.LittleEndian) })
}

// U128 appends a 16-byte little-endian integer.
func (e *Encoder) U128(v Uint128) *Encoder {
	return e.do(func() error {
		return e.enc.WriteUint128(bin.Uint128{Lo: v.Lo, Hi: v.Hi}, binary.LittleEndian)
	})
}

// String appends a 4-byte little-endian byte length followed by the raw UTF-8 bytes.
// There is no terminator and no padding.
func (e *Encoder) String(s string) *Encoder {
	return e.do(func() error {
		if !utf8.ValidString(s) {
			return ErrInvalidUTF8
		}
		if err := e.enc.WriteUint32(uint32(len(s)), binary.LittleEndian); err != nil {
			return err
		}
		return e.enc.WriteBytes([]byte(s), false)
	})
}

// FixedBytes appends b verbatim after checking it is exactly size bytes long.
func (e *Encoder) FixedBytes(b []byte, size int) *Encoder {
	return e.do(func() error {
		if len(b) != size {
			return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(b), size)
		}
		return e.enc.WriteBytes(b, false)
	})
}

// Finish returns a copy of the encoded bytes, or the first error encountered.
func (e *Encoder) Finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return bytes.Clone(e.buf.Bytes()), nil
}

// EncodeU32LE returns the 4-byte little-endian encoding of v.
func EncodeU32LE(v uint32) []byte {
	b, _ := NewEncoder().U32(v).Finish()
	return b
}

// EncodeU64LE returns the 8-byte little-endian encoding of v.
func EncodeU64LE(v uint64) []byte {
	b, _ := NewEncoder().U64(v).Finish()
	return b
}

// EncodeU128LE returns the 16-byte little-endian encoding of v.
func EncodeU128LE(v Uint128) []byte {
	b, _ := NewEncoder().U128(v).Finish()
	return b
}

// EncodeLengthPrefixedUTF8 returns len(s) as a u32 followed by the bytes of s.
func EncodeLengthPrefixedUTF8(s string) ([]byte, error) {
	return NewEncoder().String(s).Finish()
}

// EncodeFixedBytes returns a copy of b if it is exactly size bytes long.
func EncodeFixedBytes(b []byte, size int) ([]byte, error) {
	return NewEncoder().FixedBytes(b, size).Finish()
}
