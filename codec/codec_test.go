package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegerEncodingsAreLittleEndian(t *testing.T) {
	require.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, EncodeU32LE(0x12345678))
	require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, EncodeU64LE(0x0102030405060708))

	u := Uint128{Lo: 0x0102030405060708, Hi: 0x1112131415161718}
	require.Equal(t, []byte{
		8, 7, 6, 5, 4, 3, 2, 1,
		0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11,
	}, EncodeU128LE(u))
	require.Equal(t, "0x11121314151617180102030405060708", u.String())
}

func TestLengthPrefixedUTF8(t *testing.T) {
	b, err := EncodeLengthPrefixedUTF8("héllo")
	require.NoError(t, err)
	// "é" is two bytes, so the prefix counts bytes, not runes
	require.Equal(t, []byte{6, 0, 0, 0, 'h', 0xc3, 0xa9, 'l', 'l', 'o'}, b)

	b, err = EncodeLengthPrefixedUTF8("")
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, b)

	_, err = EncodeLengthPrefixedUTF8(string([]byte{0xff, 0xfe}))
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestFixedBytes(t *testing.T) {
	in := []byte{1, 2, 3, 4}
	out, err := EncodeFixedBytes(in, 4)
	require.NoError(t, err)
	require.Equal(t, in, out)

	out[0] = 9
	require.Equal(t, byte(1), in[0], "encoder must not alias its input")

	_, err = EncodeFixedBytes(in, 32)
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestEncoderStickyError(t *testing.T) {
	e := NewEncoder().U32(1).FixedBytes([]byte{1}, 2).U64(5)
	_, err := e.Finish()
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestEncoderDecoderRoundTrip(t *testing.T) {
	blob := []byte(strings.Repeat("x", 32))
	data, err := NewEncoder().
		U8(7).
		U64(^uint64(0)).
		U32(42).
		String("Should we ship it?").
		FixedBytes(blob, 32).
		U128(Uint128{Lo: 1, Hi: ^uint64(0)}).
		Finish()
	require.NoError(t, err)
	require.Len(t, data, 1+8+4+4+18+32+16)

	d := NewDecoder(data)
	u8, err := d.U8()
	require.NoError(t, err)
	require.Equal(t, uint8(7), u8)

	u64, err := d.U64()
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), u64)

	u32, err := d.U32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), u32)

	s, err := d.String()
	require.NoError(t, err)
	require.Equal(t, "Should we ship it?", s)

	fixed, err := d.FixedBytes(32)
	require.NoError(t, err)
	require.Equal(t, blob, fixed)

	u128, err := d.U128()
	require.NoError(t, err)
	require.Equal(t, Uint128{Lo: 1, Hi: ^uint64(0)}, u128)

	require.Zero(t, d.Remaining())
	_, err = d.U8()
	require.ErrorIs(t, err, ErrBufferTooShort)
}

func TestDecoderShortReads(t *testing.T) {
	_, err := NewDecoder([]byte{1, 2, 3}).U32()
	require.ErrorIs(t, err, ErrBufferTooShort)

	_, err = NewDecoder(make([]byte, 15)).U128()
	require.ErrorIs(t, err, ErrBufferTooShort)

	// length prefix claims more bytes than remain
	_, err = NewDecoder([]byte{10, 0, 0, 0, 'a'}).String()
	require.ErrorIs(t, err, ErrBufferTooShort)
}

func TestReadAtOffsets(t *testing.T) {
	data, err := NewEncoder().U64(0xdead).U64(7).U64(3).U64(2).Finish()
	require.NoError(t, err)

	v, err := ReadU64LEAt(data, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(0xdead), v)

	triple, err := ReadU64TripleAt(data, 8)
	require.NoError(t, err)
	require.Equal(t, [3]uint64{7, 3, 2}, triple)

	_, err = ReadU64TripleAt(data, 16)
	require.True(t, errors.Is(err, ErrBufferTooShort))

	_, err = ReadU64LEAt(data, 32)
	require.ErrorIs(t, err, ErrBufferTooShort)

	_, err = ReadU64LEAt(data, -1)
	require.ErrorIs(t, err, ErrBufferTooShort)
}
