package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
)

// Decoder reads fields in the order an Encoder wrote them.
type Decoder struct {
	dec *bin.Decoder
}

// NewDecoder returns a decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{dec: bin.NewBorshDecoder(data)}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return d.dec.Remaining()
}

func (d *Decoder) need(n int) error {
	if have := d.dec.Remaining(); have < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooShort, n, have)
	}
	return nil
}

func (d *Decoder) U8() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	return d.dec.ReadUint8()
}

func (d *Decoder) U32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	return d.dec.ReadUint32(binary.LittleEndian)
}

func (d *Decoder) U64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	return d.dec.ReadUint64(binary.LittleEndian)
}

func (d *Decoder) U128() (Uint128, error) {
	if err := d.need(16); err != nil {
		return Uint128{}, err
	}
	v, err := d.dec.ReadUint128(binary.LittleEndian)
	if err != nil {
		return Uint128{}, err
	}
	return Uint128{Lo: v.Lo, Hi: v.Hi}, nil
}

// String reads a u32 length prefix and that many UTF-8 bytes.
func (d *Decoder) String() (string, error) {
	n, err := d.U32()
	if err != nil {
		return "", err
	}
	raw, err := d.FixedBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}

// FixedBytes reads exactly n bytes and returns a copy.
func (d *Decoder) FixedBytes(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	raw, err := d.dec.ReadNBytes(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(raw), nil
}

// ReadU64LEAt reads a little-endian u64 starting at byte offset.
func ReadU64LEAt(data []byte, offset int) (uint64, error) {
	if offset < 0 || offset > len(data) {
		return 0, fmt.Errorf("%w: offset %d outside %d-byte buffer", ErrBufferTooShort, offset, len(data))
	}
	return NewDecoder(data[offset:]).U64()
}

// ReadU64TripleAt reads three consecutive little-endian u64 values starting at offset.
func ReadU64TripleAt(data []byte, offset int) ([3]uint64, error) {
	var out [3]uint64
	if offset < 0 || offset+24 > len(data) {
		return out, fmt.Errorf("%w: need 24 bytes at offset %d, buffer has %d", ErrBufferTooShort, offset, len(data))
	}
	d := NewDecoder(data[offset : offset+24])
	for i := range out {
		v, err := d.U64()
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
