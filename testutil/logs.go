package testutil

import (
	"encoding/base64"
	"encoding/binary"
)

// ProgramDataLine renders blob the way the runtime logs emitted events.
func ProgramDataLine(blob []byte) string {
	return "Program data: " + base64.StdEncoding.EncodeToString(blob)
}

// BlobOption customizes a tally blob.
type BlobOption func(*blobConfig)

type blobConfig struct {
	prefix []byte
	offset int
	size   int
}

// WithPrefix writes prefix at the start of the blob.
func WithPrefix(prefix []byte) BlobOption {
	return func(c *blobConfig) { c.prefix = prefix }
}

// WithCountsAt places the three counters at byte offset off.
func WithCountsAt(off int) BlobOption {
	return func(c *blobConfig) { c.offset = off }
}

// WithSize zero-pads the blob to n bytes.
func WithSize(n int) BlobOption {
	return func(c *blobConfig) { c.size = n }
}

// TallyBlob builds a blob carrying yes, no and maybe as little-endian u64
// values. By default the counters follow an 8-byte zero prefix and the blob
// is exactly 32 bytes long.
func TallyBlob(yes, no, maybe uint64, opts ...BlobOption) []byte {
	c := blobConfig{offset: 8, size: 32}
	for _, opt := range opts {
		opt(&c)
	}
	size := c.size
	if end := c.offset + 24; end > size {
		size = end
	}
	if len(c.prefix) > size {
		size = len(c.prefix)
	}

	blob := make([]byte, size)
	copy(blob, c.prefix)
	binary.LittleEndian.PutUint64(blob[c.offset:], yes)
	binary.LittleEndian.PutUint64(blob[c.offset+8:], no)
	binary.LittleEndian.PutUint64(blob[c.offset+16:], maybe)
	return blob
}

// PollAccountData returns size bytes of account data ending in the three
// revealed counters.
func PollAccountData(size int, yes, no, maybe uint64) []byte {
	data := make([]byte, size)
	for i := range data[:size-24] {
		data[i] = byte(i)
	}
	binary.LittleEndian.PutUint64(data[size-24:], yes)
	binary.LittleEndian.PutUint64(data[size-16:], no)
	binary.LittleEndian.PutUint64(data[size-8:], maybe)
	return data
}
