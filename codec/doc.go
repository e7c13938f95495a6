// Package codec implements the little-endian field encoding used by the poll
// program's instruction arguments and event payloads.
//
// Supported fields are unsigned 8/32/64/128-bit integers, strings carried as a
// 4-byte length followed by raw UTF-8, and fixed-size byte arrays. Fields are
// concatenated in declaration order with no padding, matching the program's
// borsh layout bit for bit.
//
// Decoding mirrors every encoder and adds offset reads (ReadU64LEAt,
// ReadU64TripleAt) for scanning log blobs whose layout is not known ahead of
// time. Reads past the end of a buffer return ErrBufferTooShort.
package codec
