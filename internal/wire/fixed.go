package wire

// This file holds the little-endian codec for the FIXED32/FIXED64 wire
// types, which store values in exactly 4 or 8 bytes with no varint framing.

import (
	"golang.org/x/exp/constraints"
)

// GetFixed32 reads a little-endian uint32 from the first 4 bytes of b.
func GetFixed32(b []byte) uint32 {
	_ = b[3] // bounds check hint to compiler; see golang.org/issue/14808
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// GetFixed64 reads a little-endian uint64 from the first 8 bytes of b.
func GetFixed64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// AppendFixed32 appends v to b as 4 little-endian bytes.
func AppendFixed32[T constraints.Integer](b []byte, v T) []byte {
	u := uint32(v)
	return append(b, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
}

// AppendFixed64 appends v to b as 8 little-endian bytes.
func AppendFixed64[T constraints.Integer](b []byte, v T) []byte {
	u := uint64(v)
	return append(b,
		byte(u), byte(u>>8), byte(u>>16), byte(u>>24),
		byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56),
	)
}
