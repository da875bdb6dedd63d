// Package wire implements the low-level wire codec for sembuf: base-128
// varints, field tags and the buffer splitter. The byte format is the classic
// protocol-buffer wire format, with one deliberate deviation: signed integers
// are mapped into the unsigned 64-bit range by two's complement (adding 2^64
// to negative values) instead of zigzag interleaving. Existing on-wire data
// was written with that transform, so it must be replicated exactly.
package wire

import (
	"errors"
	"fmt"
	"io"
)

// Type is the wire-level encoding discriminator stored in the low 3 bits of
// a field tag. It says how to slice a value out of a buffer, nothing more.
type Type uint8

const (
	TVarint  Type = 0
	TFixed64 Type = 1
	TBytes   Type = 2
	// Types 3 and 4 are the deprecated group markers. They are not
	// supported and fail decoding.
	TStartGroup Type = 3
	TEndGroup   Type = 4
	TFixed32    Type = 5
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TVarint:
		return "VARINT"
	case TFixed64:
		return "FIXED64"
	case TBytes:
		return "LENGTH_DELIMITED"
	case TStartGroup:
		return "START_GROUP"
	case TEndGroup:
		return "END_GROUP"
	case TFixed32:
		return "FIXED32"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Sentinel errors for the codec. A *DecodeError wraps one of these together
// with the buffer offset it occurred at.
var (
	ErrTruncated = io.ErrUnexpectedEOF
	ErrOverflow  = errors.New("variable length integer overflow")
	ErrGroup     = errors.New("cannot parse deprecated group wire type")
	ErrBadType   = errors.New("unsupported wire type")
)

// DecodeError reports malformed wire bytes. It is always fatal to the parse
// of the surrounding buffer.
type DecodeError struct {
	Offset int
	Err    error
}

// Unwrap implements error unwrapping viz errors.Unwrap.
func (e *DecodeError) Unwrap() error { return e.Err }

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("sembuf: decode error at offset %d/%#x: %v", e.Offset, e.Offset, e.Err)
}

func decodeErr(offset int, err error) *DecodeError {
	return &DecodeError{Offset: offset, Err: err}
}

// AppendUvarint appends v to b in base-128 little-endian 7-bit groups with
// the continuation bit set on all but the last byte.
func AppendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// AppendSvarint appends a signed value. Negative values are first mapped
// into the unsigned 64-bit range by adding 2^64, which in Go is simply the
// two's-complement uint64 conversion. This is NOT zigzag encoding; see the
// package comment.
func AppendSvarint(b []byte, v int64) []byte {
	return AppendUvarint(b, uint64(v))
}

// Uvarint decodes an unsigned varint from b starting at pos. It returns the
// value and the position of the first byte after it. Decoding fails if the
// buffer ends while the continuation bit is set or if more than 64 bits of
// shift would be required.
func Uvarint(b []byte, pos int) (uint64, int, error) {
	var v uint64
	for shift := uint(0); ; shift += 7 {
		if shift >= 64 {
			return 0, pos, decodeErr(pos, ErrOverflow)
		}
		if pos >= len(b) {
			return 0, pos, decodeErr(pos, ErrTruncated)
		}
		c := b[pos]
		pos++
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, pos, nil
		}
	}
}

// Svarint decodes a signed varint, inverting the AppendSvarint transform.
func Svarint(b []byte, pos int) (int64, int, error) {
	v, n, err := Uvarint(b, pos)
	return int64(v), n, err
}

// UvarintSize reports how many bytes AppendUvarint will write for v.
func UvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Tag returns the encoded tag for a field number and wire type:
// UVarint((fieldNum << 3) | wireType).
func Tag(fieldNum uint32, wt Type) []byte {
	return AppendUvarint(nil, uint64(fieldNum)<<3|uint64(wt))
}

// ReadTag scans forward from pos while the continuation bit is set and
// returns the raw tag bytes and the new position. It does not interpret the
// tag beyond checking that it isn't truncated.
func ReadTag(b []byte, pos int) ([]byte, int, error) {
	start := pos
	for {
		if pos >= len(b) {
			return nil, start, decodeErr(start, ErrTruncated)
		}
		if pos-start >= 10 {
			return nil, start, decodeErr(start, ErrOverflow)
		}
		c := b[pos]
		pos++
		if c&0x80 == 0 {
			return b[start:pos], pos, nil
		}
	}
}

// SplitTag decodes raw tag bytes into the field number and wire type.
func SplitTag(tag []byte) (uint32, Type, error) {
	v, _, err := Uvarint(tag, 0)
	if err != nil {
		return 0, 0, err
	}
	return uint32(v >> 3), Type(v & 0x7), nil
}
