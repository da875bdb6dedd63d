package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// Each value exercises a 7-bit grouping boundary.
var varintBoundaries = []uint64{0, 1, 127, 128, 16383, 16384, math.MaxInt64, math.MaxUint64}

func TestUvarintRoundTrip(t *testing.T) {
	for _, v := range varintBoundaries {
		b := AppendUvarint(nil, v)

		// The reference implementation must agree byte for byte.
		assert.Equal(t, protowire.AppendVarint(nil, v), b, "value %d", v)
		assert.Equal(t, UvarintSize(v), len(b), "value %d", v)

		got, n, err := Uvarint(b, 0)
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, v, got, "value %d", v)
		assert.Equal(t, len(b), n, "value %d", v)
	}
}

func TestSvarintTransform(t *testing.T) {
	// Negative values take the two's-complement transform, not zigzag:
	// -1 becomes 2^64-1 and encodes as ten bytes. Anyone "fixing" this to
	// canonical sint encoding breaks compatibility with stored data.
	b := AppendSvarint(nil, -1)
	want := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	require.Equal(t, want, b)

	for _, v := range []int64{0, 1, -1, 300, -300, math.MaxInt64, math.MinInt64} {
		b := AppendSvarint(nil, v)
		assert.Equal(t, protowire.AppendVarint(nil, uint64(v)), b, "value %d", v)

		got, n, err := Svarint(b, 0)
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, v, got, "value %d", v)
		assert.Equal(t, len(b), n, "value %d", v)
	}
}

func TestUvarintErrors(t *testing.T) {
	tests := []struct {
		desc string
		buf  []byte
		want error
	}{
		{desc: "empty buffer", buf: nil, want: ErrTruncated},
		{desc: "continuation bit at end", buf: []byte{0xac}, want: ErrTruncated},
		{desc: "more than 64 bits of shift", buf: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, want: ErrOverflow},
	}

	for _, test := range tests {
		_, _, err := Uvarint(test.buf, 0)
		require.Error(t, err, test.desc)
		assert.ErrorIs(t, err, test.want, test.desc)

		var de *DecodeError
		assert.ErrorAs(t, err, &de, test.desc)
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		fieldNum uint32
		wt       Type
		want     []byte
	}{
		{1, TVarint, []byte{0x08}},
		{2, TVarint, []byte{0x10}},
		{1, TBytes, []byte{0x0a}},
		{3, TFixed32, []byte{0x1d}},
		{300, TVarint, []byte{0xe0, 0x12}},
	}

	for _, test := range tests {
		got := Tag(test.fieldNum, test.wt)
		require.Equal(t, test.want, got, "field %d wire type %v", test.fieldNum, test.wt)

		num, wt, err := SplitTag(got)
		require.NoError(t, err)
		assert.Equal(t, test.fieldNum, num)
		assert.Equal(t, test.wt, wt)
	}
}

func TestReadTag(t *testing.T) {
	buf := append(Tag(300, TVarint), 0x05)
	tag, pos, err := ReadTag(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xe0, 0x12}, tag)
	assert.Equal(t, 2, pos)

	_, _, err = ReadTag([]byte{0x80}, 0)
	assert.ErrorIs(t, err, ErrTruncated)

	_, _, err = ReadTag(nil, 0)
	assert.ErrorIs(t, err, ErrTruncated)
}
