package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	// field 1 = varint 300, field 2 = varint 1, field 3 = fixed32,
	// field 4 = 3 bytes, field 5 = fixed64, then field 1 again.
	var buf []byte
	buf = append(buf, Tag(1, TVarint)...)
	buf = AppendUvarint(buf, 300)
	buf = append(buf, Tag(2, TVarint)...)
	buf = AppendUvarint(buf, 1)
	buf = append(buf, Tag(3, TFixed32)...)
	buf = AppendFixed32(buf, uint32(0xdeadbeef))
	buf = append(buf, Tag(4, TBytes)...)
	buf = AppendUvarint(buf, 3)
	buf = append(buf, 'a', 'b', 'c')
	buf = append(buf, Tag(5, TFixed64)...)
	buf = AppendFixed64(buf, uint64(42))
	buf = append(buf, Tag(1, TVarint)...)
	buf = AppendUvarint(buf, 7)

	triples, err := Split(buf, 0, -1)
	require.NoError(t, err)
	require.Len(t, triples, 6)

	wantNums := []uint32{1, 2, 3, 4, 5, 1}
	wantTypes := []Type{TVarint, TVarint, TFixed32, TBytes, TFixed64, TVarint}
	rebuilt := make([]byte, 0, len(buf))
	for i, tr := range triples {
		num, wt, err := SplitTag(tr.Tag)
		require.NoError(t, err)
		assert.Equal(t, wantNums[i], num, "triple %d", i)
		assert.Equal(t, wantTypes[i], wt, "triple %d", i)
		rebuilt = tr.Bytes(rebuilt)
	}

	// Reassembling the triples in order must reproduce the buffer exactly.
	assert.Equal(t, buf, rebuilt)

	assert.Equal(t, []byte("abc"), triples[3].Value)
	assert.Equal(t, []byte{0x03}, triples[3].Length)
	assert.Equal(t, uint32(0xdeadbeef), GetFixed32(triples[2].Value))
	assert.Equal(t, uint64(42), GetFixed64(triples[4].Value))
}

func TestSplitErrors(t *testing.T) {
	tests := []struct {
		desc string
		buf  []byte
		want error
	}{
		{desc: "start group", buf: Tag(1, TStartGroup), want: ErrGroup},
		{desc: "end group", buf: Tag(1, TEndGroup), want: ErrGroup},
		{desc: "wire type 6", buf: Tag(1, Type(6)), want: ErrBadType},
		{desc: "wire type 7", buf: Tag(1, Type(7)), want: ErrBadType},
		{desc: "truncated varint value", buf: []byte{0x08, 0xac}, want: ErrTruncated},
		{desc: "truncated fixed32", buf: append(Tag(1, TFixed32), 0x01, 0x02), want: ErrTruncated},
		{desc: "truncated fixed64", buf: append(Tag(1, TFixed64), 0x01), want: ErrTruncated},
		{desc: "length past end", buf: []byte{0x0a, 0x05, 'a', 'b'}, want: ErrTruncated},
		{desc: "bare tag", buf: []byte{0x08}, want: ErrTruncated},
	}

	for _, test := range tests {
		_, err := Split(test.buf, 0, -1)
		require.Error(t, err, test.desc)
		assert.ErrorIs(t, err, test.want, test.desc)
	}
}

func TestSplitWindow(t *testing.T) {
	var buf []byte
	buf = append(buf, Tag(1, TVarint)...)
	buf = AppendUvarint(buf, 5)
	mid := len(buf)
	buf = append(buf, Tag(2, TVarint)...)
	buf = AppendUvarint(buf, 6)

	triples, err := Split(buf, mid, len(buf))
	require.NoError(t, err)
	require.Len(t, triples, 1)

	num, _, err := SplitTag(triples[0].Tag)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), num)
}
