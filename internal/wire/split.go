package wire

// The splitter walks a raw buffer and slices it into (tag, length, value)
// triples without interpreting field semantics. Slicing depends only on the
// wire type encoded in each tag.

// Triple is one field occurrence on the wire. Tag holds the raw tag bytes,
// Length holds the raw length prefix for LENGTH_DELIMITED values (empty for
// the other wire types) and Value holds the value bytes. All three are
// subslices of the buffer handed to Split; none of them are copies.
type Triple struct {
	Tag    []byte
	Length []byte
	Value  []byte
}

// Bytes appends the triple's full wire representation to b.
func (t Triple) Bytes(b []byte) []byte {
	b = append(b, t.Tag...)
	b = append(b, t.Length...)
	return append(b, t.Value...)
}

// Size is the number of bytes the triple occupies on the wire.
func (t Triple) Size() int {
	return len(t.Tag) + len(t.Length) + len(t.Value)
}

// Split slices b[start:end] into triples in buffer order, preserving
// repeated occurrences of the same tag. end < 0 means the end of the buffer.
// Any malformed field fails the whole call with a *DecodeError.
func Split(b []byte, start, end int) ([]Triple, error) {
	if end < 0 || end > len(b) {
		end = len(b)
	}

	var out []Triple
	pos := start
	for pos < end {
		t, n, err := next(b[:end], pos)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		pos = n
	}
	return out, nil
}

// next slices a single triple out of b at pos and returns it along with the
// position of the next field.
func next(b []byte, pos int) (Triple, int, error) {
	tag, n, err := ReadTag(b, pos)
	if err != nil {
		return Triple{}, pos, err
	}
	_, wt, err := SplitTag(tag)
	if err != nil {
		return Triple{}, pos, err
	}

	t := Triple{Tag: tag}
	switch wt {
	case TVarint:
		// Scan to the end of the embedded varint.
		start := n
		if _, n, err = Uvarint(b, n); err != nil {
			return Triple{}, pos, err
		}
		t.Value = b[start:n]
	case TFixed64:
		if n+8 > len(b) {
			return Triple{}, pos, decodeErr(n, ErrTruncated)
		}
		t.Value = b[n : n+8]
		n += 8
	case TFixed32:
		if n+4 > len(b) {
			return Triple{}, pos, decodeErr(n, ErrTruncated)
		}
		t.Value = b[n : n+4]
		n += 4
	case TBytes:
		start := n
		var size uint64
		if size, n, err = Uvarint(b, n); err != nil {
			return Triple{}, pos, err
		}
		t.Length = b[start:n]
		if size > uint64(len(b)-n) {
			return Triple{}, pos, decodeErr(n, ErrTruncated)
		}
		t.Value = b[n : n+int(size)]
		n += int(size)
	case TStartGroup, TEndGroup:
		return Triple{}, pos, decodeErr(pos, ErrGroup)
	default:
		return Triple{}, pos, decodeErr(pos, ErrBadType)
	}
	return t, n, nil
}
