package sembuf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gostdlib/base/context"
	"github.com/pkg/errors"

	"github.com/bearlytools/sembuf/internal/field"
	"github.com/bearlytools/sembuf/internal/wire"
)

// unknownKey builds the synthetic cache key for the nth unknown field seen
// during a parse. Unknown fields (valid wire bytes with no matching
// descriptor) are preserved so that re-serializing an untouched instance
// reproduces the original bytes exactly.
func unknownKey(n int) string {
	return fmt.Sprintf("!unknown:%d", n)
}

// cacheEntry is the per-field cache: after any access at least one of
// value/raw is populated. Reads upgrade raw-only to both; writes collapse to
// value-only, dropping the raw bytes.
type cacheEntry struct {
	fd FieldDescriptor // nil for unknown fields

	value    any
	hasValue bool
	raw      *wire.Triple

	// fromDefault marks a composite default materialized by Get. Such an
	// entry serializes only once something actually mutated it.
	fromDefault bool
}

// dirty reports whether the entry's decoded value has diverged from its raw
// bytes and must be re-encoded before serialization.
func (e *cacheEntry) dirty() bool {
	if e.fd == nil {
		return false
	}
	if e.hasValue && e.fd.isDirty(e.value) {
		return true
	}
	if e.fromDefault || e.fd.Repeated() {
		// Repeated dirtiness lives in the list, checked above.
		return false
	}
	return e.raw == nil && e.hasValue
}

// Struct is an instance of a StructClass: a mapping from field name to a
// cache entry holding the decoded value, the raw wire bytes, or both.
// Parsing stores raw bytes only; fields decode lazily on first access and
// the decoded value is memoized next to the untouched bytes, so a pure read
// never changes what the instance serializes to.
//
// A Struct provides no internal synchronization. Share one across goroutines
// only with external locking, or hand it off wholesale; independent
// instances need no coordination.
type Struct struct {
	class   *StructClass
	entries map[string]*cacheEntry
	// order records first-populated order, which is what serialization
	// walks: it preserves source byte ordering on round trip.
	order []string

	// modified is set by Set, Delete and Clear.
	modified   bool
	unknownSeq int
}

// Class returns the struct's class.
func (s *Struct) Class() *StructClass { return s.class }

func (s *Struct) insert(name string, e *cacheEntry) {
	s.entries[name] = e
	s.order = append(s.order, name)
}

func (s *Struct) reset() {
	s.entries = map[string]*cacheEntry{}
	s.order = nil
	s.unknownSeq = 0
	s.modified = false
}

// isDirty reports whether any part of the instance has diverged from the
// bytes it was parsed from.
func (s *Struct) isDirty() bool {
	if s.modified {
		return true
	}
	for _, e := range s.entries {
		if e.dirty() {
			return true
		}
	}
	return false
}

// Get returns the field's value: the memoized decoded value if present,
// else the value decoded from cached raw bytes (memoized, without marking
// anything dirty), else the descriptor's default. Struct and repeated
// defaults are stored as the live value, so mutating the result of Get is
// observed by later reads and by serialization.
func (s *Struct) Get(name string) (any, error) {
	fd, ok := s.class.byName[name]
	if !ok {
		return nil, &UnknownFieldError{Class: s.class.name, Field: name}
	}

	e := s.entries[name]
	if e == nil {
		v, err := fd.defaultValue(s)
		if err != nil {
			return nil, err
		}
		if l, ok := v.(*List); ok {
			l.owner = s
		}
		if fd.Repeated() || fd.Type() == field.FTStruct {
			s.insert(name, &cacheEntry{fd: fd, value: v, hasValue: true, fromDefault: true})
		}
		return v, nil
	}

	if e.hasValue {
		return e.value, nil
	}
	v, err := fd.decode(*e.raw, s)
	if err != nil {
		return nil, err
	}
	e.value = v
	e.hasValue = true
	return v, nil
}

// MustGet is Get that panics on error.
func (s *Struct) MustGet(name string) any {
	v, err := s.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Set validates and stores a value, clearing any cached raw bytes for the
// field and marking the instance dirty. Validation failures are
// *TypeValueError and happen here, never at serialize time.
func (s *Struct) Set(name string, v any) error {
	fd, ok := s.class.byName[name]
	if !ok {
		return &UnknownFieldError{Class: s.class.name, Field: name}
	}
	cv, err := fd.validate(v)
	if err != nil {
		return err
	}
	if l, ok := cv.(*List); ok {
		l.owner = s
	}

	e := s.entries[name]
	if e == nil {
		e = &cacheEntry{fd: fd}
		s.insert(name, e)
	}
	e.value = cv
	e.hasValue = true
	e.raw = nil
	e.fromDefault = false
	s.modified = true
	return nil
}

// MustSet is Set that panics on error.
func (s *Struct) MustSet(name string, v any) {
	if err := s.Set(name, v); err != nil {
		panic(err)
	}
}

// Has reports whether the field is populated: set explicitly, present in
// parsed bytes, or mutated after its default was materialized by Get. Names
// the class does not declare report false, synthetic unknown keys included.
func (s *Struct) Has(name string) bool {
	if _, ok := s.class.byName[name]; !ok {
		return false
	}
	e := s.entries[name]
	if e == nil {
		return false
	}
	if e.fromDefault {
		return e.dirty()
	}
	return true
}

// Delete removes the field's cache entry, so the field reads as its default
// and no longer serializes.
func (s *Struct) Delete(name string) error {
	if _, ok := s.class.byName[name]; !ok {
		return &UnknownFieldError{Class: s.class.name, Field: name}
	}
	if _, ok := s.entries[name]; !ok {
		return nil
	}
	delete(s.entries, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.modified = true
	return nil
}

// Clear removes every field, including preserved unknown fields.
func (s *Struct) Clear() {
	s.reset()
	s.modified = true
}

// Marshal serializes the instance. Fields are written in first-populated
// order; any field whose raw bytes are cached and untouched is copied
// verbatim (including unknown fields), everything else is re-encoded from
// its decoded value.
func (s *Struct) Marshal() ([]byte, error) {
	ctx := context.Background()
	buffp := marshalBuffers.Get(ctx)
	buf := (*buffp)[:0]
	defer func() {
		*buffp = buf[:0]
		marshalBuffers.Put(ctx, buffp)
	}()

	var err error
	for _, name := range s.order {
		if buf, err = s.appendField(buf, s.entries[name]); err != nil {
			return nil, errors.Wrapf(err, "serializing struct %q field %q", s.class.name, name)
		}
	}

	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

func (s *Struct) appendField(b []byte, e *cacheEntry) ([]byte, error) {
	// Unknown field: its bytes are all we have and all we need.
	if e.fd == nil {
		return e.raw.Bytes(b), nil
	}
	// A default Get materialized but nothing ever touched: not populated.
	if e.fromDefault && !e.dirty() {
		return b, nil
	}
	// Untouched raw bytes round-trip verbatim.
	if e.raw != nil && !(e.hasValue && e.fd.isDirty(e.value)) {
		return e.raw.Bytes(b), nil
	}
	return e.fd.encode(b, e.value, s)
}

// Unmarshal replaces the instance's contents with the fields parsed from b.
// Values are not decoded; each field's raw bytes are cached for lazy decode
// on access. Tags with no matching descriptor are preserved under synthetic
// keys; repeated-field tags append in order; singular tags are last-write-
// wins. A malformed buffer fails the whole call and leaves the receiver
// untouched.
func (s *Struct) Unmarshal(b []byte) error {
	triples, err := wire.Split(b, 0, -1)
	if err != nil {
		return errors.Wrapf(err, "parsing struct %q", s.class.name)
	}

	s.reset()
	for i := range triples {
		t := &triples[i]
		fd := s.class.byTag[string(t.Tag)]
		if fd == nil {
			s.insert(unknownKey(s.unknownSeq), &cacheEntry{raw: t})
			s.unknownSeq++
			continue
		}

		name := fd.Name()
		e := s.entries[name]
		if fd.Repeated() {
			if e == nil {
				l := newList(fd.(*RepeatedField).elem, s)
				e = &cacheEntry{fd: fd, value: l, hasValue: true}
				s.insert(name, e)
			}
			e.value.(*List).appendRaw(*t)
			continue
		}

		if e == nil {
			e = &cacheEntry{fd: fd}
			s.insert(name, e)
		}
		e.raw = t
		e.value = nil
		e.hasValue = false
		e.fromDefault = false
	}
	return nil
}

// Copy produces an independent instance without eagerly decoding: dirty
// fields are materialized to wire bytes first, then only wire bytes are
// carried over, so the copy re-decodes on its own and shares no mutable
// nested object with the source.
func (s *Struct) Copy() (*Struct, error) {
	b, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	n := s.class.New()
	if err := n.Unmarshal(b); err != nil {
		return nil, err
	}
	return n, nil
}

// MustCopy is Copy that panics on error.
func (s *Struct) MustCopy() *Struct {
	n, err := s.Copy()
	if err != nil {
		panic(err)
	}
	return n
}

// Equal reports structural equality: both instances have the same class and
// the same populated fields, and each pair of decoded values is recursively
// equal. This forces full decode of both operands. Preserved unknown fields
// compare by their raw bytes, in order.
func (s *Struct) Equal(o *Struct) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.class != o.class {
		return false
	}
	for _, fd := range s.class.fields {
		name := fd.Name()
		has := s.Has(name)
		if has != o.Has(name) {
			return false
		}
		if !has {
			continue
		}
		av, aerr := s.Get(name)
		bv, berr := o.Get(name)
		if aerr != nil || berr != nil {
			return false
		}
		if !valueEqual(fd, av, bv) {
			return false
		}
	}

	su, ou := s.unknownRaw(), o.unknownRaw()
	if len(su) != len(ou) {
		return false
	}
	for i := range su {
		if !bytes.Equal(su[i], ou[i]) {
			return false
		}
	}
	return true
}

func (s *Struct) unknownRaw() [][]byte {
	var out [][]byte
	for _, name := range s.order {
		if e := s.entries[name]; e.fd == nil {
			out = append(out, e.raw.Bytes(nil))
		}
	}
	return out
}

func valueEqual(fd FieldDescriptor, a, b any) bool {
	if fd.Repeated() {
		al, aok := a.(*List)
		bl, bok := b.(*List)
		if !aok || !bok || al.Len() != bl.Len() {
			return false
		}
		elem := fd.(*RepeatedField).elem
		for i := 0; i < al.Len(); i++ {
			av, aerr := al.Index(i)
			bv, berr := bl.Index(i)
			if aerr != nil || berr != nil || !valueEqual(elem, av, bv) {
				return false
			}
		}
		return true
	}

	switch fd.Type() {
	case field.FTStruct, field.FTDynamic:
		as, aok := a.(*Struct)
		bs, bok := b.(*Struct)
		if !aok || !bok {
			return false
		}
		return as.Equal(bs)
	case field.FTBytes:
		ab, aok := a.([]byte)
		bb, bok := b.([]byte)
		return aok && bok && bytes.Equal(ab, bb)
	case field.FTEnum:
		ae, aok := a.(EnumValue)
		be, bok := b.(EnumValue)
		return aok && bok && ae.Num == be.Num
	}
	return a == b
}

// String renders the populated fields for debugging. It decodes lazily but
// never dirties anything.
func (s *Struct) String() string {
	var b strings.Builder
	b.WriteString(s.class.name)
	b.WriteByte('{')
	first := true
	for _, fd := range s.class.fields {
		if !s.Has(fd.Name()) {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		v, err := s.Get(fd.Name())
		if err != nil {
			fmt.Fprintf(&b, "%s: <%v>", fd.Name(), err)
			continue
		}
		fmt.Fprintf(&b, "%s: %v", fd.Name(), v)
	}
	if n := len(s.unknownRaw()); n > 0 {
		if !first {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "<%d unknown>", n)
	}
	b.WriteByte('}')
	return b.String()
}
