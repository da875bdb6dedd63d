package sembuf

import (
	"github.com/pkg/errors"

	"github.com/bearlytools/sembuf/internal/wire"
)

// RepeatedField wraps any other descriptor to describe a repeated field. The
// wire representation is one independently tagged occurrence per element
// (unpacked encoding); there is no length-delimited packing.
type RepeatedField struct {
	elem FieldDescriptor
}

// NewRepeated creates a repeated descriptor around an element descriptor.
func NewRepeated(elem FieldDescriptor) *RepeatedField {
	return &RepeatedField{elem: elem}
}

// Elem returns the element descriptor.
func (d *RepeatedField) Elem() FieldDescriptor { return d.elem }

func (d *RepeatedField) Name() string        { return d.elem.Name() }
func (d *RepeatedField) FieldNumber() uint32 { return d.elem.FieldNumber() }
func (d *RepeatedField) Type() FieldType     { return d.elem.Type() }
func (d *RepeatedField) Description() string { return d.elem.Description() }
func (d *RepeatedField) Repeated() bool      { return true }

func (d *RepeatedField) tag() []byte    { return d.elem.tag() }
func (d *RepeatedField) resolved() bool { return d.elem.resolved() }

// validate accepts a *List over a compatible element descriptor, or a []any
// whose members each pass the element descriptor's validation.
func (d *RepeatedField) validate(v any) (any, error) {
	switch t := v.(type) {
	case *List:
		if t.elem.Type() != d.elem.Type() {
			return nil, typeErrf(d.Name(), "list holds %v elements, field holds %v", t.elem.Type(), d.elem.Type())
		}
		if err := d.checkElem(t.elem); err != nil {
			return nil, err
		}
		return t, nil
	case []any:
		l := newList(d.elem, nil)
		if err := l.Extend(t...); err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, typeErrf(d.Name(), "cannot coerce %T to a repeated value", v)
}

// checkElem verifies that a list built over other may serve this field.
// Matching semantic types are not enough for embeds and enums: the bytes
// would marshal under this field's tag and silently re-decode as the wrong
// class or value set.
func (d *RepeatedField) checkElem(other FieldDescriptor) error {
	switch de := d.elem.(type) {
	case *EmbedField:
		if de.cls == nil {
			return errors.Wrapf(ErrUnresolved, "field %q (type %q)", d.Name(), de.typeName)
		}
		oe, ok := other.(*EmbedField)
		if !ok || oe.cls != de.cls {
			return typeErrf(d.Name(), "list holds %q elements, field holds %q", elemTypeName(other), de.typeName)
		}
	case *EnumField:
		oe, ok := other.(*EnumField)
		if !ok || !de.set.equal(oe.set) {
			return typeErrf(d.Name(), "list elements draw from a different enum set")
		}
	}
	return nil
}

func elemTypeName(fd FieldDescriptor) string {
	if e, ok := fd.(*EmbedField); ok {
		return e.typeName
	}
	return fd.Type().String()
}

// decode turns a single wire occurrence into a one-element list. The
// container normally bypasses this and appends occurrences to the field's
// existing list as it parses.
func (d *RepeatedField) decode(t wire.Triple, owner *Struct) (any, error) {
	l := newList(d.elem, owner)
	l.appendRaw(t)
	return l, nil
}

func (d *RepeatedField) encode(b []byte, v any, owner *Struct) ([]byte, error) {
	l := v.(*List)
	var err error
	for _, e := range l.entries {
		// Untouched elements round-trip their original bytes.
		if e.raw.Tag != nil && !(e.hasValue && d.elem.isDirty(e.value)) {
			b = e.raw.Bytes(b)
			continue
		}
		if b, err = d.elem.encode(b, e.value, owner); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (d *RepeatedField) defaultValue(owner *Struct) (any, error) {
	return newList(d.elem, owner), nil
}

func (d *RepeatedField) isDirty(v any) bool {
	l, ok := v.(*List)
	return ok && l.IsDirty()
}

// List is the repeated-field helper: a list of lazily decoded elements
// sharing one element descriptor and the container's cache contract. Each
// element keeps its original wire bytes until it is mutated, so an untouched
// list re-serializes byte for byte.
type List struct {
	elem    FieldDescriptor
	owner   *Struct
	entries []*listEntry

	// mutated is set by any structural change (Append, Extend).
	mutated bool
}

// listEntry mirrors the container's per-field cache entry: at least one of
// value/raw is populated after any access.
type listEntry struct {
	value    any
	hasValue bool
	raw      wire.Triple // zero Tag means no wire bytes
}

func newList(elem FieldDescriptor, owner *Struct) *List {
	return &List{elem: elem, owner: owner}
}

// NewList creates an empty list whose elements are validated by elem.
func NewList(elem FieldDescriptor) *List {
	return newList(elem, nil)
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.entries) }

// Append validates v against the element descriptor and appends it.
func (l *List) Append(v any) error {
	cv, err := l.elem.validate(v)
	if err != nil {
		return err
	}
	l.entries = append(l.entries, &listEntry{value: cv, hasValue: true})
	l.mutated = true
	return nil
}

// MustAppend is Append that panics on validation failure.
func (l *List) MustAppend(v any) {
	if err := l.Append(v); err != nil {
		panic(err)
	}
}

// Extend appends each value in order, stopping at the first failure.
func (l *List) Extend(vs ...any) error {
	for _, v := range vs {
		if err := l.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// Index returns the element at i, decoding it from its wire bytes on first
// access. The decoded value is memoized without marking anything dirty.
func (l *List) Index(i int) (any, error) {
	e := l.entries[i]
	if e.hasValue {
		return e.value, nil
	}
	v, err := l.elem.decode(e.raw, l.owner)
	if err != nil {
		return nil, err
	}
	e.value = v
	e.hasValue = true
	return v, nil
}

// MustIndex is Index that panics on a decode failure.
func (l *List) MustIndex(i int) any {
	v, err := l.Index(i)
	if err != nil {
		panic(err)
	}
	return v
}

// Slice returns a new helper over elements [i:j). Element entries are shared
// with the receiver, not deep-copied, so lazy decodes in one are visible in
// the other.
func (l *List) Slice(i, j int) *List {
	return &List{elem: l.elem, owner: l.owner, entries: l.entries[i:j:j]}
}

// Values decodes every element and returns them as a fresh slice.
func (l *List) Values() ([]any, error) {
	out := make([]any, len(l.entries))
	for i := range l.entries {
		v, err := l.Index(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// IsDirty reports whether the list was structurally mutated or any element
// reports itself dirty. Elements are checked lazily and the scan stops at
// the first positive.
func (l *List) IsDirty() bool {
	if l.mutated {
		return true
	}
	for _, e := range l.entries {
		if e.raw.Tag == nil {
			return true
		}
		if e.hasValue && l.elem.isDirty(e.value) {
			return true
		}
	}
	return false
}

// appendRaw adds an element backed only by wire bytes. Used during parse; it
// does not count as a structural mutation.
func (l *List) appendRaw(t wire.Triple) {
	l.entries = append(l.entries, &listEntry{raw: t})
}
