package sembuf

import (
	"github.com/bearlytools/sembuf/internal/field"
	"github.com/bearlytools/sembuf/internal/wire"
)

// FieldDescriptor describes one field of a struct class: its name, field
// number, semantic type and default, plus the codec operations the container
// drives. The codec methods are unexported, so the set of implementations is
// sealed to this package: scalars, enums, embedded structs, dynamically
// typed embeds and the repeated wrapper.
//
// Descriptors are immutable once their owning class is finalized.
type FieldDescriptor interface {
	// Name is the field's name inside its struct class.
	Name() string
	// FieldNumber is the proto field number the tag is derived from.
	FieldNumber() uint32
	// Type is the semantic type layered on top of the wire type.
	Type() FieldType
	// Description is optional human documentation for the field.
	Description() string
	// Repeated reports whether the field holds a list of values.
	Repeated() bool

	// tag returns the exact encoded tag bytes, computed at construction.
	// An unresolved field's tag is simply not indexed for decoding until
	// its target binds.
	tag() []byte
	// resolved reports whether any late-bound target has been bound.
	resolved() bool
	// decode turns one wire triple into the field's semantic value.
	decode(t wire.Triple, owner *Struct) (any, error)
	// encode appends the field's full wire bytes, tag included, to b.
	encode(b []byte, v any, owner *Struct) ([]byte, error)
	// validate coerces a raw value on Set, or fails with *TypeValueError.
	validate(v any) (any, error)
	// defaultValue is the value of a never-populated field.
	defaultValue(owner *Struct) (any, error)
	// isDirty reports whether a decoded value has diverged from the raw
	// bytes it was decoded from. Always false for scalars.
	isDirty(v any) bool
}

// Option configures a field descriptor at construction time.
type Option func(*base)

// WithDefault sets the value returned for a never-populated field. The value
// goes through the same validation as Set, at first use.
func WithDefault(v any) Option {
	return func(b *base) { b.def = v }
}

// WithDescription attaches documentation to the descriptor.
func WithDescription(s string) Option {
	return func(b *base) { b.desc = s }
}

// base carries the pieces every descriptor variant shares.
type base struct {
	name  string
	num   uint32
	ftype field.Type
	desc  string
	def   any

	// tagBytes is the encoded tag, computed once the wire type is known.
	tagBytes []byte
}

func newBase(name string, num uint32, ftype field.Type, opts []Option) base {
	b := base{name: name, num: num, ftype: ftype}
	b.tagBytes = wire.Tag(num, ftype.WireType())
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *base) Name() string        { return b.name }
func (b *base) FieldNumber() uint32 { return b.num }
func (b *base) Type() FieldType     { return b.ftype }
func (b *base) Description() string { return b.desc }
func (b *base) Repeated() bool      { return false }

func (b *base) tag() []byte      { return b.tagBytes }
func (b *base) resolved() bool   { return true }
func (b *base) isDirty(any) bool { return false }

// appendTag writes the descriptor's tag into an output buffer.
func (b *base) appendTag(out []byte) []byte {
	return append(out, b.tagBytes...)
}

// appendBytesField writes a LENGTH_DELIMITED field: tag, varint length,
// value bytes.
func (b *base) appendBytesField(out []byte, v []byte) []byte {
	out = b.appendTag(out)
	out = wire.AppendUvarint(out, uint64(len(v)))
	return append(out, v...)
}
