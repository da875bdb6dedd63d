package sembuf

import (
	"github.com/pkg/errors"

	"github.com/bearlytools/sembuf/internal/field"
	"github.com/bearlytools/sembuf/internal/wire"
)

// EmbedField describes a field holding another struct. The wire value is the
// nested struct's full serialized bytes, length-prefixed. Decoding allocates
// the nested instance but leaves its own fields undecoded, so laziness is
// recursive.
//
// The target class may be given directly or named for late binding: a field
// can reference a class that has not been defined yet (a forward reference,
// a self-reference or one edge of a reference cycle) and is bound when that
// class finishes construction.
type EmbedField struct {
	base
	cls      *StructClass
	typeName string
}

// NewEmbed creates an embedded-struct descriptor bound to target.
func NewEmbed(name string, num uint32, target *StructClass, opts ...Option) *EmbedField {
	return &EmbedField{
		base:     newBase(name, num, field.FTStruct, opts),
		cls:      target,
		typeName: target.Name(),
	}
}

// NewEmbedByName creates an embedded-struct descriptor that names its target
// class instead of holding it. The reference is resolved through the owning
// class's registry once a class with that name finishes construction.
func NewEmbedByName(name string, num uint32, typeName string, opts ...Option) *EmbedField {
	return &EmbedField{
		base:     newBase(name, num, field.FTStruct, opts),
		typeName: typeName,
	}
}

// TypeName returns the name of the target struct class.
func (d *EmbedField) TypeName() string { return d.typeName }

// Class returns the target struct class, or nil while late binding is
// pending.
func (d *EmbedField) Class() *StructClass { return d.cls }

func (d *EmbedField) resolved() bool { return d.cls != nil }

// bind finalizes a late-bound descriptor. Called exactly once by the
// registry callback.
func (d *EmbedField) bind(c *StructClass) { d.cls = c }

func (d *EmbedField) validate(v any) (any, error) {
	s, ok := v.(*Struct)
	if !ok || s == nil {
		return nil, typeErrf(d.name, "cannot coerce %T to *Struct", v)
	}
	if d.cls == nil {
		return nil, errors.Wrapf(ErrUnresolved, "field %q (type %q)", d.name, d.typeName)
	}
	if s.class != d.cls {
		return nil, typeErrf(d.name, "value is a %q, field holds a %q", s.class.Name(), d.typeName)
	}
	return s, nil
}

func (d *EmbedField) decode(t wire.Triple, _ *Struct) (any, error) {
	if d.cls == nil {
		return nil, errors.Wrapf(ErrUnresolved, "field %q (type %q)", d.name, d.typeName)
	}
	s := d.cls.New()
	if err := s.Unmarshal(t.Value); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *EmbedField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	nested, err := v.(*Struct).Marshal()
	if err != nil {
		return nil, err
	}
	return d.appendBytesField(b, nested), nil
}

func (d *EmbedField) defaultValue(_ *Struct) (any, error) {
	if d.cls == nil {
		return nil, errors.Wrapf(ErrUnresolved, "field %q (type %q)", d.name, d.typeName)
	}
	return d.cls.New(), nil
}

// isDirty reports whether the nested struct has diverged from the bytes it
// was decoded from, so that mutating a nested value obtained via Get forces
// the enclosing struct to re-encode.
func (d *EmbedField) isDirty(v any) bool {
	s, ok := v.(*Struct)
	return ok && s.isDirty()
}

// TypeFunc resolves the concrete class of a dynamically typed field from its
// owning container, typically by reading a sibling field. Returning nil
// means the type cannot be determined yet.
type TypeFunc func(owner *Struct) *StructClass

// DynamicField describes an embedded struct whose concrete type is not fixed
// by the descriptor but resolved at encode/decode time via a callback
// receiving the owning container.
type DynamicField struct {
	base
	typeFunc TypeFunc
}

// NewDynamic creates a dynamically typed embedded-struct descriptor.
func NewDynamic(name string, num uint32, typeFunc TypeFunc, opts ...Option) *DynamicField {
	return &DynamicField{
		base:     newBase(name, num, field.FTDynamic, opts),
		typeFunc: typeFunc,
	}
}

// validate accepts any *Struct; the concrete class is the sibling fields'
// business, not the descriptor's.
func (d *DynamicField) validate(v any) (any, error) {
	s, ok := v.(*Struct)
	if !ok || s == nil {
		return nil, typeErrf(d.name, "cannot coerce %T to *Struct", v)
	}
	return s, nil
}

func (d *DynamicField) decode(t wire.Triple, owner *Struct) (any, error) {
	cls := d.typeFunc(owner)
	if cls == nil {
		return nil, typeErrf(d.name, "type callback could not determine the concrete type")
	}
	s := cls.New()
	if err := s.Unmarshal(t.Value); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *DynamicField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	nested, err := v.(*Struct).Marshal()
	if err != nil {
		return nil, err
	}
	return d.appendBytesField(b, nested), nil
}

// defaultValue of a dynamic field is nil: without wire bytes or an explicit
// Set there is no concrete type to materialize.
func (d *DynamicField) defaultValue(_ *Struct) (any, error) {
	return (*Struct)(nil), nil
}

func (d *DynamicField) isDirty(v any) bool {
	s, ok := v.(*Struct)
	return ok && s != nil && s.isDirty()
}
