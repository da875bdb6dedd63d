package sembuf

// This file holds the scalar field descriptors. Each one knows how to
// validate a raw value into its canonical Go type, encode that type onto the
// wire and decode a wire triple back. Scalars are never dirty: their decoded
// value cannot be mutated in place.

import (
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/bearlytools/sembuf/internal/field"
	"github.com/bearlytools/sembuf/internal/wire"
)

// coerceUint converts the integer kinds Set accepts into a uint64. Negative
// values do not coerce.
func coerceUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

// coerceInt converts the integer kinds Set accepts into an int64.
func coerceInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// varintValue decodes the single uvarint a VARINT triple holds, rejecting
// trailing garbage.
func varintValue(t wire.Triple) (uint64, error) {
	v, n, err := wire.Uvarint(t.Value, 0)
	if err != nil {
		return 0, err
	}
	if n != len(t.Value) {
		return 0, &DecodeError{Offset: n, Err: ErrOverflow}
	}
	return v, nil
}

// UintField describes an unsigned integer field carried as an unsigned varint.
type UintField struct {
	base
}

// NewUint creates an unsigned integer descriptor.
func NewUint(name string, num uint32, opts ...Option) *UintField {
	return &UintField{base: newBase(name, num, field.FTUint, opts)}
}

func (d *UintField) validate(v any) (any, error) {
	n, ok := coerceUint(v)
	if !ok {
		return nil, typeErrf(d.name, "cannot coerce %T(%v) to uint64", v, v)
	}
	return n, nil
}

func (d *UintField) decode(t wire.Triple, _ *Struct) (any, error) {
	return varintValue(t)
}

func (d *UintField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	b = d.appendTag(b)
	return wire.AppendUvarint(b, v.(uint64)), nil
}

func (d *UintField) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return uint64(0), nil
	}
	return d.validate(d.def)
}

// IntField describes a signed integer field. Negative values are carried on the
// wire as their two's-complement uint64 image, not zigzag encoded.
type IntField struct {
	base
}

// NewInt creates a signed integer descriptor.
func NewInt(name string, num uint32, opts ...Option) *IntField {
	return &IntField{base: newBase(name, num, field.FTInt, opts)}
}

func (d *IntField) validate(v any) (any, error) {
	n, ok := coerceInt(v)
	if !ok {
		return nil, typeErrf(d.name, "cannot coerce %T(%v) to int64", v, v)
	}
	return n, nil
}

func (d *IntField) decode(t wire.Triple, _ *Struct) (any, error) {
	u, err := varintValue(t)
	if err != nil {
		return nil, err
	}
	return int64(u), nil
}

func (d *IntField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	b = d.appendTag(b)
	return wire.AppendSvarint(b, v.(int64)), nil
}

func (d *IntField) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return int64(0), nil
	}
	return d.validate(d.def)
}

// BoolField describes a boolean field, carried as a 0/1 varint.
type BoolField struct {
	base
}

// NewBool creates a boolean descriptor.
func NewBool(name string, num uint32, opts ...Option) *BoolField {
	return &BoolField{base: newBase(name, num, field.FTBool, opts)}
}

func (d *BoolField) validate(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case int:
		if t == 0 || t == 1 {
			return t == 1, nil
		}
	case uint64:
		if t == 0 || t == 1 {
			return t == 1, nil
		}
	}
	return nil, typeErrf(d.name, "cannot coerce %T(%v) to bool", v, v)
}

func (d *BoolField) decode(t wire.Triple, _ *Struct) (any, error) {
	u, err := varintValue(t)
	if err != nil {
		return nil, err
	}
	return u != 0, nil
}

func (d *BoolField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	b = d.appendTag(b)
	if v.(bool) {
		return wire.AppendUvarint(b, 1), nil
	}
	return wire.AppendUvarint(b, 0), nil
}

func (d *BoolField) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return false, nil
	}
	return d.validate(d.def)
}

// Fixed32Field describes an unsigned integer stored in exactly 4 little-endian
// bytes.
type Fixed32Field struct {
	base
}

// NewFixed32 creates a fixed-width 32-bit descriptor.
func NewFixed32(name string, num uint32, opts ...Option) *Fixed32Field {
	return &Fixed32Field{base: newBase(name, num, field.FTFixed32, opts)}
}

func (d *Fixed32Field) validate(v any) (any, error) {
	n, ok := coerceUint(v)
	if !ok || n > math.MaxUint32 {
		return nil, typeErrf(d.name, "cannot coerce %T(%v) to uint32", v, v)
	}
	return uint32(n), nil
}

func (d *Fixed32Field) decode(t wire.Triple, _ *Struct) (any, error) {
	return wire.GetFixed32(t.Value), nil
}

func (d *Fixed32Field) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	b = d.appendTag(b)
	return wire.AppendFixed32(b, v.(uint32)), nil
}

func (d *Fixed32Field) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return uint32(0), nil
	}
	return d.validate(d.def)
}

// Fixed64Field describes an unsigned integer stored in exactly 8 little-endian
// bytes.
type Fixed64Field struct {
	base
}

// NewFixed64 creates a fixed-width 64-bit descriptor.
func NewFixed64(name string, num uint32, opts ...Option) *Fixed64Field {
	return &Fixed64Field{base: newBase(name, num, field.FTFixed64, opts)}
}

func (d *Fixed64Field) validate(v any) (any, error) {
	n, ok := coerceUint(v)
	if !ok {
		return nil, typeErrf(d.name, "cannot coerce %T(%v) to uint64", v, v)
	}
	return n, nil
}

func (d *Fixed64Field) decode(t wire.Triple, _ *Struct) (any, error) {
	return wire.GetFixed64(t.Value), nil
}

func (d *Fixed64Field) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	b = d.appendTag(b)
	return wire.AppendFixed64(b, v.(uint64)), nil
}

func (d *Fixed64Field) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return uint64(0), nil
	}
	return d.validate(d.def)
}

// FloatField describes an IEEE-754 single-precision field on the FIXED32 wire
// type.
type FloatField struct {
	base
}

// NewFloat creates a float32 descriptor.
func NewFloat(name string, num uint32, opts ...Option) *FloatField {
	return &FloatField{base: newBase(name, num, field.FTFloat, opts)}
}

func (d *FloatField) validate(v any) (any, error) {
	switch t := v.(type) {
	case float32:
		return t, nil
	case float64:
		return float32(t), nil
	case int:
		return float32(t), nil
	}
	return nil, typeErrf(d.name, "cannot coerce %T(%v) to float32", v, v)
}

func (d *FloatField) decode(t wire.Triple, _ *Struct) (any, error) {
	return math.Float32frombits(wire.GetFixed32(t.Value)), nil
}

func (d *FloatField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	b = d.appendTag(b)
	return wire.AppendFixed32(b, math.Float32bits(v.(float32))), nil
}

func (d *FloatField) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return float32(0), nil
	}
	return d.validate(d.def)
}

// DoubleField describes an IEEE-754 double-precision field on the FIXED64 wire
// type.
type DoubleField struct {
	base
}

// NewDouble creates a float64 descriptor.
func NewDouble(name string, num uint32, opts ...Option) *DoubleField {
	return &DoubleField{base: newBase(name, num, field.FTDouble, opts)}
}

func (d *DoubleField) validate(v any) (any, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	}
	return nil, typeErrf(d.name, "cannot coerce %T(%v) to float64", v, v)
}

func (d *DoubleField) decode(t wire.Triple, _ *Struct) (any, error) {
	return math.Float64frombits(wire.GetFixed64(t.Value)), nil
}

func (d *DoubleField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	b = d.appendTag(b)
	return wire.AppendFixed64(b, math.Float64bits(v.(float64))), nil
}

func (d *DoubleField) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return float64(0), nil
	}
	return d.validate(d.def)
}

// StringField describes a UTF-8 text field. Invalid UTF-8 fails both validation
// and decoding.
type StringField struct {
	base
}

// NewString creates a string descriptor.
func NewString(name string, num uint32, opts ...Option) *StringField {
	return &StringField{base: newBase(name, num, field.FTString, opts)}
}

func (d *StringField) validate(v any) (any, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return nil, typeErrf(d.name, "cannot coerce %T to string", v)
	}
	if !utf8.ValidString(s) {
		return nil, typeErrf(d.name, "value is not valid UTF-8")
	}
	return s, nil
}

func (d *StringField) decode(t wire.Triple, _ *Struct) (any, error) {
	if !utf8.Valid(t.Value) {
		return nil, errors.Wrapf(ErrUTF8, "field %q", d.name)
	}
	return string(t.Value), nil
}

func (d *StringField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	return d.appendBytesField(b, []byte(v.(string))), nil
}

func (d *StringField) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return "", nil
	}
	return d.validate(d.def)
}

// BytesField describes an opaque byte-sequence field.
type BytesField struct {
	base
}

// NewBytes creates a bytes descriptor.
func NewBytes(name string, num uint32, opts ...Option) *BytesField {
	return &BytesField{base: newBase(name, num, field.FTBytes, opts)}
}

func (d *BytesField) validate(v any) (any, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	}
	return nil, typeErrf(d.name, "cannot coerce %T to []byte", v)
}

func (d *BytesField) decode(t wire.Triple, _ *Struct) (any, error) {
	return t.Value, nil
}

func (d *BytesField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	return d.appendBytesField(b, v.([]byte)), nil
}

func (d *BytesField) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return []byte(nil), nil
	}
	return d.validate(d.def)
}
