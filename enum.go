package sembuf

import (
	"strconv"

	"github.com/bearlytools/sembuf/internal/field"
	"github.com/bearlytools/sembuf/internal/wire"
)

// EnumValue is the decoded value of an enum field. Name is empty when the
// number has no symbol in the field's EnumSet, which can happen when newer
// wire data carries values this process does not know.
type EnumValue struct {
	Name string
	Num  int64
}

// String implements fmt.Stringer.
func (e EnumValue) String() string {
	if e.Name != "" {
		return e.Name
	}
	return strconv.FormatInt(e.Num, 10)
}

// EnumSet is the named-integer set an enum field draws its values from.
type EnumSet struct {
	byName map[string]int64
	byNum  map[int64]string
}

// NewEnumSet builds an EnumSet from a symbol-to-number mapping.
func NewEnumSet(values map[string]int64) EnumSet {
	s := EnumSet{
		byName: make(map[string]int64, len(values)),
		byNum:  make(map[int64]string, len(values)),
	}
	for name, num := range values {
		s.byName[name] = num
		s.byNum[num] = name
	}
	return s
}

// ByName returns the number for a symbol.
func (s EnumSet) ByName(name string) (int64, bool) {
	n, ok := s.byName[name]
	return n, ok
}

// ByNum returns the symbol for a number.
func (s EnumSet) ByNum(num int64) (string, bool) {
	name, ok := s.byNum[num]
	return name, ok
}

// equal reports whether both sets hold exactly the same symbol mapping.
func (s EnumSet) equal(o EnumSet) bool {
	if len(s.byName) != len(o.byName) {
		return false
	}
	for name, num := range s.byName {
		if n, ok := o.byName[name]; !ok || n != num {
			return false
		}
	}
	return true
}

// EnumField describes a named-integer field. The wire encoding is identical
// to a signed integer; the EnumSet exists purely at the semantic layer.
type EnumField struct {
	base
	set EnumSet
}

// NewEnum creates an enum descriptor over the given value set.
func NewEnum(name string, num uint32, set EnumSet, opts ...Option) *EnumField {
	return &EnumField{base: newBase(name, num, field.FTEnum, opts), set: set}
}

// Set returns the descriptor's EnumSet.
func (d *EnumField) Set() EnumSet { return d.set }

// validate accepts an EnumValue, the symbolic name, its decimal-string form
// or a plain integer. Unknown symbols fail; unknown integers pass through so
// that values decoded from newer writers survive a Get/Set round trip.
func (d *EnumField) validate(v any) (any, error) {
	switch t := v.(type) {
	case EnumValue:
		return d.fromNum(t.Num), nil
	case string:
		if n, ok := d.set.ByName(t); ok {
			return EnumValue{Name: t, Num: n}, nil
		}
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return d.fromNum(n), nil
		}
		return nil, typeErrf(d.name, "unknown enum symbol %q", t)
	default:
		if n, ok := coerceInt(v); ok {
			return d.fromNum(n), nil
		}
	}
	return nil, typeErrf(d.name, "cannot coerce %T(%v) to an enum value", v, v)
}

func (d *EnumField) fromNum(n int64) EnumValue {
	name, _ := d.set.ByNum(n)
	return EnumValue{Name: name, Num: n}
}

func (d *EnumField) decode(t wire.Triple, _ *Struct) (any, error) {
	u, err := varintValue(t)
	if err != nil {
		return nil, err
	}
	return d.fromNum(int64(u)), nil
}

func (d *EnumField) encode(b []byte, v any, _ *Struct) ([]byte, error) {
	b = d.appendTag(b)
	return wire.AppendSvarint(b, v.(EnumValue).Num), nil
}

func (d *EnumField) defaultValue(_ *Struct) (any, error) {
	if d.def == nil {
		return d.fromNum(0), nil
	}
	return d.validate(d.def)
}
