// Package field defines the semantic field types that sembuf layers on top
// of the raw wire types. Several semantic types share one wire type; the
// semantic type carries the validation and default-value rules.
package field

import "github.com/bearlytools/sembuf/internal/wire"

// Type represents the semantic type of data held in a field.
type Type uint8

const (
	FTUnknown Type = 0
	// FTUint is an unsigned integer carried as an unsigned varint.
	FTUint Type = 1
	// FTInt is a signed integer carried as a two's-complement varint.
	FTInt Type = 2
	// FTBool is a boolean carried as a 0/1 varint.
	FTBool Type = 3
	// FTEnum is a named integer, wire-identical to FTInt.
	FTEnum Type = 4
	// FTFixed32 and FTFixed64 are little-endian fixed-width integers.
	FTFixed32 Type = 5
	FTFixed64 Type = 6
	// FTFloat and FTDouble are IEEE-754 values on FIXED32/FIXED64.
	FTFloat  Type = 7
	FTDouble Type = 8
	// FTString is UTF-8 text; invalid UTF-8 fails decoding.
	FTString Type = 9
	// FTBytes is an opaque byte sequence.
	FTBytes Type = 10
	// FTStruct is an embedded struct, length-prefixed serialized bytes.
	FTStruct Type = 11
	// FTDynamic is an embedded struct whose concrete type is resolved at
	// encode/decode time via a callback on the owning container.
	FTDynamic Type = 12
)

// String implements fmt.Stringer.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "FTUnknown"
}

var typeNames = [...]string{
	FTUnknown: "FTUnknown",
	FTUint:    "FTUint",
	FTInt:     "FTInt",
	FTBool:    "FTBool",
	FTEnum:    "FTEnum",
	FTFixed32: "FTFixed32",
	FTFixed64: "FTFixed64",
	FTFloat:   "FTFloat",
	FTDouble:  "FTDouble",
	FTString:  "FTString",
	FTBytes:   "FTBytes",
	FTStruct:  "FTStruct",
	FTDynamic: "FTDynamic",
}

// WireType returns the wire-level encoding used for a semantic type.
func (t Type) WireType() wire.Type {
	switch t {
	case FTUint, FTInt, FTBool, FTEnum:
		return wire.TVarint
	case FTFixed32, FTFloat:
		return wire.TFixed32
	case FTFixed64, FTDouble:
		return wire.TFixed64
	}
	return wire.TBytes
}
