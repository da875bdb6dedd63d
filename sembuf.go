// Package sembuf is a self-describing binary serialization framework:
// structured records ("semantic structs") encoded to and from the classic
// protocol-buffer wire format, with richer semantic types attached to fields
// than the raw wire types provide.
//
// A type is described once, at definition time, by building a [StructClass]
// from field descriptors:
//
//	point := sembuf.NewClass("Point")
//	point.MustAddDescriptor(
//		sembuf.NewUint("x", 1),
//		sembuf.NewUint("y", 2),
//	)
//	point.MustFinalize()
//
// Instances parse lazily: [Struct.Unmarshal] splits the buffer and caches
// each field's raw bytes, and a field is only decoded on first [Struct.Get].
// The decoded value is memoized next to the untouched bytes, so an instance
// that is read but never written re-serializes byte for byte, unknown fields
// included. Writes drop the raw bytes and mark the field dirty, and
// [Struct.Marshal] re-encodes exactly the dirty fields.
//
// Classes may reference classes that are not defined yet, including
// mutually: [NewEmbedByName] parks the reference in a [Registry] and binds
// it when the named class finishes construction.
package sembuf

import (
	"github.com/bearlytools/sembuf/internal/field"
)

// FieldType represents the semantic type of data held in a field.
type FieldType = field.Type

const (
	FTUnknown = field.FTUnknown
	FTUint    = field.FTUint
	FTInt     = field.FTInt
	FTBool    = field.FTBool
	FTEnum    = field.FTEnum
	FTFixed32 = field.FTFixed32
	FTFixed64 = field.FTFixed64
	FTFloat   = field.FTFloat
	FTDouble  = field.FTDouble
	FTString  = field.FTString
	FTBytes   = field.FTBytes
	FTStruct  = field.FTStruct
	FTDynamic = field.FTDynamic
)
