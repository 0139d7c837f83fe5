// Package value defines the self-describing value model that sits between
// typed Go values and the CBOR framing layer.
//
// A Value is a tagged union of the CBOR data model:
//
//	Null | Bool | Integer | Double | Text | Bytes | Array | Map | Tagged
//
// Maps keep insertion order. Tagged values wrap exactly one inner value and
// mark a semantic subtype of a generic shape (a set, a generic object
// record, an enum, ...).
//
// # Tags
//
// Tags below 2^32 follow the IANA CBOR tag registry where one exists
// (GenericObject = 27, URL = 32, UUID = 37, Homogeneous = 41, Set = 258).
// The serializer's own tags (ConstructedObject, Enum, Flags) live in a
// private range. NoTag (-1) never appears on the wire: Tagged(NoTag, v)
// collapses to v.
//
// # Equality
//
// Equal compares structurally. Doubles compare by value, with NaN equal to
// NaN so that round trips of NaN payloads compare equal.
package value
