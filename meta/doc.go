// Package meta is the type introspection layer of the serializer.
//
// A Registry assigns a TypeID to every convertible type and records what a
// converter needs to know about it: a canonical name, a Kind, the Go type
// values of that TypeID have at runtime, element and member TypeIDs for
// containers, and a ClassDescriptor for object types.
//
// Builtin scalar types are pre-registered with fixed IDs (Bool, Int64,
// String, ...). Containers are registered with the generic helpers:
//
//	ints, _ := meta.RegisterList[int64](reg, meta.Int64)
//	byName, _ := meta.RegisterMap[string, []int64](reg, meta.String, ints)
//
// Object classes are usually registered from struct definitions. Exported
// fields become properties named by their `cbor` tag, and embedding a
// registered class struct declares it as the superclass:
//
//	type Base struct {
//		Key   int     `cbor:"key"`
//		Value float64 `cbor:"value"`
//	}
//
//	type Derived struct {
//		Base
//		Extra int `cbor:"extra"`
//	}
//
//	base, _ := meta.RegisterStruct[Base](reg, "Base")
//	derived, _ := meta.RegisterStruct[Derived](reg, "Derived", meta.Polymorphic())
//
// Tag options: "unstored" excludes a property from output unless the
// serializer ignores the stored flag, "optional" exempts it from the
// all-properties check, and "identity" marks the object name alias.
package meta
