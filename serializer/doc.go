// Package serializer is the dispatch engine between Go values and the
// value model.
//
// A Serializer owns a type registry, an ordered converter registry, the
// active Options and optional per-type CBOR tags. Every top-level call
// snapshots that configuration, so reconfiguring a Serializer never
// affects conversions already in flight.
//
// Each call carries its own trace stack. Converters recurse through the
// call's Serialize and Deserialize methods with a path hint (a property
// name, "[3]" for a sequence index, "[ptr]" for a pointer payload), and the
// first failure is annotated with the stack as it stood at that point:
//
//	[deserialize] shape_mismatch at items.[2].key (int64): got text, want integer
//
// Deserializing with meta.UnknownType lets converters guess the type from
// tag and shape. Guesses are tried in converter priority order.
package serializer
