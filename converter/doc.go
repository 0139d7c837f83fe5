// Package converter defines the capability protocol every converter
// implements and the priority-ordered Registry the dispatch engine queries.
//
// A converter is a stateless value: everything it needs about the current
// call (options, the type registry, recursion into nested values) comes
// through the Helper passed to each method. Converters recurse through
// Helper.Serialize and Helper.Deserialize with a path hint ("key", "[3]"),
// which lets the engine maintain the property trace.
//
// Deserialization capability is resolved by CanDeserialize:
//
//	UnknownType declared    -> Guessed (converter recognizes tag and shape) or Negative
//	type not convertible    -> Negative
//	tag not allowed         -> WrongTag
//	shape not allowed       -> Negative
//	otherwise               -> Positive
//
// A nil AllowedTags or AllowedShapes result means "unrestricted". Wrapper
// converters (optional, pointer, variant) use this to pass any tag through
// to their element type.
package converter
