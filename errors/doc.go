// Package errors provides structured error types for the serializer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Serialization and deserialization failures additionally carry
// the property trace: the chain of nested property hints and type names
// that led from the top-level call to the failing value.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDeserialize, errors.KindUnknownProperty).
//		Type("TestObject").
//		Detail("unknown property %q", "extra1").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NoConverter(errors.PhaseSerialize, "List<int64>")
//	err := errors.CountMismatch("Tuple<int64,string>", 3, 2)
//
// Callers can match on a whole phase with the sentinels:
//
//	if errors.Is(err, errors.ErrDeserialization) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
