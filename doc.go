// Package cborserializer converts Go values to and from a CBOR value model
// through a registry of prioritized converters.
//
// # Architecture Overview
//
//	cborserializer/
//	├── value/        Value model: shapes, tags, maps that keep key order
//	├── meta/         Type registry: builtins, classes, containers, enums
//	├── errors/       Structured errors with a property trace
//	├── converter/    Capability protocol and the priority-ordered registry
//	├── converters/   Built-in converters (objects, containers, scalars)
//	├── serializer/   Dispatch engine, options, type tags, byte entry points
//	├── codec/        CBOR framing for the value model
//	├── config/       Options from YAML, TOML, JSONC, maps and environment
//	└── cmd/cborconv  Command line decoder and diagnostics
//
// # Quick Start
//
// Register the Go types, then serialize through a Serializer:
//
//	types := meta.NewRegistry()
//	id, err := meta.RegisterStruct[Point](types, "Point")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s := serializer.New(types, serializer.DefaultOptions())
//	data, err := s.Marshal(id, &Point{X: 1, Y: 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	back, err := s.Unmarshal(data, id, nil)
//
// With meta.UnknownType as the declared type, the serializer derives the
// type from the Go value when encoding and guesses it from the tag and
// shape when decoding.
//
// # Errors
//
// Every failure is an *errors.Error. Its Phase tells serialization from
// deserialization, its Kind names the failure and its Trace locates the
// failing property:
//
//	[deserialize] unconvertible at items.[2].key (int): cannot convert "x" to int
package cborserializer
