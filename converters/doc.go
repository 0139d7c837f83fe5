// Package converters contains the built-in converters and Register, which
// installs them into a converter.Registry at their default priorities.
//
// Converter order, lowest priority first:
//
//	enum < optional < pointer < variant < tuple < list < map
//	     < primitives < object < any
//
// The object converter handles every registered class across four wire
// shapes (plain map, GenericObject array, ConstructedObject array, null)
// and the three polymorphism policies. The any converter is the final
// fallback: it serializes by the value's dynamic type and deserializes by
// guessing.
package converters
