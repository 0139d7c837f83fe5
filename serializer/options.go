package serializer

import "github.com/wippyai/cbor-serializer/converter"

// Options configures a Serializer. See converter.Options.
type Options = converter.Options

// Polymorphism selects how class hierarchies are encoded.
type Polymorphism = converter.Polymorphism

// ValidationFlags is the decode validation bitset.
type ValidationFlags = converter.ValidationFlags

const (
	PolymorphismDisabled = converter.PolymorphismDisabled
	PolymorphismEnabled  = converter.PolymorphismEnabled
	PolymorphismForced   = converter.PolymorphismForced
)

const (
	ValidationNone         = converter.ValidationNone
	NoExtraProperties      = converter.NoExtraProperties
	AllProperties          = converter.AllProperties
	StrictBasicTypes       = converter.StrictBasicTypes
	FullPropertyValidation = converter.FullPropertyValidation
	FullValidation         = converter.FullValidation
)

// DefaultOptions returns polymorphism Enabled and no validation.
func DefaultOptions() Options {
	return converter.DefaultOptions()
}
