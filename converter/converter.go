package converter

import (
	"slices"

	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// Capability is a converter's answer to "can you deserialize this".
type Capability uint8

const (
	Negative Capability = iota
	Positive
	WrongTag
	Guessed
)

var capabilityNames = [...]string{
	Negative: "negative",
	Positive: "positive",
	WrongTag: "wrong-tag",
	Guessed:  "guessed",
}

func (c Capability) String() string {
	if int(c) < len(capabilityNames) {
		return capabilityNames[c]
	}
	return "unknown"
}

// Helper is the per-call callback surface converters use to recurse.
type Helper interface {
	Types() *meta.Registry
	Options() Options
	Serialize(t meta.TypeID, v any, hint string) (value.Value, error)
	Deserialize(t meta.TypeID, v value.Value, parent any, hint string) (any, error)
}

// Converter maps values of the types it accepts to and from the value
// model.
type Converter interface {
	Name() string
	CanConvert(h Helper, t meta.TypeID) bool
	AllowedTags(h Helper, t meta.TypeID) []value.Tag
	AllowedShapes(h Helper, t meta.TypeID, tag value.Tag) []value.Shape
	Serialize(h Helper, t meta.TypeID, v any) (value.Value, error)
	Deserialize(h Helper, t meta.TypeID, v value.Value, parent any) (any, error)
}

// Guesser is implemented by converters that recognize their own wire
// signature when no declared type is given.
type Guesser interface {
	Guess(h Helper, tag value.Tag, v value.Value) (meta.TypeID, bool)
}

// CapabilityChecker lets a converter replace the default capability
// resolution.
type CapabilityChecker interface {
	CanDeserialize(h Helper, t meta.TypeID, tag value.Tag, v value.Value) (Capability, meta.TypeID)
}

// CanDeserialize resolves the capability of c for a declared type and an
// encoded value. tag is the value's outer tag and v the value it wraps.
// For Guessed results the returned TypeID is the guessed type.
func CanDeserialize(c Converter, h Helper, t meta.TypeID, tag value.Tag, v value.Value) (Capability, meta.TypeID) {
	if cc, ok := c.(CapabilityChecker); ok {
		return cc.CanDeserialize(h, t, tag, v)
	}

	if t == meta.UnknownType {
		if g, ok := c.(Guesser); ok {
			if id, ok := g.Guess(h, tag, v); ok {
				return Guessed, id
			}
		}
		return Negative, meta.UnknownType
	}

	if !c.CanConvert(h, t) {
		return Negative, t
	}

	if tags := c.AllowedTags(h, t); tags != nil {
		if tag == value.NoTag {
			if h.Options().Strict() && !slices.Contains(tags, value.NoTag) {
				return WrongTag, t
			}
		} else if !slices.Contains(tags, tag) {
			return WrongTag, t
		}
	}

	if shapes := c.AllowedShapes(h, t, tag); shapes != nil && !slices.Contains(shapes, v.Shape()) {
		return Negative, t
	}
	return Positive, t
}
