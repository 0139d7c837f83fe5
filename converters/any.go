package converters

import (
	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// AnyConverter is the fallback for the any type. It serializes through the
// registered type of the value's dynamic Go type and deserializes by
// guessing from tag and shape.
type AnyConverter struct{}

func (AnyConverter) Name() string { return "any" }

func (AnyConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindAny
}

func (AnyConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return nil }

func (AnyConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return nil
}

func (AnyConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	if v == nil {
		return value.Null(), nil
	}
	id, ok := h.Types().TypeOfValue(v)
	if !ok || h.Types().Kind(id) == meta.KindAny {
		return value.Value{}, errors.Unconvertible(errors.PhaseSerialize, h.Types().Name(t),
			"no registered type for Go type "+goTypeName(v))
	}
	return h.Serialize(id, v, "[any]")
}

func (AnyConverter) Deserialize(h converter.Helper, _ meta.TypeID, v value.Value, parent any) (any, error) {
	return h.Deserialize(meta.UnknownType, v, parent, "[any]")
}
