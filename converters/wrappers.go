package converters

import (
	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// OptionalConverter writes an absent optional as null and a present one as
// its element. Any tag and shape is passed through to the element type.
type OptionalConverter struct{}

func (OptionalConverter) Name() string { return "optional" }

func (OptionalConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindOptional
}

func (OptionalConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return nil }

func (OptionalConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return nil
}

func (OptionalConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	ti, err := info(h, t)
	if err != nil {
		return value.Value{}, err
	}
	x, ok := ti.Unwrap(v)
	if !ok {
		return value.Null(), nil
	}
	return h.Serialize(ti.Elem, x, "[some]")
}

func (OptionalConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, parent any) (any, error) {
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return h.Types().Zero(t), nil
	}
	x, err := h.Deserialize(ti.Elem, v, parent, "[some]")
	if err != nil {
		return nil, err
	}
	out, err := ti.Wrap(x)
	if err != nil {
		return nil, assignFailed(h, t, "optional value", err)
	}
	return out, nil
}

// PointerConverter handles shared pointers and weak references. A nil or
// expired reference is written as null. Decoded weak targets are handed to
// a parent implementing meta.Owner, which keeps them reachable.
type PointerConverter struct{}

func (PointerConverter) Name() string { return "pointer" }

func (PointerConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	k := h.Types().Kind(t)
	return k == meta.KindPointer || k == meta.KindWeak
}

func (PointerConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return nil }

func (PointerConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return nil
}

func (PointerConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	ti, err := info(h, t)
	if err != nil {
		return value.Value{}, err
	}
	x, ok := ti.Unwrap(v)
	if !ok {
		return value.Null(), nil
	}
	return h.Serialize(ti.Elem, x, "[ptr]")
}

func (PointerConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, parent any) (any, error) {
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return h.Types().Zero(t), nil
	}
	x, err := h.Deserialize(ti.Elem, v, parent, "[ptr]")
	if err != nil {
		return nil, err
	}
	if isNil(x) {
		return h.Types().Zero(t), nil
	}
	if ti.Kind == meta.KindWeak {
		if owner, ok := parent.(meta.Owner); ok {
			owner.Adopt(x)
		}
	}
	out, err := ti.Wrap(x)
	if err != nil {
		return nil, assignFailed(h, t, "reference target", err)
	}
	return out, nil
}
