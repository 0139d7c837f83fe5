package converters

import (
	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// EnumConverter maps enum and flags types to integers, or to enumerator
// names when EnumAsString is set. Output is tagged Enum or Flags.
type EnumConverter struct{}

func (EnumConverter) Name() string { return "enum" }

func (EnumConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindEnum
}

func (EnumConverter) AllowedTags(h converter.Helper, t meta.TypeID) []value.Tag {
	if ti, ok := h.Types().Info(t); ok && ti.Enum.Flags {
		return []value.Tag{value.NoTag, value.Flags}
	}
	return []value.Tag{value.NoTag, value.Enum}
}

func (EnumConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return []value.Shape{value.ShapeInteger, value.ShapeText}
}

// Guess recognizes tagged enumerators. Without a declared enum type only
// the raw integer or name survives.
func (EnumConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	if tag != value.Enum && tag != value.Flags {
		return meta.UnknownType, false
	}
	switch v.Shape() {
	case value.ShapeInteger:
		return meta.Int64, true
	case value.ShapeText:
		return meta.String, true
	}
	return meta.UnknownType, false
}

func (EnumConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	ti, err := info(h, t)
	if err != nil {
		return value.Value{}, err
	}
	n, ok := goInt(v)
	if !ok {
		return value.Value{}, serializeMismatch(h, t, v)
	}

	tag := value.Enum
	if ti.Enum.Flags {
		tag = value.Flags
	}
	if !h.Options().EnumAsString {
		return value.Tagged(tag, value.Int(n)), nil
	}

	var name string
	if ti.Enum.Flags {
		name, ok = ti.Enum.Keys(n)
	} else {
		name, ok = ti.Enum.Key(n)
	}
	if !ok {
		return value.Value{}, errors.InvalidEnum(errors.PhaseSerialize, ti.Name, n)
	}
	return value.Tagged(tag, value.Text(name)), nil
}

func (EnumConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	c := v.Content()
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	if ti.Kind != meta.KindEnum {
		if c.Shape() == value.ShapeText {
			return c.Text(), nil
		}
		return c.Int(), nil
	}

	var n int64
	switch c.Shape() {
	case value.ShapeInteger:
		n = c.Int()
		if !ti.Enum.Valid(n) {
			return nil, errors.InvalidEnum(errors.PhaseDeserialize, ti.Name, n)
		}
	case value.ShapeText:
		var ok bool
		if ti.Enum.Flags {
			n, ok = ti.Enum.ParseKeys(c.Text())
		} else {
			n, ok = ti.Enum.Lookup(c.Text())
		}
		if !ok {
			return nil, errors.InvalidEnum(errors.PhaseDeserialize, ti.Name, c.Text())
		}
	default:
		return nil, unconvertible(h, t, v)
	}

	out, ok := setInt(ti.GoType, n)
	if !ok {
		return nil, errors.Overflow(errors.PhaseDeserialize, ti.Name, n)
	}
	return out, nil
}
