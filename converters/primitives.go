package converters

import (
	"encoding/base64"
	"math"
	"reflect"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// BoolConverter handles bool and named bool types.
type BoolConverter struct{}

func (BoolConverter) Name() string { return "bool" }

func (BoolConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindBool
}

func (BoolConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return noTagOnly }

func (BoolConverter) AllowedShapes(h converter.Helper, _ meta.TypeID, _ value.Tag) []value.Shape {
	if h.Options().Strict() {
		return []value.Shape{value.ShapeBool}
	}
	return []value.Shape{value.ShapeBool, value.ShapeInteger, value.ShapeText}
}

func (BoolConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	return meta.Bool, tag == value.NoTag && v.Shape() == value.ShapeBool
}

func (BoolConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return value.Value{}, serializeMismatch(h, t, v)
	}
	return value.Bool(rv.Bool()), nil
}

func (BoolConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	b, ok := wireBool(v.Content(), h.Options().Strict())
	if !ok {
		return nil, unconvertible(h, t, v)
	}
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	return convertTo(ti.GoType, b), nil
}

// IntConverter handles every signed and unsigned integer type.
type IntConverter struct{}

func (IntConverter) Name() string { return "int" }

func (IntConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	k := h.Types().Kind(t)
	return k == meta.KindInt || k == meta.KindUint
}

func (IntConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return noTagOnly }

func (IntConverter) AllowedShapes(h converter.Helper, _ meta.TypeID, _ value.Tag) []value.Shape {
	if h.Options().Strict() {
		return []value.Shape{value.ShapeInteger}
	}
	return []value.Shape{value.ShapeInteger, value.ShapeDouble, value.ShapeText, value.ShapeBool}
}

func (IntConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	return meta.Int64, tag == value.NoTag && v.Shape() == value.ShapeInteger
}

func (IntConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
	default:
		return value.Value{}, serializeMismatch(h, t, v)
	}
	i, ok := goInt(v)
	if !ok {
		return value.Value{}, errors.Overflow(errors.PhaseSerialize, "int64", v)
	}
	return value.Int(i), nil
}

func (IntConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	i, ok := wireInt(v.Content(), h.Options().Strict())
	if !ok {
		return nil, unconvertible(h, t, v)
	}
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	out, ok := setInt(ti.GoType, i)
	if !ok {
		return nil, errors.Overflow(errors.PhaseDeserialize, ti.Name, i)
	}
	return out, nil
}

// FloatConverter handles float32 and float64.
type FloatConverter struct{}

func (FloatConverter) Name() string { return "float" }

func (FloatConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindFloat
}

func (FloatConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return noTagOnly }

func (FloatConverter) AllowedShapes(h converter.Helper, _ meta.TypeID, _ value.Tag) []value.Shape {
	if h.Options().Strict() {
		return []value.Shape{value.ShapeDouble, value.ShapeInteger}
	}
	return []value.Shape{value.ShapeDouble, value.ShapeInteger, value.ShapeText}
}

func (FloatConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	return meta.Float64, tag == value.NoTag && v.Shape() == value.ShapeDouble
}

func (FloatConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
		return value.Value{}, serializeMismatch(h, t, v)
	}
	return value.Double(rv.Float()), nil
}

func (FloatConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	f, ok := wireFloat(v.Content(), h.Options().Strict())
	if !ok {
		return nil, unconvertible(h, t, v)
	}
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	if ti.GoType.Kind() == reflect.Float32 && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return nil, errors.Overflow(errors.PhaseDeserialize, ti.Name, f)
	}
	return reflect.ValueOf(f).Convert(ti.GoType).Interface(), nil
}

// StringConverter handles string and named string types.
type StringConverter struct{}

func (StringConverter) Name() string { return "string" }

func (StringConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindString
}

func (StringConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return noTagOnly }

func (StringConverter) AllowedShapes(h converter.Helper, _ meta.TypeID, _ value.Tag) []value.Shape {
	if h.Options().Strict() {
		return []value.Shape{value.ShapeText}
	}
	return []value.Shape{value.ShapeText, value.ShapeInteger, value.ShapeDouble, value.ShapeBool}
}

func (StringConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	return meta.String, tag == value.NoTag && v.Shape() == value.ShapeText
}

func (StringConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return value.Value{}, serializeMismatch(h, t, v)
	}
	return value.Text(rv.String()), nil
}

func (StringConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	s, ok := wireText(v.Content(), h.Options().Strict())
	if !ok {
		return nil, unconvertible(h, t, v)
	}
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	return convertTo(ti.GoType, s), nil
}

// BytesConverter handles []byte. Lenient mode also decodes base64 text.
type BytesConverter struct{}

func (BytesConverter) Name() string { return "bytes" }

func (BytesConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindBytes
}

func (BytesConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return noTagOnly }

func (BytesConverter) AllowedShapes(h converter.Helper, _ meta.TypeID, _ value.Tag) []value.Shape {
	if h.Options().Strict() {
		return []value.Shape{value.ShapeBytes}
	}
	return []value.Shape{value.ShapeBytes, value.ShapeText}
}

func (BytesConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	return meta.Bytes, tag == value.NoTag && v.Shape() == value.ShapeBytes
}

func (BytesConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
		return value.Value{}, serializeMismatch(h, t, v)
	}
	return value.Bytes(rv.Bytes()), nil
}

func (BytesConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	c := v.Content()
	if c.Shape() == value.ShapeBytes {
		return convertTo(ti.GoType, c.ByteString()), nil
	}
	b, err := base64.StdEncoding.DecodeString(c.Text())
	if err != nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindUnconvertible).
			Type(h.Types().Name(t)).
			Detail("text is not base64").
			Cause(err).
			Build()
	}
	return convertTo(ti.GoType, b), nil
}

// NilConverter handles the nil type, which only maps to null.
type NilConverter struct{}

func (NilConverter) Name() string { return "nil" }

func (NilConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindNil
}

func (NilConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return noTagOnly }

func (NilConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return []value.Shape{value.ShapeNull}
}

func (NilConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	return meta.Nil, tag == value.NoTag && v.Shape() == value.ShapeNull
}

func (NilConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	if !isNil(v) {
		return value.Value{}, serializeMismatch(h, t, v)
	}
	return value.Null(), nil
}

func (NilConverter) Deserialize(converter.Helper, meta.TypeID, value.Value, any) (any, error) {
	return nil, nil
}
