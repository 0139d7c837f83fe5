package converters

import (
	stderrors "errors"
	"reflect"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// VariantConverter handles a choice between member types. Serialization
// picks the member whose Go type matches the value, else the first class
// member the value's class derives from. Deserialization tries
// members whose native shape matches first, then the rest, each in
// declaration order.
type VariantConverter struct{}

func (VariantConverter) Name() string { return "variant" }

func (VariantConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindVariant
}

func (VariantConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return nil }

func (VariantConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return nil
}

func (VariantConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	ti, err := info(h, t)
	if err != nil {
		return value.Value{}, err
	}
	types := h.Types()
	rt := reflect.TypeOf(v)
	for _, m := range ti.Members {
		mi, ok := types.Info(m)
		if !ok {
			continue
		}
		if mi.GoType == rt || (v == nil && mi.Kind == meta.KindNil) {
			return h.Serialize(m, v, "[variant]")
		}
	}
	if dyn, ok := types.TypeOfValue(v); ok && types.Kind(dyn) == meta.KindObject {
		for _, m := range ti.Members {
			if types.Kind(m) == meta.KindObject && types.IsSubclass(dyn, m) {
				return h.Serialize(m, v, "[variant]")
			}
		}
	}
	return value.Value{}, errors.Unconvertible(errors.PhaseSerialize, ti.Name, "no member accepts Go type "+goTypeName(v))
}

func (VariantConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, parent any) (any, error) {
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	types := h.Types()

	order := make([]meta.TypeID, 0, len(ti.Members))
	var rest []meta.TypeID
	for _, m := range ti.Members {
		if nativeShape(types.Kind(m), v) {
			order = append(order, m)
		} else {
			rest = append(rest, m)
		}
	}
	order = append(order, rest...)

	var errs []error
	for _, m := range order {
		x, err := h.Deserialize(m, v, parent, "[variant]")
		if err == nil {
			return x, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.New(errors.PhaseDeserialize, errors.KindUnconvertible).
		Type(ti.Name).
		Detail("no member accepts %s", v.Shape()).
		Cause(stderrors.Join(errs...)).
		Build()
}

// nativeShape reports whether v is written in the shape values of kind k
// serialize to.
func nativeShape(k meta.Kind, v value.Value) bool {
	s := v.Shape()
	switch k {
	case meta.KindNil:
		return s == value.ShapeNull
	case meta.KindBool:
		return s == value.ShapeBool
	case meta.KindInt, meta.KindUint, meta.KindEnum:
		return s == value.ShapeInteger
	case meta.KindFloat:
		return s == value.ShapeDouble
	case meta.KindString, meta.KindURL, meta.KindTime:
		return s == value.ShapeText
	case meta.KindBytes, meta.KindUUID:
		return s == value.ShapeBytes
	case meta.KindList, meta.KindSet, meta.KindPair, meta.KindTuple:
		return s == value.ShapeArray
	case meta.KindMap:
		return s == value.ShapeMap
	case meta.KindObject:
		return s == value.ShapeMap || v.Tag() == value.GenericObject || v.Tag() == value.ConstructedObject
	}
	return false
}

func goTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
