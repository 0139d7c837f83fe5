package converters

import (
	"reflect"
	"strconv"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// TupleConverter handles pairs and fixed-arity tuples as arrays.
type TupleConverter struct{}

func (TupleConverter) Name() string { return "tuple" }

func (TupleConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	k := h.Types().Kind(t)
	return k == meta.KindPair || k == meta.KindTuple
}

func (TupleConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag { return noTagOnly }

func (TupleConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return arrayShape
}

func memberHint(k meta.Kind, i int) string {
	if k == meta.KindPair {
		if i == 0 {
			return "first"
		}
		return "second"
	}
	return indexHint(i)
}

func member(rv reflect.Value, i int) reflect.Value {
	if rv.Kind() == reflect.Array {
		return rv.Index(i)
	}
	return rv.Field(i)
}

func (TupleConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	ti, err := info(h, t)
	if err != nil {
		return value.Value{}, err
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != ti.GoType {
		return value.Value{}, serializeMismatch(h, t, v)
	}

	elems := make([]value.Value, len(ti.Members))
	for i, m := range ti.Members {
		ev, err := h.Serialize(m, member(rv, i).Interface(), memberHint(ti.Kind, i))
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = ev
	}
	return value.Array(elems...), nil
}

func (TupleConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, parent any) (any, error) {
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	elems := v.Elements()
	if len(elems) != len(ti.Members) {
		return nil, errors.CountMismatch(ti.Name, len(elems), strconv.Itoa(len(ti.Members)))
	}

	rv := reflect.New(ti.GoType).Elem()
	for i, m := range ti.Members {
		hint := memberHint(ti.Kind, i)
		x, err := h.Deserialize(m, elems[i], parent, hint)
		if err != nil {
			return nil, err
		}
		if err := meta.Assign(member(rv, i), x); err != nil {
			return nil, assignFailed(h, t, "member "+hint, err)
		}
	}
	return rv.Interface(), nil
}
