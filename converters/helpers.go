package converters

import (
	"reflect"
	"strconv"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

var (
	noTagOnly  = []value.Tag{value.NoTag}
	arrayShape = []value.Shape{value.ShapeArray}
	mapShape   = []value.Shape{value.ShapeMap}
)

func info(h converter.Helper, t meta.TypeID) (*meta.TypeInfo, error) {
	ti, ok := h.Types().Info(t)
	if !ok {
		return nil, errors.NotFound(errors.PhaseSerialize, "type "+h.Types().Name(t))
	}
	return ti, nil
}

func indexHint(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// convertTo converts a builtin Go value to a named type with the same
// underlying kind, so user types like `type Name string` round trip.
func convertTo(t reflect.Type, v any) any {
	rv := reflect.ValueOf(v)
	if rv.Type() == t || !rv.Type().ConvertibleTo(t) {
		return v
	}
	return rv.Convert(t).Interface()
}

func serializeMismatch(h converter.Helper, t meta.TypeID, v any) error {
	return errors.TypeMismatch(errors.PhaseSerialize, h.Types().Name(t), v)
}

func unconvertible(h converter.Helper, t meta.TypeID, v value.Value) error {
	return errors.New(errors.PhaseDeserialize, errors.KindUnconvertible).
		Type(h.Types().Name(t)).
		Detail("cannot convert %s to %s", v, h.Types().Name(t)).
		Value(v).
		Build()
}

func assignFailed(h converter.Helper, t meta.TypeID, what string, err error) error {
	return errors.New(errors.PhaseDeserialize, errors.KindPropertyAssignment).
		Type(h.Types().Name(t)).
		Detail("cannot store %s", what).
		Cause(err).
		Build()
}
