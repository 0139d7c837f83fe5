package converters

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/wippyai/cbor-serializer/value"
)

// wireInt reads an integer. Lenient mode also accepts integral doubles,
// numeric text and booleans.
func wireInt(v value.Value, strict bool) (int64, bool) {
	switch v.Shape() {
	case value.ShapeInteger:
		return v.Int(), true
	}
	if strict {
		return 0, false
	}
	switch v.Shape() {
	case value.ShapeDouble:
		return floatToInt(v.Double())
	case value.ShapeText:
		s := strings.TrimSpace(v.Text())
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	case value.ShapeBool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if f >= float64(math.MinInt64) && f < float64(math.MaxInt64) && f == math.Trunc(f) {
		return int64(f), true
	}
	return 0, false
}

// wireFloat reads a double. Integers always widen; lenient mode also parses
// text.
func wireFloat(v value.Value, strict bool) (float64, bool) {
	switch v.Shape() {
	case value.ShapeDouble:
		return v.Double(), true
	case value.ShapeInteger:
		return float64(v.Int()), true
	}
	if strict {
		return 0, false
	}
	if v.Shape() == value.ShapeText {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// wireBool reads a boolean. Lenient mode accepts 0 and 1 and the words
// true and false.
func wireBool(v value.Value, strict bool) (bool, bool) {
	if v.Shape() == value.ShapeBool {
		return v.Bool(), true
	}
	if strict {
		return false, false
	}
	switch v.Shape() {
	case value.ShapeInteger:
		switch v.Int() {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	case value.ShapeText:
		if b, err := strconv.ParseBool(strings.TrimSpace(v.Text())); err == nil {
			return b, true
		}
	}
	return false, false
}

// wireText reads text. Lenient mode formats numbers and booleans.
func wireText(v value.Value, strict bool) (string, bool) {
	if v.Shape() == value.ShapeText {
		return v.Text(), true
	}
	if strict {
		return "", false
	}
	switch v.Shape() {
	case value.ShapeInteger:
		return strconv.FormatInt(v.Int(), 10), true
	case value.ShapeDouble:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64), true
	case value.ShapeBool:
		return strconv.FormatBool(v.Bool()), true
	}
	return "", false
}

// goInt reads any Go signed or unsigned integer, including named types.
func goInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u), true
		}
	}
	return 0, false
}

// setInt builds a value of Go type t from i, failing on overflow.
func setInt(t reflect.Type, i int64) (any, bool) {
	rv := reflect.New(t).Elem()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(i) {
			return nil, false
		}
		rv.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return nil, false
		}
		rv.SetUint(uint64(i))
	default:
		return nil, false
	}
	return rv.Interface(), true
}
