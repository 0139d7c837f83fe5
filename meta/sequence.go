package meta

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/wippyai/cbor-serializer/errors"
)

// Elements iterates the elements of a slice, array or set. Sets are
// visited in sorted key order so output is deterministic.
func Elements(v any) (iter.Seq[any], error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := 0; i < rv.Len(); i++ {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, nil
	case reflect.Map:
		keys := sortedKeys(rv)
		return func(yield func(any) bool) {
			for _, k := range keys {
				if !yield(k.Interface()) {
					return
				}
			}
		}, nil
	case reflect.Invalid:
		return func(func(any) bool) {}, nil
	}
	return nil, errors.New(errors.PhaseSerialize, errors.KindTypeMismatch).
		Detail("%T is not a sequence", v).
		Build()
}

// Entries iterates a map in sorted key order.
func Entries(v any) (iter.Seq2[any, any], error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		keys := sortedKeys(rv)
		return func(yield func(any, any) bool) {
			for _, k := range keys {
				if !yield(k.Interface(), rv.MapIndex(k).Interface()) {
					return
				}
			}
		}, nil
	case reflect.Invalid:
		return func(func(any, any) bool) {}, nil
	}
	return nil, errors.New(errors.PhaseSerialize, errors.KindTypeMismatch).
		Detail("%T is not a map", v).
		Build()
}

// SeqLen returns the element count of a sequence or map value.
func SeqLen(v any) int {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}
	return 0
}

// Writer builds a slice or set value element by element.
type Writer struct {
	rv  reflect.Value
	set bool
}

// NewWriter creates a writer for a slice or set Go type.
func NewWriter(t reflect.Type) (*Writer, error) {
	switch t.Kind() {
	case reflect.Slice:
		return &Writer{rv: reflect.MakeSlice(t, 0, 0)}, nil
	case reflect.Map:
		return &Writer{rv: reflect.MakeMap(t), set: true}, nil
	}
	return nil, errors.New(errors.PhaseDeserialize, errors.KindTypeMismatch).
		Detail("%s is not a slice or set", t).
		Build()
}

// Reserve grows capacity ahead of n additions.
func (w *Writer) Reserve(n int) {
	if w.set || n <= 0 {
		return
	}
	w.rv = reflect.AppendSlice(reflect.MakeSlice(w.rv.Type(), 0, w.rv.Len()+n), w.rv)
}

// Add appends an element, or inserts it into a set.
func (w *Writer) Add(v any) error {
	if w.set {
		k := reflect.New(w.rv.Type().Key()).Elem()
		if err := Assign(k, v); err != nil {
			return err
		}
		if !k.Comparable() {
			return errors.New(errors.PhaseDeserialize, errors.KindPropertyAssignment).
				Detail("set element of Go type %T is not comparable", v).
				Build()
		}
		w.rv.SetMapIndex(k, reflect.New(w.rv.Type().Elem()).Elem())
		return nil
	}
	e := reflect.New(w.rv.Type().Elem()).Elem()
	if err := Assign(e, v); err != nil {
		return err
	}
	w.rv = reflect.Append(w.rv, e)
	return nil
}

// Value returns the built slice or set.
func (w *Writer) Value() any {
	return w.rv.Interface()
}

// MapWriter builds a map value entry by entry.
type MapWriter struct {
	rv reflect.Value
}

// NewMapWriter creates a writer for a map Go type.
func NewMapWriter(t reflect.Type) (*MapWriter, error) {
	if t.Kind() != reflect.Map {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindTypeMismatch).
			Detail("%s is not a map", t).
			Build()
	}
	return &MapWriter{rv: reflect.MakeMap(t)}, nil
}

// Put stores one entry.
func (w *MapWriter) Put(k, v any) error {
	kv := reflect.New(w.rv.Type().Key()).Elem()
	if err := Assign(kv, k); err != nil {
		return err
	}
	if !kv.Comparable() {
		return errors.New(errors.PhaseDeserialize, errors.KindPropertyAssignment).
			Detail("map key of Go type %T is not comparable", k).
			Build()
	}
	vv := reflect.New(w.rv.Type().Elem()).Elem()
	if err := Assign(vv, v); err != nil {
		return err
	}
	w.rv.SetMapIndex(kv, vv)
	return nil
}

// Value returns the built map.
func (w *MapWriter) Value() any {
	return w.rv.Interface()
}

// Assign stores v into dst, converting between numeric kinds.
func Assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	if isNumeric(src.Kind()) && isNumeric(dst.Kind()) && src.Type().ConvertibleTo(dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return errors.New(errors.PhaseDeserialize, errors.KindPropertyAssignment).
		Detail("cannot assign %s to %s", src.Type(), dst.Type()).
		Value(v).
		Build()
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b reflect.Value) int {
	for a.Kind() == reflect.Interface && !a.IsNil() {
		a = a.Elem()
	}
	for b.Kind() == reflect.Interface && !b.IsNil() {
		b = b.Elem()
	}
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		case reflect.Bool:
			return cmp.Compare(btoi(a.Bool()), btoi(b.Bool()))
		}
	}
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
