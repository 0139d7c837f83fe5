package converters_test

import (
	"reflect"
	"runtime"
	"testing"
	"weak"

	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/serializer"
	"github.com/wippyai/cbor-serializer/value"
)

type span struct {
	Start int
	Label string
}

func TestContainersRoundtrip(t *testing.T) {
	f := newFixture(t)
	r := f.types
	intList := f.must(meta.RegisterList[int](r, meta.Int))
	strSet := f.must(meta.RegisterSet[string](r, meta.String))
	strIntMap := f.must(meta.RegisterMap[string, int](r, meta.String, meta.Int))
	pair := f.must(meta.RegisterPair[string, int](r, meta.String, meta.Int))
	tuple := f.must(meta.RegisterTuple[span](r, meta.Int, meta.String))
	arrTuple := f.must(meta.RegisterTuple[[2]float64](r, meta.Float64, meta.Float64))
	optInt := f.must(meta.RegisterOptional[int](r, meta.Int))
	ptrInt := f.must(meta.RegisterPointer[int](r, meta.Int))
	nested := f.must(meta.RegisterMap[string, []int](r, meta.String, intList))

	seven := 7
	tests := []struct {
		name string
		id   meta.TypeID
		in   any
		wire value.Value
	}{
		{"list", intList, []int{1, 2, 3}, value.Array(value.Int(1), value.Int(2), value.Int(3))},
		{"empty list", intList, []int{}, value.Array()},
		{"set", strSet, map[string]struct{}{"b": {}, "a": {}},
			value.Tagged(value.Set, value.Array(value.Text("a"), value.Text("b")))},
		{"map", strIntMap, map[string]int{"b": 2, "a": 1},
			value.Map(value.KV("a", value.Int(1)), value.KV("b", value.Int(2)))},
		{"nested map", nested, map[string][]int{"x": {1}},
			value.Map(value.KV("x", value.Array(value.Int(1))))},
		{"pair", pair, meta.Pair[string, int]{First: "x", Second: 1}, value.Array(value.Text("x"), value.Int(1))},
		{"struct tuple", tuple, span{Start: 4, Label: "s"}, value.Array(value.Int(4), value.Text("s"))},
		{"array tuple", arrTuple, [2]float64{1.5, -2}, value.Array(value.Double(1.5), value.Double(-2))},
		{"optional some", optInt, meta.Some(5), value.Int(5)},
		{"optional none", optInt, meta.None[int](), value.Null()},
		{"pointer", ptrInt, &seven, value.Int(7)},
		{"nil pointer", ptrInt, (*int)(nil), value.Null()},
		{"enum", f.color, Color(1), value.Tagged(value.Enum, value.Int(1))},
		{"flags", f.perm, Perm(5), value.Tagged(value.Flags, value.Int(5))},
		{"variant int", f.scalar, 3, value.Int(3)},
		{"variant string", f.scalar, "s", value.Text("s")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := f.serializer(serializer.DefaultOptions())
			got, err := s.Serialize(tt.id, tt.in)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			if !value.Equal(got, tt.wire) {
				t.Fatalf("wire = %v, want %v", got, tt.wire)
			}
			back, err := s.Deserialize(got, tt.id, nil)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if !reflect.DeepEqual(back, tt.in) {
				t.Errorf("roundtrip = %#v, want %#v", back, tt.in)
			}
		})
	}
}

func TestListAcceptsHomogeneousTag(t *testing.T) {
	f := newFixture(t)
	intList := f.must(meta.RegisterList[int](f.types, meta.Int))
	s := f.serializer(serializer.DefaultOptions())

	out, err := s.Deserialize(value.Tagged(value.Homogeneous, value.Array(value.Int(1))), intList, nil)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(out, []int{1}) {
		t.Errorf("got %#v", out)
	}

	_, err = s.Deserialize(value.Tagged(value.Set, value.Array(value.Int(1))), intList, nil)
	if e, ok := errors.As(err); !ok || e.Kind != errors.KindInvalidTag {
		t.Errorf("set tag on list: expected invalid_tag, got %v", err)
	}
}

func TestTupleCountMismatch(t *testing.T) {
	f := newFixture(t)
	pair := f.must(meta.RegisterPair[string, int](f.types, meta.String, meta.Int))
	s := f.serializer(serializer.DefaultOptions())

	_, err := s.Deserialize(value.Array(value.Text("x")), pair, nil)
	if e, ok := errors.As(err); !ok || e.Kind != errors.KindCountMismatch {
		t.Errorf("expected count_mismatch, got %v", err)
	}

	_, err = s.Deserialize(value.Array(value.Text("x"), value.Text("y")), pair, nil)
	e, ok := errors.As(err)
	if !ok {
		t.Fatalf("expected error, got %v", err)
	}
	if e.Path() != "second" {
		t.Errorf("Path = %q, want second", e.Path())
	}
}

func TestPointerNull(t *testing.T) {
	f := newFixture(t)
	ptrInt := f.must(meta.RegisterPointer[int](f.types, meta.Int))
	s := f.serializer(serializer.DefaultOptions())

	out, err := s.Deserialize(value.Null(), ptrInt, nil)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if p, ok := out.(*int); !ok || p != nil {
		t.Errorf("got %#v, want nil *int", out)
	}
}

func TestWeakReference(t *testing.T) {
	f := newFixture(t)
	weakObj := f.must(meta.RegisterWeak[TestObject](f.types, f.testObject))
	s := f.serializer(serializer.DefaultOptions())

	holder := &Holder{}
	out, err := s.Deserialize(value.Map(testObjectMap(4, 0.5)...), weakObj, holder)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	w, ok := out.(weak.Pointer[TestObject])
	if !ok {
		t.Fatalf("got %T, want weak.Pointer[TestObject]", out)
	}
	if len(holder.Adopted()) != 1 {
		t.Fatalf("adopted %d children, want 1", len(holder.Adopted()))
	}
	runtime.GC()
	target := w.Value()
	if target == nil || target.Key != 4 {
		t.Fatalf("weak target = %#v", target)
	}

	got, err := s.Serialize(weakObj, w)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !value.Equal(got, value.Map(testObjectMap(4, 0.5)...)) {
		t.Errorf("got %v", got)
	}

	expired, err := s.Serialize(weakObj, weak.Pointer[TestObject]{})
	if err != nil {
		t.Fatalf("Serialize(expired): %v", err)
	}
	if !expired.IsNull() {
		t.Errorf("expired reference = %v, want null", expired)
	}
	runtime.KeepAlive(holder)
}

func TestVariantDeserialize(t *testing.T) {
	f := newFixture(t)
	s := f.serializer(serializer.DefaultOptions())

	tests := []struct {
		name string
		in   value.Value
		want any
		fail bool
	}{
		{"native int", value.Int(3), 3, false},
		{"native text", value.Text("x"), "x", false},
		{"coerced double", value.Double(2.5), "2.5", false},
		{"no member", value.Bytes([]byte{1}), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Deserialize(tt.in, f.scalar, nil)
			if tt.fail {
				e, ok := errors.As(err)
				if !ok || e.Kind != errors.KindUnconvertible {
					t.Fatalf("expected unconvertible, got %v", err)
				}
				if e.Cause == nil {
					t.Error("expected member errors as cause")
				}
				return
			}
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if out != tt.want {
				t.Errorf("got %#v, want %#v", out, tt.want)
			}
		})
	}

	if _, err := s.Serialize(f.scalar, 1.5); err == nil {
		t.Error("expected error for float in int|string variant")
	}
}

func TestEnumConverter(t *testing.T) {
	f := newFixture(t)
	asString := serializer.DefaultOptions()
	asString.EnumAsString = true

	t.Run("names", func(t *testing.T) {
		s := f.serializer(asString)
		got, err := s.Serialize(f.color, Color(2))
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		if want := value.Tagged(value.Enum, value.Text("Blue")); !value.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}

		got, err = s.Serialize(f.perm, Perm(5))
		if err != nil {
			t.Fatalf("Serialize flags: %v", err)
		}
		if want := value.Tagged(value.Flags, value.Text("Read|Exec")); !value.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	tests := []struct {
		name string
		id   func() meta.TypeID
		in   value.Value
		want any
		kind errors.Kind
	}{
		{"name", func() meta.TypeID { return f.color }, value.Tagged(value.Enum, value.Text("Green")), Color(1), ""},
		{"untagged int", func() meta.TypeID { return f.color }, value.Int(2), Color(2), ""},
		{"flags names", func() meta.TypeID { return f.perm }, value.Tagged(value.Flags, value.Text("Read|Write")), Perm(3), ""},
		{"invalid value", func() meta.TypeID { return f.color }, value.Int(9), nil, errors.KindInvalidEnum},
		{"invalid name", func() meta.TypeID { return f.color }, value.Text("Pink"), nil, errors.KindInvalidEnum},
		{"stray flag bit", func() meta.TypeID { return f.perm }, value.Tagged(value.Flags, value.Int(8)), nil, errors.KindInvalidEnum},
		{"enum tag on flags", func() meta.TypeID { return f.perm }, value.Tagged(value.Enum, value.Int(1)), nil, errors.KindInvalidTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.serializer(serializer.DefaultOptions()).Deserialize(tt.in, tt.id(), nil)
			if tt.kind != "" {
				e, ok := errors.As(err)
				if !ok || e.Kind != tt.kind {
					t.Fatalf("expected %s, got %v", tt.kind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if out != tt.want {
				t.Errorf("got %#v, want %#v", out, tt.want)
			}
		})
	}
}

func TestMapRejectsUnhashableKey(t *testing.T) {
	f := newFixture(t)
	anyMap := f.must(meta.RegisterMap[any, int64](f.types, meta.Any, meta.Int64))
	s := f.serializer(serializer.DefaultOptions())

	in := value.Map(value.Pair{Key: value.Array(value.Int(1)), Value: value.Int(2)})
	_, err := s.Deserialize(in, anyMap, nil)
	if e, ok := errors.As(err); !ok || e.Kind != errors.KindPropertyAssignment {
		t.Fatalf("expected property_assignment, got %v", err)
	}

	ok := value.Map(value.Pair{Key: value.Int(1), Value: value.Int(2)})
	got, err := s.Deserialize(ok, anyMap, nil)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if m := got.(map[any]int64); m[int64(1)] != 2 {
		t.Errorf("got %v", m)
	}
}

type objectOrInt interface{}

func TestVariantSubclassMember(t *testing.T) {
	f := newFixture(t)
	choice := f.must(meta.RegisterVariant[objectOrInt](f.types, meta.Int, f.testObject))
	s := f.serializer(serializer.DefaultOptions())

	in := &DerivedObject{TestObject: TestObject{Key: 10, Value: 0.1}, Extra: true}
	v, err := s.Serialize(choice, in)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := value.Map(append(
		[]value.Pair{value.KV("@class", value.Text("DerivedObject"))},
		append(testObjectMap(10, 0.1), value.KV("extra", value.Bool(true)))...)...)
	if !value.Equal(v, want) {
		t.Fatalf("got %v, want %v", v, want)
	}

	back, err := s.Deserialize(v, choice, nil)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	d, ok := back.(*DerivedObject)
	if !ok || !reflect.DeepEqual(d, in) {
		t.Errorf("got %#v, want %#v", back, in)
	}

	if _, err := s.Serialize(choice, &NamedObject{Name: "n"}); !errors.IsSerialization(err) {
		t.Errorf("unrelated class: expected serialization error, got %v", err)
	}
}
