package converters_test

import (
	"bytes"
	"math"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/serializer"
	"github.com/wippyai/cbor-serializer/value"
)

type Name string

func TestPrimitiveCoercion(t *testing.T) {
	f := newFixture(t)
	nameType := f.must(f.types.Register(meta.TypeInfo{
		Name:   "Name",
		Kind:   meta.KindString,
		GoType: reflect.TypeFor[Name](),
	}))

	tests := []struct {
		name   string
		id     meta.TypeID
		in     value.Value
		want   any
		strict bool
		fail   bool
	}{
		{"int native", meta.Int, value.Int(5), 5, false, false},
		{"int from integral double", meta.Int, value.Double(5), 5, false, false},
		{"int from fractional double", meta.Int, value.Double(5.5), nil, false, true},
		{"int from text", meta.Int16, value.Text(" 42 "), int16(42), false, false},
		{"int from bool", meta.Uint8, value.Bool(true), uint8(1), false, false},
		{"int overflow", meta.Int8, value.Int(300), nil, false, true},
		{"uint negative", meta.Uint, value.Int(-1), nil, false, true},
		{"int strict rejects text", meta.Int, value.Text("42"), nil, true, true},
		{"float from int", meta.Float64, value.Int(3), 3.0, true, false},
		{"float32", meta.Float32, value.Double(1.5), float32(1.5), false, false},
		{"float from text", meta.Float64, value.Text("2.25"), 2.25, false, false},
		{"float strict rejects text", meta.Float64, value.Text("2.25"), nil, true, true},
		{"bool from int", meta.Bool, value.Int(0), false, false, false},
		{"bool from text", meta.Bool, value.Text("true"), true, false, false},
		{"bool from 2", meta.Bool, value.Int(2), nil, false, true},
		{"string from int", meta.String, value.Int(7), "7", false, false},
		{"string from bool", meta.String, value.Bool(false), "false", false, false},
		{"string strict rejects int", meta.String, value.Int(7), nil, true, true},
		{"named string", nameType, value.Text("n"), Name("n"), false, false},
		{"bytes", meta.Bytes, value.Bytes([]byte{1, 2}), []byte{1, 2}, false, false},
		{"bytes from base64", meta.Bytes, value.Text("AQI="), []byte{1, 2}, false, false},
		{"bytes bad base64", meta.Bytes, value.Text("!!"), nil, false, true},
		{"null for int", meta.Int, value.Null(), nil, false, true},
		{"nil", meta.Nil, value.Null(), nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := serializer.DefaultOptions()
			if tt.strict {
				opts.Validation = serializer.StrictBasicTypes
			}
			out, err := f.serializer(opts).Deserialize(tt.in, tt.id, nil)
			if tt.fail {
				if err == nil {
					t.Fatalf("expected error, got %#v", out)
				}
				if !errors.IsDeserialization(err) {
					t.Errorf("expected deserialization error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if !reflect.DeepEqual(out, tt.want) {
				t.Errorf("got %#v, want %#v", out, tt.want)
			}
		})
	}
}

func TestPrimitiveSerialize(t *testing.T) {
	f := newFixture(t)
	s := f.serializer(serializer.DefaultOptions())

	tests := []struct {
		name string
		id   meta.TypeID
		in   any
		want value.Value
	}{
		{"int", meta.Int, 5, value.Int(5)},
		{"uint64", meta.Uint64, uint64(1 << 40), value.Int(1 << 40)},
		{"float32", meta.Float32, float32(0.5), value.Double(0.5)},
		{"string", meta.String, "s", value.Text("s")},
		{"bool", meta.Bool, true, value.Bool(true)},
		{"bytes", meta.Bytes, []byte("ab"), value.Bytes([]byte("ab"))},
		{"nil", meta.Nil, nil, value.Null()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Serialize(tt.id, tt.in)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			if !value.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("type mismatch", func(t *testing.T) {
		_, err := s.Serialize(meta.Int, "five")
		e, ok := errors.As(err)
		if !ok || e.Kind != errors.KindTypeMismatch || e.Phase != errors.PhaseSerialize {
			t.Errorf("expected serialize type_mismatch, got %v", err)
		}
	})

	t.Run("uint64 overflow", func(t *testing.T) {
		_, err := s.Serialize(meta.Uint64, uint64(1<<63))
		if e, ok := errors.As(err); !ok || e.Kind != errors.KindOverflow {
			t.Errorf("expected overflow, got %v", err)
		}
	})
}

func TestScalarTypes(t *testing.T) {
	f := newFixture(t)
	s := f.serializer(serializer.DefaultOptions())

	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u, _ := url.Parse("https://example.com/a?b=c")
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	t.Run("time", func(t *testing.T) {
		got, err := s.Serialize(meta.Time, when)
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		want := value.Tagged(value.DateTimeString, value.Text("2024-01-02T03:04:05Z"))
		if !value.Equal(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		back, err := s.Deserialize(got, meta.Time, nil)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if !back.(time.Time).Equal(when) {
			t.Errorf("got %v, want %v", back, when)
		}

		epoch, err := s.Deserialize(value.Tagged(value.EpochDateTime, value.Int(86400)), meta.Time, nil)
		if err != nil {
			t.Fatalf("Deserialize epoch: %v", err)
		}
		if !epoch.(time.Time).Equal(time.Unix(86400, 0)) {
			t.Errorf("epoch = %v", epoch)
		}

		half, err := s.Deserialize(value.Tagged(value.EpochDateTime, value.Double(1.5)), meta.Time, nil)
		if err != nil {
			t.Fatalf("Deserialize fractional epoch: %v", err)
		}
		if !half.(time.Time).Equal(time.Unix(1, 500_000_000)) {
			t.Errorf("fractional epoch = %v", half)
		}

		for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e19, -1e19} {
			_, err := s.Deserialize(value.Tagged(value.EpochDateTime, value.Double(bad)), meta.Time, nil)
			if e, ok := errors.As(err); !ok || e.Kind != errors.KindUnconvertible {
				t.Errorf("epoch %v: expected unconvertible, got %v", bad, err)
			}
		}

		_, err = s.Deserialize(value.Tagged(value.URL, value.Text("x")), meta.Time, nil)
		if e, ok := errors.As(err); !ok || e.Kind != errors.KindInvalidTag {
			t.Errorf("url tag on time: expected invalid_tag, got %v", err)
		}
	})

	t.Run("url", func(t *testing.T) {
		got, err := s.Serialize(meta.URL, u)
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		if want := value.Tagged(value.URL, value.Text(u.String())); !value.Equal(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		back, err := s.Deserialize(got, meta.URL, nil)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if back.(*url.URL).String() != u.String() {
			t.Errorf("got %v, want %v", back, u)
		}

		null, err := s.Serialize(meta.URL, (*url.URL)(nil))
		if err != nil || !null.IsNull() {
			t.Errorf("nil URL = %v, %v", null, err)
		}
	})

	t.Run("uuid", func(t *testing.T) {
		got, err := s.Serialize(meta.UUID, id)
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		if want := value.Tagged(value.UUID, value.Bytes(id[:])); !value.Equal(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		back, err := s.Deserialize(value.Text(id.String()), meta.UUID, nil)
		if err != nil {
			t.Fatalf("Deserialize text: %v", err)
		}
		if back != id {
			t.Errorf("got %v, want %v", back, id)
		}

		_, err = s.Deserialize(value.Tagged(value.UUID, value.Bytes([]byte{1})), meta.UUID, nil)
		if e, ok := errors.As(err); !ok || e.Kind != errors.KindUnconvertible {
			t.Errorf("short uuid: expected unconvertible, got %v", err)
		}
	})
}

func TestGuessedDeserialize(t *testing.T) {
	f := newFixture(t)
	s := f.serializer(serializer.DefaultOptions())

	tests := []struct {
		name string
		in   value.Value
		want any
	}{
		{"null", value.Null(), nil},
		{"bool", value.Bool(true), true},
		{"integer", value.Int(3), int64(3)},
		{"double", value.Double(1.5), 1.5},
		{"text", value.Text("t"), "t"},
		{"bytes", value.Bytes([]byte{9}), []byte{9}},
		{"array", value.Array(value.Int(1), value.Text("a")), []any{int64(1), "a"}},
		{"map", value.Map(value.KV("a", value.Int(1))), map[string]any{"a": int64(1)}},
		{"set", value.Tagged(value.Set, value.Array(value.Int(1), value.Int(2))),
			map[any]struct{}{int64(1): {}, int64(2): {}}},
		{"enum", value.Tagged(value.Enum, value.Int(2)), int64(2)},
		{"enum name", value.Tagged(value.Enum, value.Text("Blue")), "Blue"},
		{"generic object", value.Tagged(value.GenericObject, value.Array(value.Text("TestObject"), value.Int(1), value.Double(2))),
			&TestObject{Key: 1, Value: 2}},
		{"constructed object", value.Tagged(value.ConstructedObject, value.Array(
			value.Array(value.Text("Point"), value.Int(1), value.Int(2)), value.Null())),
			&Point{X: 1, Y: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Deserialize(tt.in, meta.UnknownType, nil)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if !reflect.DeepEqual(out, tt.want) {
				t.Errorf("got %#v, want %#v", out, tt.want)
			}
		})
	}

	t.Run("unknown tag", func(t *testing.T) {
		_, err := s.Deserialize(value.Tagged(99999, value.Int(1)), meta.UnknownType, nil)
		if e, ok := errors.As(err); !ok || e.Kind != errors.KindNoConverter {
			t.Errorf("expected no_converter, got %v", err)
		}
	})

	t.Run("time and url", func(t *testing.T) {
		out, err := s.Deserialize(value.Tagged(value.EpochDateTime, value.Int(0)), meta.UnknownType, nil)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if _, ok := out.(time.Time); !ok {
			t.Errorf("got %T, want time.Time", out)
		}
		out, err = s.Deserialize(value.Tagged(value.URL, value.Text("http://x")), meta.UnknownType, nil)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if _, ok := out.(*url.URL); !ok {
			t.Errorf("got %T, want *url.URL", out)
		}
	})
}

func TestAnyProperty(t *testing.T) {
	f := newFixture(t)
	s := f.serializer(serializer.DefaultOptions())

	got, err := s.Serialize(meta.Any, []any{int64(1), "a", map[string]any{"k": true}})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := value.Array(value.Int(1), value.Text("a"), value.Map(value.KV("k", value.Bool(true))))
	if !value.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	_, err = s.Serialize(meta.Any, struct{}{})
	if e, ok := errors.As(err); !ok || e.Kind != errors.KindUnconvertible {
		t.Errorf("unregistered Go type: expected unconvertible, got %v", err)
	}
}

type Blob []byte

func TestNamedBytes(t *testing.T) {
	f := newFixture(t)
	blob := f.must(f.types.Register(meta.TypeInfo{
		Name:   "Blob",
		Kind:   meta.KindBytes,
		GoType: reflect.TypeFor[Blob](),
	}))
	s := f.serializer(serializer.DefaultOptions())

	v, err := s.Serialize(blob, Blob{1, 2})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !value.Equal(v, value.Bytes([]byte{1, 2})) {
		t.Fatalf("got %v", v)
	}

	tests := []struct {
		name string
		in   value.Value
		want []byte
	}{
		{"bytes", value.Bytes([]byte{1, 2}), []byte{1, 2}},
		{"base64 text", value.Text("AQI="), []byte{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Deserialize(tt.in, blob, nil)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			b, ok := out.(Blob)
			if !ok {
				t.Fatalf("got %T, want Blob", out)
			}
			if !bytes.Equal(b, tt.want) {
				t.Errorf("got %v, want %v", b, tt.want)
			}
		})
	}
}
