package converter

import (
	"math"
	"testing"

	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

type stubHelper struct {
	types *meta.Registry
	opts  Options
}

func (h *stubHelper) Types() *meta.Registry { return h.types }
func (h *stubHelper) Options() Options      { return h.opts }

func (h *stubHelper) Serialize(meta.TypeID, any, string) (value.Value, error) {
	return value.Null(), nil
}

func (h *stubHelper) Deserialize(meta.TypeID, value.Value, any, string) (any, error) {
	return nil, nil
}

// stubConverter accepts int64 from integers, tagged with NoTag or Enum.
type stubConverter struct {
	name  string
	tags  []value.Tag
	guess bool
}

func (c *stubConverter) Name() string { return c.name }

func (c *stubConverter) CanConvert(_ Helper, t meta.TypeID) bool { return t == meta.Int64 }

func (c *stubConverter) AllowedTags(Helper, meta.TypeID) []value.Tag { return c.tags }

func (c *stubConverter) AllowedShapes(Helper, meta.TypeID, value.Tag) []value.Shape {
	return []value.Shape{value.ShapeInteger}
}

func (c *stubConverter) Serialize(Helper, meta.TypeID, any) (value.Value, error) {
	return value.Int(0), nil
}

func (c *stubConverter) Deserialize(Helper, meta.TypeID, value.Value, any) (any, error) {
	return int64(0), nil
}

type guessingConverter struct{ stubConverter }

func (c *guessingConverter) Guess(_ Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	if tag == value.NoTag && v.Shape() == value.ShapeInteger {
		return meta.Int64, true
	}
	return meta.UnknownType, false
}

func TestCanDeserialize(t *testing.T) {
	h := &stubHelper{types: meta.NewRegistry(), opts: DefaultOptions()}
	strict := &stubHelper{types: h.types, opts: Options{Validation: StrictBasicTypes}}
	noTag := &stubConverter{name: "plain", tags: []value.Tag{value.NoTag, value.Enum}}
	enumOnly := &stubConverter{name: "enum-only", tags: []value.Tag{value.Enum}}
	anyTag := &stubConverter{name: "any-tag"}
	guesser := &guessingConverter{stubConverter{name: "guess", tags: []value.Tag{value.NoTag}}}

	tests := []struct {
		name   string
		conv   Converter
		helper Helper
		typ    meta.TypeID
		tag    value.Tag
		v      value.Value
		want   Capability
		wantID meta.TypeID
	}{
		{"positive", noTag, h, meta.Int64, value.NoTag, value.Int(1), Positive, meta.Int64},
		{"allowed tag", noTag, h, meta.Int64, value.Enum, value.Int(1), Positive, meta.Int64},
		{"wrong tag", noTag, h, meta.Int64, value.Set, value.Int(1), WrongTag, meta.Int64},
		{"wrong shape", noTag, h, meta.Int64, value.NoTag, value.Text("1"), Negative, meta.Int64},
		{"wrong type", noTag, h, meta.String, value.NoTag, value.Int(1), Negative, meta.String},
		{"untagged accepted when lenient", enumOnly, h, meta.Int64, value.NoTag, value.Int(1), Positive, meta.Int64},
		{"untagged rejected when strict", enumOnly, strict, meta.Int64, value.NoTag, value.Int(1), WrongTag, meta.Int64},
		{"nil tags unrestricted", anyTag, strict, meta.Int64, value.URL, value.Int(1), Positive, meta.Int64},
		{"unknown without guesser", noTag, h, meta.UnknownType, value.NoTag, value.Int(1), Negative, meta.UnknownType},
		{"guessed", guesser, h, meta.UnknownType, value.NoTag, value.Int(1), Guessed, meta.Int64},
		{"guess refused", guesser, h, meta.UnknownType, value.NoTag, value.Text("x"), Negative, meta.UnknownType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, id := CanDeserialize(tc.conv, tc.helper, tc.typ, tc.tag, tc.v)
			if got != tc.want {
				t.Errorf("capability = %v, want %v", got, tc.want)
			}
			if id != tc.wantID {
				t.Errorf("type = %v, want %v", id, tc.wantID)
			}
		})
	}
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(&stubConverter{name: "fallback"}, PriorityFallback)
	r.Add(&stubConverter{name: "object"}, PriorityObject)
	r.Add(&stubConverter{name: "list"}, PriorityList)
	r.Add(&stubConverter{name: "custom"}, PriorityObject)
	r.Add(&stubConverter{name: "first"}, 0)

	var names []string
	for _, c := range r.Converters() {
		names = append(names, c.Name())
	}
	want := []string{"first", "list", "object", "custom", "fallback"}
	if len(names) != len(want) {
		t.Fatalf("Converters() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Converters()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if r.Len() != 5 {
		t.Errorf("Len() = %d, want 5", r.Len())
	}
}

func TestRegistryExtremePriorities(t *testing.T) {
	r := NewRegistry()
	r.Add(&stubConverter{name: "last"}, math.MaxInt)
	r.Add(&stubConverter{name: "first"}, math.MinInt)
	r.Add(&stubConverter{name: "middle"}, PriorityPrimitive)
	r.Add(&stubConverter{name: "also-last"}, math.MaxInt)

	var names []string
	for _, c := range r.Converters() {
		names = append(names, c.Name())
	}
	want := []string{"first", "middle", "last", "also-last"}
	if len(names) != len(want) {
		t.Fatalf("Converters() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Converters()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCapabilityString(t *testing.T) {
	tests := []struct {
		c    Capability
		want string
	}{
		{Negative, "negative"},
		{Positive, "positive"},
		{WrongTag, "wrong-tag"},
		{Guessed, "guessed"},
		{Capability(9), "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.c.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}
