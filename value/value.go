package value

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Value is one node of the encoded value tree. The zero Value is undefined.
type Value struct {
	inner *Value
	text  string
	bytes []byte
	arr   []Value
	pairs []Pair
	i     int64
	f     float64
	tag   Tag
	shape Shape
	b     bool
}

// Pair is one map entry.
type Pair struct {
	Key   Value
	Value Value
}

// KV builds a map entry with a text key.
func KV(key string, v Value) Pair {
	return Pair{Key: Text(key), Value: v}
}

func Null() Value { return Value{shape: ShapeNull, tag: NoTag} }

func Bool(b bool) Value { return Value{shape: ShapeBool, b: b, tag: NoTag} }

func Int(i int64) Value { return Value{shape: ShapeInteger, i: i, tag: NoTag} }

func Double(f float64) Value { return Value{shape: ShapeDouble, f: f, tag: NoTag} }

func Text(s string) Value { return Value{shape: ShapeText, text: s, tag: NoTag} }

func Bytes(b []byte) Value { return Value{shape: ShapeBytes, bytes: b, tag: NoTag} }

// Array builds an array value. The slice is not copied.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{shape: ShapeArray, arr: elems, tag: NoTag}
}

// Map builds a map value preserving the given entry order.
func Map(pairs ...Pair) Value {
	if pairs == nil {
		pairs = []Pair{}
	}
	return Value{shape: ShapeMap, pairs: pairs, tag: NoTag}
}

// Tagged wraps v with tag. Tagged(NoTag, v) returns v unchanged.
func Tagged(tag Tag, v Value) Value {
	if tag == NoTag {
		return v
	}
	inner := v
	return Value{shape: v.Shape(), tag: tag, inner: &inner}
}

// IsTagged reports whether the value carries a tag.
func (v Value) IsTagged() bool { return v.inner != nil }

// Tag returns the outermost tag, or NoTag.
func (v Value) Tag() Tag {
	if v.inner == nil {
		return NoTag
	}
	return v.tag
}

// Content strips the outermost tag. Untagged values are returned as is.
func (v Value) Content() Value {
	if v.inner == nil {
		return v
	}
	return *v.inner
}

// Untag returns the outermost tag and the wrapped value.
func (v Value) Untag() (Tag, Value) {
	return v.Tag(), v.Content()
}

// Shape returns the structural kind. For tagged values it is the shape of
// the innermost wrapped value.
func (v Value) Shape() Shape {
	if v.inner != nil {
		return v.inner.Shape()
	}
	return v.shape
}

func (v Value) IsUndefined() bool { return v.Shape() == ShapeUndefined }

// IsNull reports whether v is an untagged null.
func (v Value) IsNull() bool { return v.inner == nil && v.shape == ShapeNull }

func (v Value) Bool() bool {
	return v.Content().b
}

func (v Value) Int() int64 {
	return v.Content().i
}

func (v Value) Double() float64 {
	return v.Content().f
}

func (v Value) Text() string {
	return v.Content().text
}

func (v Value) ByteString() []byte {
	return v.Content().bytes
}

// Elements returns the array elements, or nil for non-arrays.
func (v Value) Elements() []Value {
	return v.Content().arr
}

// Pairs returns the map entries in insertion order, or nil for non-maps.
func (v Value) Pairs() []Pair {
	return v.Content().pairs
}

// Len returns the element count of arrays and maps, the byte length of text
// and bytes, and 0 otherwise.
func (v Value) Len() int {
	c := v.Content()
	switch c.shape {
	case ShapeArray:
		return len(c.arr)
	case ShapeMap:
		return len(c.pairs)
	case ShapeText:
		return len(c.text)
	case ShapeBytes:
		return len(c.bytes)
	}
	return 0
}

// Get looks up a text key in a map value.
func (v Value) Get(key string) (Value, bool) {
	for _, p := range v.Pairs() {
		if p.Key.Shape() == ShapeText && !p.Key.IsTagged() && p.Key.text == key {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Equal reports structural equality.
func Equal(a, b Value) bool {
	if a.Tag() != b.Tag() {
		return false
	}
	if a.IsTagged() {
		return Equal(*a.inner, *b.inner)
	}
	if a.shape != b.shape {
		return false
	}
	switch a.shape {
	case ShapeBool:
		return a.b == b.b
	case ShapeInteger:
		return a.i == b.i
	case ShapeDouble:
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
	case ShapeText:
		return a.text == b.text
	case ShapeBytes:
		return bytes.Equal(a.bytes, b.bytes)
	case ShapeArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case ShapeMap:
		if len(a.pairs) != len(b.pairs) {
			return false
		}
		for i := range a.pairs {
			if !Equal(a.pairs[i].Key, b.pairs[i].Key) || !Equal(a.pairs[i].Value, b.pairs[i].Value) {
				return false
			}
		}
		return true
	}
	return true
}

// String renders v in CBOR diagnostic notation (RFC 8949 section 8).
func (v Value) String() string {
	var b strings.Builder
	v.writeDiag(&b)
	return b.String()
}

func (v Value) writeDiag(b *strings.Builder) {
	if v.inner != nil {
		b.WriteString(strconv.FormatInt(int64(v.tag), 10))
		b.WriteByte('(')
		v.inner.writeDiag(b)
		b.WriteByte(')')
		return
	}
	switch v.shape {
	case ShapeUndefined:
		b.WriteString("undefined")
	case ShapeNull:
		b.WriteString("null")
	case ShapeBool:
		b.WriteString(strconv.FormatBool(v.b))
	case ShapeInteger:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case ShapeDouble:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		b.WriteString(s)
	case ShapeText:
		b.WriteString(strconv.Quote(v.text))
	case ShapeBytes:
		b.WriteString("h'")
		const hex = "0123456789abcdef"
		for _, c := range v.bytes {
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
		b.WriteByte('\'')
	case ShapeArray:
		b.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				b.WriteString(", ")
			}
			e.writeDiag(b)
		}
		b.WriteByte(']')
	case ShapeMap:
		b.WriteByte('{')
		for i, p := range v.pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			p.Key.writeDiag(b)
			b.WriteString(": ")
			p.Value.writeDiag(b)
		}
		b.WriteByte('}')
	}
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}
