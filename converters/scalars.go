package converters

import (
	"math"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// TimeConverter maps time.Time to RFC 3339 text (tag 0) and reads epoch
// seconds (tag 1).
type TimeConverter struct{}

func (TimeConverter) Name() string { return "time" }

func (TimeConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindTime
}

func (TimeConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag {
	return []value.Tag{value.NoTag, value.DateTimeString, value.EpochDateTime}
}

func (TimeConverter) AllowedShapes(_ converter.Helper, _ meta.TypeID, tag value.Tag) []value.Shape {
	if tag == value.EpochDateTime {
		return []value.Shape{value.ShapeInteger, value.ShapeDouble}
	}
	return []value.Shape{value.ShapeText}
}

func (TimeConverter) Guess(_ converter.Helper, tag value.Tag, _ value.Value) (meta.TypeID, bool) {
	return meta.Time, tag == value.DateTimeString || tag == value.EpochDateTime
}

func (TimeConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	tm, ok := v.(time.Time)
	if !ok {
		return value.Value{}, serializeMismatch(h, t, v)
	}
	return value.Tagged(value.DateTimeString, value.Text(tm.Format(time.RFC3339Nano))), nil
}

func (TimeConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	c := v.Content()
	switch c.Shape() {
	case value.ShapeInteger:
		return time.Unix(c.Int(), 0).UTC(), nil
	case value.ShapeDouble:
		f := c.Double()
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, unconvertible(h, t, v)
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}
	tm, err := time.Parse(time.RFC3339Nano, c.Text())
	if err != nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindUnconvertible).
			Type(h.Types().Name(t)).
			Detail("invalid date-time %q", c.Text()).
			Cause(err).
			Build()
	}
	return tm, nil
}

// URLConverter maps *url.URL to text tagged 32.
type URLConverter struct{}

func (URLConverter) Name() string { return "url" }

func (URLConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindURL
}

func (URLConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag {
	return []value.Tag{value.NoTag, value.URL}
}

func (URLConverter) AllowedShapes(_ converter.Helper, _ meta.TypeID, tag value.Tag) []value.Shape {
	if tag == value.NoTag {
		return []value.Shape{value.ShapeText, value.ShapeNull}
	}
	return []value.Shape{value.ShapeText}
}

func (URLConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	return meta.URL, tag == value.URL && v.Shape() == value.ShapeText
}

func (URLConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	u, ok := v.(*url.URL)
	if !ok {
		return value.Value{}, serializeMismatch(h, t, v)
	}
	if u == nil {
		return value.Null(), nil
	}
	return value.Tagged(value.URL, value.Text(u.String())), nil
}

func (URLConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	if v.IsNull() {
		return (*url.URL)(nil), nil
	}
	u, err := url.Parse(v.Text())
	if err != nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindUnconvertible).
			Type(h.Types().Name(t)).
			Detail("invalid URL").
			Cause(err).
			Build()
	}
	return u, nil
}

// UUIDConverter maps uuid.UUID to 16 bytes tagged 37. Text in canonical
// form is accepted on input.
type UUIDConverter struct{}

func (UUIDConverter) Name() string { return "uuid" }

func (UUIDConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindUUID
}

func (UUIDConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag {
	return []value.Tag{value.NoTag, value.UUID}
}

func (UUIDConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return []value.Shape{value.ShapeBytes, value.ShapeText}
}

func (UUIDConverter) Guess(_ converter.Helper, tag value.Tag, _ value.Value) (meta.TypeID, bool) {
	return meta.UUID, tag == value.UUID
}

func (UUIDConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	id, ok := v.(uuid.UUID)
	if !ok {
		return value.Value{}, serializeMismatch(h, t, v)
	}
	return value.Tagged(value.UUID, value.Bytes(id[:])), nil
}

func (UUIDConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, _ any) (any, error) {
	c := v.Content()
	var (
		id  uuid.UUID
		err error
	)
	if c.Shape() == value.ShapeBytes {
		id, err = uuid.FromBytes(c.ByteString())
	} else {
		id, err = uuid.Parse(c.Text())
	}
	if err != nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindUnconvertible).
			Type(h.Types().Name(t)).
			Detail("invalid UUID").
			Cause(err).
			Build()
	}
	return id, nil
}
