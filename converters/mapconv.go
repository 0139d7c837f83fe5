package converters

import (
	"fmt"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

const keyHint = "[key]"

// MapConverter handles associative types. Entries are written in sorted
// key order.
type MapConverter struct{}

func (MapConverter) Name() string { return "map" }

func (MapConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindMap
}

func (MapConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag {
	return []value.Tag{value.NoTag, value.ExplicitMap}
}

func (MapConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return mapShape
}

func (MapConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	return meta.AnyMap, (tag == value.NoTag || tag == value.ExplicitMap) && v.Shape() == value.ShapeMap
}

func (MapConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	ti, err := info(h, t)
	if err != nil {
		return value.Value{}, err
	}
	entries, err := meta.Entries(v)
	if err != nil {
		return value.Value{}, errors.New(errors.PhaseSerialize, errors.KindTypeMismatch).
			Type(ti.Name).
			Detail("value of Go type %T is not a map", v).
			Cause(err).
			Build()
	}

	pairs := make([]value.Pair, 0, meta.SeqLen(v))
	for k, x := range entries {
		kv, err := h.Serialize(ti.Key, k, keyHint)
		if err != nil {
			return value.Value{}, err
		}
		xv, err := h.Serialize(ti.Elem, x, fmt.Sprint(k))
		if err != nil {
			return value.Value{}, err
		}
		pairs = append(pairs, value.Pair{Key: kv, Value: xv})
	}
	return value.Map(pairs...), nil
}

func (MapConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, parent any) (any, error) {
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	w, err := meta.NewMapWriter(ti.GoType)
	if err != nil {
		return nil, err
	}

	for _, p := range v.Pairs() {
		k, err := h.Deserialize(ti.Key, p.Key, parent, keyHint)
		if err != nil {
			return nil, err
		}
		hint := p.Key.String()
		if p.Key.Shape() == value.ShapeText {
			hint = p.Key.Text()
		}
		x, err := h.Deserialize(ti.Elem, p.Value, parent, hint)
		if err != nil {
			return nil, err
		}
		if err := w.Put(k, x); err != nil {
			return nil, assignFailed(h, t, "entry "+hint, err)
		}
	}
	return w.Value(), nil
}
