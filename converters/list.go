package converters

import (
	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// ListConverter handles list and set types. Sets are written with the Set
// tag; the Homogeneous tag is accepted on input.
type ListConverter struct{}

func (ListConverter) Name() string { return "list" }

func (ListConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	k := h.Types().Kind(t)
	return k == meta.KindList || k == meta.KindSet
}

func (ListConverter) AllowedTags(h converter.Helper, t meta.TypeID) []value.Tag {
	if h.Types().Kind(t) == meta.KindSet {
		return []value.Tag{value.NoTag, value.Homogeneous, value.Set}
	}
	return []value.Tag{value.NoTag, value.Homogeneous}
}

func (ListConverter) AllowedShapes(converter.Helper, meta.TypeID, value.Tag) []value.Shape {
	return arrayShape
}

func (ListConverter) Guess(_ converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	if v.Shape() != value.ShapeArray {
		return meta.UnknownType, false
	}
	switch tag {
	case value.NoTag, value.Homogeneous:
		return meta.AnyList, true
	case value.Set:
		return meta.AnySet, true
	}
	return meta.UnknownType, false
}

func (ListConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	ti, err := info(h, t)
	if err != nil {
		return value.Value{}, err
	}
	seq, err := meta.Elements(v)
	if err != nil {
		return value.Value{}, errors.New(errors.PhaseSerialize, errors.KindTypeMismatch).
			Type(ti.Name).
			Detail("value of Go type %T cannot be iterated", v).
			Cause(err).
			Build()
	}

	elems := make([]value.Value, 0, meta.SeqLen(v))
	i := 0
	for e := range seq {
		ev, err := h.Serialize(ti.Elem, e, indexHint(i))
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, ev)
		i++
	}

	out := value.Array(elems...)
	if ti.Kind == meta.KindSet {
		return value.Tagged(value.Set, out), nil
	}
	return out, nil
}

func (ListConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, parent any) (any, error) {
	ti, err := info(h, t)
	if err != nil {
		return nil, err
	}
	w, err := meta.NewWriter(ti.GoType)
	if err != nil {
		return nil, err
	}

	elems := v.Elements()
	w.Reserve(len(elems))
	for i, e := range elems {
		x, err := h.Deserialize(ti.Elem, e, parent, indexHint(i))
		if err != nil {
			return nil, err
		}
		if err := w.Add(x); err != nil {
			return nil, assignFailed(h, t, "element "+indexHint(i), err)
		}
	}
	return w.Value(), nil
}
