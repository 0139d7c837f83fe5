package serializer

import (
	"maps"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/converters"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// Serializer converts Go values to and from value trees. Thread-safe.
type Serializer struct {
	types      *meta.Registry
	converters *converter.Registry
	typeTags   map[meta.TypeID]value.Tag
	tagTypes   map[value.Tag]meta.TypeID
	options    Options
	mu         sync.RWMutex
}

// New creates a Serializer over types with the built-in converters.
func New(types *meta.Registry, opts Options) *Serializer {
	return NewWithConverters(types, converters.NewRegistry(), opts)
}

// NewWithConverters creates a Serializer using an existing converter
// registry. The registry may be shared between serializers.
func NewWithConverters(types *meta.Registry, convs *converter.Registry, opts Options) *Serializer {
	return &Serializer{
		types:      types,
		converters: convs,
		typeTags:   map[meta.TypeID]value.Tag{},
		tagTypes:   map[value.Tag]meta.TypeID{},
		options:    opts,
	}
}

// Types returns the type registry.
func (s *Serializer) Types() *meta.Registry {
	return s.types
}

// Converters returns the converter registry.
func (s *Serializer) Converters() *converter.Registry {
	return s.converters
}

// AddConverter registers a custom converter. Lower priorities run first;
// see the converter.Priority constants for the built-in order.
func (s *Serializer) AddConverter(c converter.Converter, priority int) {
	s.converters.Add(c, priority)
}

// Options returns the current configuration.
func (s *Serializer) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

// SetOptions replaces the configuration for subsequent calls.
func (s *Serializer) SetOptions(opts Options) {
	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()
}

// SetPolymorphism changes the polymorphism policy.
func (s *Serializer) SetPolymorphism(p Polymorphism) {
	s.mu.Lock()
	s.options.Polymorphism = p
	s.mu.Unlock()
}

// SetValidation changes the validation flags.
func (s *Serializer) SetValidation(v ValidationFlags) {
	s.mu.Lock()
	s.options.Validation = v
	s.mu.Unlock()
}

// SetTypeTag wraps every serialized value of t in tag. On decode the tag
// is stripped, and with an unknown declared type it selects t.
// value.NoTag removes an assignment.
func (s *Serializer) SetTypeTag(t meta.TypeID, tag value.Tag) error {
	if _, ok := s.types.Info(t); !ok {
		return errors.NotFound(errors.PhaseRegister, "type "+s.types.Name(t))
	}
	if tag < value.NoTag {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Type(s.types.Name(t)).
			Detail("invalid tag %d", int64(tag)).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	typeTags := maps.Clone(s.typeTags)
	tagTypes := maps.Clone(s.tagTypes)
	if old, ok := typeTags[t]; ok {
		delete(tagTypes, old)
		if tag != value.NoTag && old != tag {
			Logger().Warn("type tag replaced",
				zap.String("type", s.types.Name(t)),
				zap.Stringer("old", old),
				zap.Stringer("new", tag))
		}
	}
	if tag == value.NoTag {
		delete(typeTags, t)
	} else {
		if prev, ok := tagTypes[tag]; ok && prev != t {
			delete(typeTags, prev)
			Logger().Warn("type tag moved to another type",
				zap.Stringer("tag", tag),
				zap.String("from", s.types.Name(prev)),
				zap.String("to", s.types.Name(t)))
		}
		typeTags[t] = tag
		tagTypes[tag] = t
	}
	s.typeTags = typeTags
	s.tagTypes = tagTypes
	return nil
}

// TypeTag returns the tag assigned to t, or value.NoTag.
func (s *Serializer) TypeTag(t meta.TypeID) value.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tag, ok := s.typeTags[t]; ok {
		return tag
	}
	return value.NoTag
}

// begin snapshots the configuration for one top-level call.
func (s *Serializer) begin() *call {
	s.mu.RLock()
	c := &call{
		types:    s.types,
		opts:     s.options,
		typeTags: s.typeTags,
		tagTypes: s.tagTypes,
	}
	s.mu.RUnlock()
	c.convs = s.converters.Converters()
	return c
}

// Serialize converts v, declared as t, to a value tree. With
// meta.UnknownType the type is taken from v's dynamic Go type.
func (s *Serializer) Serialize(t meta.TypeID, v any) (value.Value, error) {
	return s.begin().serialize(t, v)
}

// Deserialize converts v to a Go value of type t. With meta.UnknownType
// the type is guessed from the value's tag and shape. parent is handed to
// converters that link decoded values to an owner.
func (s *Serializer) Deserialize(v value.Value, t meta.TypeID, parent any) (any, error) {
	return s.begin().deserialize(t, v, parent)
}

// SerializeAs serializes v using the type registered for T.
func SerializeAs[T any](s *Serializer, v T) (value.Value, error) {
	t, err := typeFor[T](s, errors.PhaseSerialize)
	if err != nil {
		return value.Value{}, err
	}
	return s.Serialize(t, v)
}

// DeserializeAs deserializes v into the type registered for T.
func DeserializeAs[T any](s *Serializer, v value.Value, parent any) (T, error) {
	var zero T
	t, err := typeFor[T](s, errors.PhaseDeserialize)
	if err != nil {
		return zero, err
	}
	out, err := s.Deserialize(v, t, parent)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	res, ok := out.(T)
	if !ok {
		return zero, errors.TypeMismatch(errors.PhaseDeserialize, s.types.Name(t), out)
	}
	return res, nil
}

func typeFor[T any](s *Serializer, phase errors.Phase) (meta.TypeID, error) {
	rt := reflect.TypeFor[T]()
	t, ok := s.types.TypeOf(rt)
	if !ok {
		return meta.UnknownType, errors.NoConverter(phase, rt.String())
	}
	return t, nil
}
