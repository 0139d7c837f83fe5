package meta

import (
	"reflect"
	"strings"
	"weak"

	"github.com/wippyai/cbor-serializer/errors"
)

// Pair is the Go representation of a two-element heterogeneous pair.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Optional is the Go representation of a value that may be absent.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an absent optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (r *Registry) compositeName(prefix string, ids ...TypeID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = r.Name(id)
	}
	return prefix + "<" + strings.Join(names, ",") + ">"
}

// RegisterList registers []T as List<elem>.
func RegisterList[T any](r *Registry, elem TypeID) (TypeID, error) {
	return r.Register(TypeInfo{
		Name:   r.compositeName("List", elem),
		Kind:   KindList,
		GoType: reflect.TypeFor[[]T](),
		Elem:   elem,
	})
}

// RegisterSet registers map[T]struct{} as Set<elem>.
func RegisterSet[T comparable](r *Registry, elem TypeID) (TypeID, error) {
	return r.Register(TypeInfo{
		Name:   r.compositeName("Set", elem),
		Kind:   KindSet,
		GoType: reflect.TypeFor[map[T]struct{}](),
		Elem:   elem,
	})
}

// RegisterMap registers map[K]V as Map<key,val>.
func RegisterMap[K comparable, V any](r *Registry, key, val TypeID) (TypeID, error) {
	return r.Register(TypeInfo{
		Name:   r.compositeName("Map", key, val),
		Kind:   KindMap,
		GoType: reflect.TypeFor[map[K]V](),
		Key:    key,
		Elem:   val,
	})
}

// RegisterPair registers Pair[A, B] as Pair<first,second>.
func RegisterPair[A, B any](r *Registry, first, second TypeID) (TypeID, error) {
	return r.Register(TypeInfo{
		Name:    r.compositeName("Pair", first, second),
		Kind:    KindPair,
		GoType:  reflect.TypeFor[Pair[A, B]](),
		Members: []TypeID{first, second},
	})
}

// RegisterTuple registers a struct or array type T as a fixed-arity tuple.
// Struct fields map to members in declaration order.
func RegisterTuple[T any](r *Registry, members ...TypeID) (TypeID, error) {
	rt := reflect.TypeFor[T]()
	name := r.compositeName("Tuple", members...)
	var arity int
	switch rt.Kind() {
	case reflect.Struct:
		arity = rt.NumField()
		for i := 0; i < arity; i++ {
			if !rt.Field(i).IsExported() {
				return UnknownType, errors.New(errors.PhaseRegister, errors.KindRegistration).
					Type(name).
					Detail("tuple field %s is unexported", rt.Field(i).Name).
					Build()
			}
		}
	case reflect.Array:
		arity = rt.Len()
	default:
		return UnknownType, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(name).
			Detail("Go type %s is neither struct nor array", rt).
			Build()
	}
	if arity != len(members) {
		return UnknownType, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(name).
			Detail("Go type %s has %d fields, want %d", rt, arity, len(members)).
			Build()
	}
	return r.Register(TypeInfo{
		Name:    name,
		Kind:    KindTuple,
		GoType:  rt,
		Members: members,
	})
}

// RegisterOptional registers Optional[T] as Optional<elem>.
func RegisterOptional[T any](r *Registry, elem TypeID) (TypeID, error) {
	return r.Register(TypeInfo{
		Name:   r.compositeName("Optional", elem),
		Kind:   KindOptional,
		GoType: reflect.TypeFor[Optional[T]](),
		Elem:   elem,
		Wrap: func(v any) (any, error) {
			if v == nil {
				return Optional[T]{Valid: true}, nil
			}
			var x T
			if err := Assign(reflect.ValueOf(&x).Elem(), v); err != nil {
				return nil, err
			}
			return Some(x), nil
		},
		Unwrap: func(v any) (any, bool) {
			o, ok := v.(Optional[T])
			if !ok || !o.Valid {
				return nil, false
			}
			return o.Value, true
		},
	})
}

// RegisterPointer registers *T as a shared reference to elem. Object
// classes are already pointers and need no wrapper.
func RegisterPointer[T any](r *Registry, elem TypeID) (TypeID, error) {
	return r.Register(TypeInfo{
		Name:   r.compositeName("Pointer", elem),
		Kind:   KindPointer,
		GoType: reflect.TypeFor[*T](),
		Elem:   elem,
		Wrap: func(v any) (any, error) {
			p := new(T)
			if err := Assign(reflect.ValueOf(p).Elem(), v); err != nil {
				return nil, err
			}
			return p, nil
		},
		Unwrap: func(v any) (any, bool) {
			p, ok := v.(*T)
			if !ok || p == nil {
				return nil, false
			}
			return *p, true
		},
	})
}

// RegisterWeak registers weak.Pointer[T] as a non-owning reference to an
// element of Go type *T.
func RegisterWeak[T any](r *Registry, elem TypeID) (TypeID, error) {
	return r.Register(TypeInfo{
		Name:   r.compositeName("Weak", elem),
		Kind:   KindWeak,
		GoType: reflect.TypeFor[weak.Pointer[T]](),
		Elem:   elem,
		Wrap: func(v any) (any, error) {
			if v == nil {
				return weak.Pointer[T]{}, nil
			}
			p, ok := v.(*T)
			if !ok {
				return nil, errors.TypeMismatch(errors.PhaseDeserialize, reflect.TypeFor[*T]().String(), v)
			}
			return weak.Make(p), nil
		},
		Unwrap: func(v any) (any, bool) {
			w, ok := v.(weak.Pointer[T])
			if !ok {
				return nil, false
			}
			p := w.Value()
			if p == nil {
				return nil, false
			}
			return p, true
		},
	})
}

// RegisterVariant registers the interface type I as a choice between
// members. Decoding tries the members in order.
func RegisterVariant[I any](r *Registry, members ...TypeID) (TypeID, error) {
	rt := reflect.TypeFor[I]()
	name := r.compositeName("Variant", members...)
	if rt.Kind() != reflect.Interface {
		return UnknownType, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(name).
			Detail("Go type %s is not an interface", rt).
			Build()
	}
	return r.Register(TypeInfo{
		Name:    name,
		Kind:    KindVariant,
		GoType:  rt,
		Members: members,
	})
}
