package meta

import (
	"reflect"
	"strings"

	"golang.org/x/exp/constraints"
)

// EnumValue is one named enumerator.
type EnumValue struct {
	Name  string
	Value int64
}

// EnumDescriptor lists the enumerators of an enum or flags type.
type EnumDescriptor struct {
	Name   string
	Values []EnumValue
	Flags  bool
}

// Key returns the name of an exact enumerator value.
func (e *EnumDescriptor) Key(v int64) (string, bool) {
	for _, ev := range e.Values {
		if ev.Value == v {
			return ev.Name, true
		}
	}
	return "", false
}

// Lookup returns the value of a named enumerator.
func (e *EnumDescriptor) Lookup(name string) (int64, bool) {
	for _, ev := range e.Values {
		if ev.Name == name {
			return ev.Value, true
		}
	}
	return 0, false
}

// Keys renders a flags value as "A|B". It fails when bits remain that no
// enumerator covers.
func (e *EnumDescriptor) Keys(v int64) (string, bool) {
	if v == 0 {
		if name, ok := e.Key(0); ok {
			return name, true
		}
		return "", true
	}
	var names []string
	remaining := v
	for _, ev := range e.Values {
		if ev.Value != 0 && v&ev.Value == ev.Value {
			names = append(names, ev.Name)
			remaining &^= ev.Value
		}
	}
	if remaining != 0 {
		return "", false
	}
	return strings.Join(names, "|"), true
}

// ParseKeys parses a "A|B" flags string.
func (e *EnumDescriptor) ParseKeys(s string) (int64, bool) {
	if s == "" {
		return 0, true
	}
	var v int64
	for _, name := range strings.Split(s, "|") {
		ev, ok := e.Lookup(strings.TrimSpace(name))
		if !ok {
			return 0, false
		}
		v |= ev
	}
	return v, true
}

// Valid reports whether v is an enumerator, or a combination of flag bits.
func (e *EnumDescriptor) Valid(v int64) bool {
	if e.Flags {
		_, ok := e.Keys(v)
		return ok
	}
	_, ok := e.Key(v)
	return ok
}

// RegisterEnum registers T as an enum with the given enumerators.
func RegisterEnum[T constraints.Integer](r *Registry, name string, values ...EnumValue) (TypeID, error) {
	return registerEnum[T](r, name, false, values)
}

// RegisterFlags registers T as a bit set of the given enumerators.
func RegisterFlags[T constraints.Integer](r *Registry, name string, values ...EnumValue) (TypeID, error) {
	return registerEnum[T](r, name, true, values)
}

func registerEnum[T constraints.Integer](r *Registry, name string, flags bool, values []EnumValue) (TypeID, error) {
	return r.Register(TypeInfo{
		Name:   name,
		Kind:   KindEnum,
		GoType: reflect.TypeFor[T](),
		Enum: &EnumDescriptor{
			Name:   name,
			Values: values,
			Flags:  flags,
		},
	})
}
