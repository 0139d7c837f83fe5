package meta

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wippyai/cbor-serializer/errors"
)

// PropertyDescriptor describes one named, typed property of a class.
type PropertyDescriptor struct {
	Get      func(obj any) (any, error)
	Set      func(obj any, v any) error
	Name     string
	Type     TypeID
	Stored   bool
	Optional bool
	Identity bool
}

// ClassDescriptor describes an object type.
type ClassDescriptor struct {
	New               func(owner any) (any, error)
	Construct         func(args []any, owner any) (any, error)
	Name              string
	Properties        []PropertyDescriptor
	ConstructorParams []string
	Super             TypeID
	Polymorphic       bool
	ForcePolymorphic  bool
	ConstructedOnly   bool
}

// PolymorphicObject lets an instance override its class's polymorphic flag.
type PolymorphicObject interface {
	IsPolymorphic() bool
}

// DynamicProperties is implemented by objects that keep properties outside
// their declared property list.
type DynamicProperties interface {
	DynamicPropertyNames() []string
	DynamicProperty(name string) (any, bool)
	SetDynamicProperty(name string, v any)
}

// Owner is implemented by objects that keep decoded children alive, such as
// the targets of weak references.
type Owner interface {
	Adopt(child any)
}

// Dynamic is an embeddable DynamicProperties implementation that keeps
// insertion order.
type Dynamic struct {
	values map[string]any
	names  []string
}

func (d *Dynamic) DynamicPropertyNames() []string {
	return d.names
}

func (d *Dynamic) DynamicProperty(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

func (d *Dynamic) SetDynamicProperty(name string, v any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[name]; !ok {
		d.names = append(d.names, name)
	}
	d.values[name] = v
}

// Children is an embeddable Owner implementation.
type Children struct {
	adopted []any
}

func (c *Children) Adopt(child any) {
	c.adopted = append(c.adopted, child)
}

// Adopted returns the children adopted so far.
func (c *Children) Adopted() []any {
	return c.adopted
}

type classConfig struct {
	propTypes map[string]TypeID
	newFn     func(owner any) (any, error)
	construct func(args []any, owner any) (any, error)
	params    []string
	super     TypeID
	hasSuper  bool
	poly      bool
	forcePoly bool
	ctorOnly  bool
}

// ClassOption configures RegisterStruct.
type ClassOption func(*classConfig)

// Polymorphic marks the class as polymorphic.
func Polymorphic() ClassOption {
	return func(c *classConfig) { c.poly = true }
}

// ForcePolymorphic makes the class always record its class name.
func ForcePolymorphic() ClassOption {
	return func(c *classConfig) { c.forcePoly = true }
}

// Super sets the superclass explicitly instead of deriving it from an
// embedded class struct.
func Super(id TypeID) ClassOption {
	return func(c *classConfig) {
		c.super = id
		c.hasSuper = true
	}
}

// WithNew replaces the default zero-value constructor.
func WithNew(fn func(owner any) (any, error)) ClassOption {
	return func(c *classConfig) { c.newFn = fn }
}

// Constructed declares a constructor taking the named properties as
// arguments. With only set, the class cannot be default-constructed.
func Constructed(fn func(args []any, owner any) (any, error), only bool, params ...string) ClassOption {
	return func(c *classConfig) {
		c.construct = fn
		c.params = params
		c.ctorOnly = only
	}
}

// PropertyType overrides the registered type of a property, for fields
// whose Go type is an interface or is registered more than once.
func PropertyType(name string, id TypeID) ClassOption {
	return func(c *classConfig) {
		if c.propTypes == nil {
			c.propTypes = make(map[string]TypeID)
		}
		c.propTypes[name] = id
	}
}

// RegisterStruct registers *T as an object class built from T's exported
// fields.
func RegisterStruct[T any](r *Registry, name string, opts ...ClassOption) (TypeID, error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return UnknownType, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(name).
			Detail("Go type %s is not a struct", rt).
			Build()
	}

	var cfg classConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	desc := &ClassDescriptor{
		Name:              name,
		Polymorphic:       cfg.poly,
		ForcePolymorphic:  cfg.forcePoly,
		ConstructedOnly:   cfg.ctorOnly,
		ConstructorParams: cfg.params,
		Construct:         cfg.construct,
		Super:             cfg.super,
	}

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.Anonymous {
			if !cfg.hasSuper && desc.Super == UnknownType && field.Type.Kind() == reflect.Struct {
				if id, ok := r.TypeOf(reflect.PointerTo(field.Type)); ok && r.Kind(id) == KindObject {
					desc.Super = id
				}
			}
			continue
		}
		if !field.IsExported() {
			continue
		}

		prop, skip, err := structProperty(r, name, field, cfg.propTypes)
		if err != nil {
			return UnknownType, err
		}
		if !skip {
			desc.Properties = append(desc.Properties, prop)
		}
	}

	if !cfg.ctorOnly {
		desc.New = cfg.newFn
		if desc.New == nil {
			desc.New = func(any) (any, error) {
				return reflect.New(rt).Interface(), nil
			}
		}
	}

	return r.Register(TypeInfo{
		Name:   name,
		Kind:   KindObject,
		GoType: reflect.PointerTo(rt),
		Class:  desc,
	})
}

// RegisterClass registers a hand-written class descriptor for goType.
// Property getters and setters receive values of goType.
func RegisterClass(r *Registry, goType reflect.Type, desc *ClassDescriptor) (TypeID, error) {
	if desc == nil {
		return UnknownType, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Detail("class descriptor is nil").
			Build()
	}
	return r.Register(TypeInfo{
		Name:   desc.Name,
		Kind:   KindObject,
		GoType: goType,
		Class:  desc,
	})
}

func structProperty(r *Registry, class string, field reflect.StructField, overrides map[string]TypeID) (PropertyDescriptor, bool, error) {
	prop := PropertyDescriptor{
		Name:   lowerFirst(field.Name),
		Stored: true,
	}

	if tag, ok := field.Tag.Lookup("cbor"); ok {
		name, rest, _ := strings.Cut(tag, ",")
		if name == "-" {
			return prop, true, nil
		}
		if name != "" {
			prop.Name = name
		}
		for _, opt := range strings.Split(rest, ",") {
			switch opt {
			case "unstored":
				prop.Stored = false
			case "optional":
				prop.Optional = true
			case "identity":
				prop.Identity = true
			}
		}
	}

	id, ok := overrides[prop.Name]
	if !ok {
		id, ok = overrides[field.Name]
	}
	if !ok {
		id, ok = r.TypeOf(field.Type)
	}
	if !ok {
		return prop, false, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(class).
			Detail("property %q: Go type %s is not registered", prop.Name, field.Type).
			Build()
	}
	prop.Type = id

	goName := field.Name
	prop.Get = func(obj any) (any, error) {
		f, err := fieldOf(obj, goName)
		if err != nil {
			return nil, err
		}
		return f.Interface(), nil
	}
	prop.Set = func(obj any, v any) error {
		f, err := fieldOf(obj, goName)
		if err != nil {
			return err
		}
		if !f.CanSet() {
			return errors.New(errors.PhaseDeserialize, errors.KindPropertyAssignment).
				Detail("field %s of %T is not settable", goName, obj).
				Build()
		}
		return Assign(f, v)
	}
	return prop, false, nil
}

// fieldOf resolves a field by name through pointers and embedded structs,
// so subclass instances expose their inherited fields.
func fieldOf(obj any, name string) (reflect.Value, error) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, errors.New(errors.PhaseSerialize, errors.KindTypeMismatch).
				Detail("nil object while accessing %s", name).
				Build()
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseSerialize, "struct", obj)
	}
	f := rv.FieldByName(name)
	if !f.IsValid() {
		return reflect.Value{}, errors.New(errors.PhaseSerialize, errors.KindNotFound).
			Detail("%T has no field %s", obj, name).
			Build()
	}
	return f, nil
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
