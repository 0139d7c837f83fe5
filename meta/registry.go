package meta

import (
	"net/url"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/cbor-serializer/errors"
)

// TypeID identifies a registered type. UnknownType asks the engine to guess.
type TypeID uint32

// Builtin types, registered by NewRegistry in this order.
const (
	UnknownType TypeID = iota
	Nil
	Bool
	Int
	Int8
	Int16
	Int32
	Int64
	Uint
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String
	Bytes
	Time
	URL
	UUID
	Any
	AnyList
	AnyMap
	AnySet

	firstUserType
)

// TypeInfo describes one registered type.
type TypeInfo struct {
	GoType  reflect.Type
	Class   *ClassDescriptor
	Enum    *EnumDescriptor
	Wrap    func(elem any) (any, error)
	Unwrap  func(v any) (any, bool)
	Name    string
	Members []TypeID
	ID      TypeID
	Elem    TypeID
	Key     TypeID
	Kind    Kind

	props []PropertyDescriptor
}

// Registry maps TypeIDs to type information. It is safe for concurrent
// use; registration takes the write lock and lookups the read lock.
type Registry struct {
	byGo   sync.Map // reflect.Type -> TypeID
	byName map[string]TypeID
	subs   map[TypeID][]TypeID
	types  []*TypeInfo
	mu     sync.RWMutex
}

// NewRegistry creates a registry holding the builtin types.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]TypeID),
		subs:   make(map[TypeID][]TypeID),
		types:  make([]*TypeInfo, 1, 64),
	}
	r.types[UnknownType] = &TypeInfo{Name: "<unknown>", Kind: KindInvalid}

	builtins := []TypeInfo{
		{Name: "nil", Kind: KindNil},
		{Name: "bool", Kind: KindBool, GoType: reflect.TypeFor[bool]()},
		{Name: "int", Kind: KindInt, GoType: reflect.TypeFor[int]()},
		{Name: "int8", Kind: KindInt, GoType: reflect.TypeFor[int8]()},
		{Name: "int16", Kind: KindInt, GoType: reflect.TypeFor[int16]()},
		{Name: "int32", Kind: KindInt, GoType: reflect.TypeFor[int32]()},
		{Name: "int64", Kind: KindInt, GoType: reflect.TypeFor[int64]()},
		{Name: "uint", Kind: KindUint, GoType: reflect.TypeFor[uint]()},
		{Name: "uint8", Kind: KindUint, GoType: reflect.TypeFor[uint8]()},
		{Name: "uint16", Kind: KindUint, GoType: reflect.TypeFor[uint16]()},
		{Name: "uint32", Kind: KindUint, GoType: reflect.TypeFor[uint32]()},
		{Name: "uint64", Kind: KindUint, GoType: reflect.TypeFor[uint64]()},
		{Name: "float32", Kind: KindFloat, GoType: reflect.TypeFor[float32]()},
		{Name: "float64", Kind: KindFloat, GoType: reflect.TypeFor[float64]()},
		{Name: "string", Kind: KindString, GoType: reflect.TypeFor[string]()},
		{Name: "bytes", Kind: KindBytes, GoType: reflect.TypeFor[[]byte]()},
		{Name: "time", Kind: KindTime, GoType: reflect.TypeFor[time.Time]()},
		{Name: "url", Kind: KindURL, GoType: reflect.TypeFor[*url.URL]()},
		{Name: "uuid", Kind: KindUUID, GoType: reflect.TypeFor[uuid.UUID]()},
		{Name: "any", Kind: KindAny, GoType: reflect.TypeFor[any]()},
		{Name: "List<any>", Kind: KindList, GoType: reflect.TypeFor[[]any](), Elem: Any},
		{Name: "Map<string,any>", Kind: KindMap, GoType: reflect.TypeFor[map[string]any](), Key: String, Elem: Any},
		{Name: "Set<any>", Kind: KindSet, GoType: reflect.TypeFor[map[any]struct{}](), Elem: Any},
	}
	for i := range builtins {
		r.add(&builtins[i])
	}
	return r
}

// Register adds a type and returns its ID. Registering the same name again
// with the same kind and Go type returns the existing ID.
func (r *Registry) Register(info TypeInfo) (TypeID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info.Name == "" {
		return UnknownType, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Detail("type name is empty").
			Build()
	}
	if id, ok := r.byName[info.Name]; ok {
		existing := r.types[id]
		if existing.Kind == info.Kind && existing.GoType == info.GoType {
			return id, nil
		}
		return UnknownType, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(info.Name).
			Detail("name already registered as %s", existing.Kind).
			Build()
	}
	if err := r.validate(&info); err != nil {
		return UnknownType, err
	}

	if info.Kind == KindObject {
		props, err := r.flatten(&info)
		if err != nil {
			return UnknownType, err
		}
		info.props = props
	}

	id := r.add(&info)
	if info.Kind == KindObject && info.Class.Super != UnknownType {
		r.subs[info.Class.Super] = append(r.subs[info.Class.Super], id)
	}
	return id, nil
}

func (r *Registry) add(info *TypeInfo) TypeID {
	info.ID = TypeID(len(r.types))
	r.types = append(r.types, info)
	r.byName[info.Name] = info.ID
	if info.GoType != nil {
		r.byGo.LoadOrStore(info.GoType, info.ID)
	}
	return info.ID
}

func (r *Registry) validate(info *TypeInfo) error {
	known := func(id TypeID) bool {
		return id != UnknownType && int(id) < len(r.types)
	}
	fail := func(format string, args ...any) error {
		return errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(info.Name).
			Detail(format, args...).
			Build()
	}

	if info.Kind.HasElem() && !known(info.Elem) {
		return fail("element type %d is not registered", info.Elem)
	}
	if info.Kind == KindMap && !known(info.Key) {
		return fail("key type %d is not registered", info.Key)
	}
	for _, m := range info.Members {
		if !known(m) {
			return fail("member type %d is not registered", m)
		}
	}
	switch info.Kind {
	case KindInvalid:
		return fail("kind is invalid")
	case KindOptional, KindPointer, KindWeak:
		if info.Wrap == nil || info.Unwrap == nil {
			return fail("%s types need wrap and unwrap functions", info.Kind)
		}
	case KindEnum:
		if info.Enum == nil {
			return fail("enum descriptor missing")
		}
	case KindObject:
		c := info.Class
		if c == nil {
			return fail("class descriptor missing")
		}
		if c.Name != info.Name {
			return fail("class name %q does not match type name", c.Name)
		}
		if c.Super != UnknownType {
			if !known(c.Super) || r.types[c.Super].Kind != KindObject {
				return fail("superclass %d is not a registered class", c.Super)
			}
		}
		if c.ConstructedOnly && c.Construct == nil {
			return fail("constructed-only class needs a constructor")
		}
		for _, p := range c.Properties {
			if !known(p.Type) {
				return fail("property %q has unregistered type %d", p.Name, p.Type)
			}
			if p.Get == nil || p.Set == nil {
				return fail("property %q needs accessors", p.Name)
			}
		}
	}
	return nil
}

// flatten collects inherited properties first, then the class's own.
func (r *Registry) flatten(info *TypeInfo) ([]PropertyDescriptor, error) {
	var props []PropertyDescriptor
	if super := info.Class.Super; super != UnknownType {
		props = append(props, r.types[super].props...)
	}
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		seen[p.Name] = true
	}
	for _, p := range info.Class.Properties {
		if seen[p.Name] {
			return nil, errors.New(errors.PhaseRegister, errors.KindRegistration).
				Type(info.Name).
				Detail("property %q redeclared", p.Name).
				Build()
		}
		seen[p.Name] = true
		props = append(props, p)
	}
	for _, name := range info.Class.ConstructorParams {
		if !seen[name] {
			return nil, errors.New(errors.PhaseRegister, errors.KindRegistration).
				Type(info.Name).
				Detail("constructor parameter %q is not a property", name).
				Build()
		}
	}
	return props, nil
}

// Info returns the type information for id.
func (r *Registry) Info(id TypeID) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == UnknownType || int(id) >= len(r.types) {
		return nil, false
	}
	return r.types[id], true
}

// Kind returns the kind of id, or KindInvalid.
func (r *Registry) Kind(id TypeID) Kind {
	if info, ok := r.Info(id); ok {
		return info.Kind
	}
	return KindInvalid
}

// Name returns the canonical name of id.
func (r *Registry) Name(id TypeID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.types) {
		return "<unregistered>"
	}
	return r.types[id].Name
}

// ByName looks up a type by canonical name.
func (r *Registry) ByName(name string) (TypeID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// TypeOf returns the first type registered for a Go type.
func (r *Registry) TypeOf(t reflect.Type) (TypeID, bool) {
	if t == nil {
		return Nil, true
	}
	if id, ok := r.byGo.Load(t); ok {
		return id.(TypeID), true
	}
	return UnknownType, false
}

// TypeOfValue returns the type registered for v's dynamic Go type.
func (r *Registry) TypeOfValue(v any) (TypeID, bool) {
	return r.TypeOf(reflect.TypeOf(v))
}

// Zero returns the zero value for id.
func (r *Registry) Zero(id TypeID) any {
	info, ok := r.Info(id)
	if !ok || info.GoType == nil || info.Kind == KindAny {
		return nil
	}
	return reflect.Zero(info.GoType).Interface()
}

// Class returns the class descriptor of an object type.
func (r *Registry) Class(id TypeID) (*ClassDescriptor, bool) {
	info, ok := r.Info(id)
	if !ok || info.Kind != KindObject {
		return nil, false
	}
	return info.Class, true
}

// Properties returns the full property list of a class, inherited first.
func (r *Registry) Properties(id TypeID) []PropertyDescriptor {
	info, ok := r.Info(id)
	if !ok {
		return nil
	}
	return info.props
}

// IsSubclass reports whether id is base or derives from it.
func (r *Registry) IsSubclass(id, base TypeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id != UnknownType && int(id) < len(r.types) {
		if id == base {
			return true
		}
		info := r.types[id]
		if info.Kind != KindObject {
			return false
		}
		id = info.Class.Super
	}
	return false
}

// ResolveSubtype finds the class named name within base's hierarchy.
func (r *Registry) ResolveSubtype(base TypeID, name string) (TypeID, bool) {
	id, ok := r.ByName(name)
	if !ok || r.Kind(id) != KindObject {
		return UnknownType, false
	}
	if !r.IsSubclass(id, base) {
		return UnknownType, false
	}
	return id, true
}

// Subclasses returns the direct subclasses of id in registration order.
func (r *Registry) Subclasses(id TypeID) []TypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]TypeID(nil), r.subs[id]...)
}

// Instantiate default-constructs an instance of a class.
func (r *Registry) Instantiate(id TypeID, owner any) (any, error) {
	c, ok := r.Class(id)
	if !ok {
		return nil, errors.NotFound(errors.PhaseDeserialize, "class "+r.Name(id))
	}
	if c.ConstructedOnly || c.New == nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindInstantiation).
			Type(c.Name).
			Detail("class cannot be default-constructed").
			Build()
	}
	obj, err := c.New(owner)
	if err != nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindInstantiation).
			Type(c.Name).
			Cause(err).
			Build()
	}
	return obj, nil
}

// Construct builds an instance of a class from constructor arguments.
func (r *Registry) Construct(id TypeID, args []any, owner any) (any, error) {
	c, ok := r.Class(id)
	if !ok {
		return nil, errors.NotFound(errors.PhaseDeserialize, "class "+r.Name(id))
	}
	if c.Construct == nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindInstantiation).
			Type(c.Name).
			Detail("class has no constructor").
			Build()
	}
	obj, err := c.Construct(args, owner)
	if err != nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindInstantiation).
			Type(c.Name).
			Cause(err).
			Build()
	}
	return obj, nil
}

// Len returns the number of registered types including builtins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types) - 1
}
