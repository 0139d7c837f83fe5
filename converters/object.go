package converters

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// ClassKey is the map key naming the dynamic class of a plain object.
const ClassKey = "@class"

// ObjectConverter handles registered classes in four wire shapes:
//
//	plain        {"@class": "D", "key": 10, ...}
//	generic      27(["D", 10, 0.1])
//	constructed  ConstructedObject([["D", arg0, ...], {"rest": ...} | null])
//	null         an absent instance
//
// The polymorphism policy decides whether the dynamic class is recorded and
// honoured.
type ObjectConverter struct{}

func (ObjectConverter) Name() string { return "object" }

func (ObjectConverter) CanConvert(h converter.Helper, t meta.TypeID) bool {
	return h.Types().Kind(t) == meta.KindObject
}

func (ObjectConverter) AllowedTags(converter.Helper, meta.TypeID) []value.Tag {
	return []value.Tag{value.NoTag, value.GenericObject, value.ConstructedObject}
}

func (ObjectConverter) AllowedShapes(_ converter.Helper, _ meta.TypeID, tag value.Tag) []value.Shape {
	switch tag {
	case value.GenericObject:
		return arrayShape
	case value.ConstructedObject:
		return []value.Shape{value.ShapeArray, value.ShapeNull}
	}
	return []value.Shape{value.ShapeMap, value.ShapeNull}
}

// Guess recognizes generic and constructed records naming a registered
// class.
func (ObjectConverter) Guess(h converter.Helper, tag value.Tag, v value.Value) (meta.TypeID, bool) {
	if v.Shape() != value.ShapeArray || v.Len() == 0 {
		return meta.UnknownType, false
	}
	head := v.Elements()
	switch tag {
	case value.GenericObject:
	case value.ConstructedObject:
		if head[0].Shape() != value.ShapeArray || head[0].Len() == 0 {
			return meta.UnknownType, false
		}
		head = head[0].Elements()
	default:
		return meta.UnknownType, false
	}
	if head[0].Shape() != value.ShapeText {
		return meta.UnknownType, false
	}
	id, ok := h.Types().ByName(head[0].Text())
	if !ok || h.Types().Kind(id) != meta.KindObject {
		return meta.UnknownType, false
	}
	return id, true
}

func policy(h converter.Helper, c *meta.ClassDescriptor) converter.Polymorphism {
	p := h.Options().Polymorphism
	if p == converter.PolymorphismEnabled && c != nil && c.ForcePolymorphic {
		return converter.PolymorphismForced
	}
	return p
}

// wireProperties lists the properties a class writes, in wire order:
// inherited first, the identity property last when kept.
func wireProperties(h converter.Helper, cls meta.TypeID) []meta.PropertyDescriptor {
	keep := h.Options().KeepIdentityProperty
	all := h.Types().Properties(cls)
	out := make([]meta.PropertyDescriptor, 0, len(all))
	var identity []meta.PropertyDescriptor
	for _, p := range all {
		if p.Identity {
			if keep {
				identity = append(identity, p)
			}
			continue
		}
		out = append(out, p)
	}
	return append(out, identity...)
}

func stored(h converter.Helper, p meta.PropertyDescriptor) bool {
	return p.Stored || h.Options().IgnoreStoredFlag
}

func (o ObjectConverter) Serialize(h converter.Helper, t meta.TypeID, v any) (value.Value, error) {
	if isNil(v) {
		return value.Null(), nil
	}
	types := h.Types()
	declared, ok := types.Class(t)
	if !ok {
		return value.Value{}, errors.NotFound(errors.PhaseSerialize, "class "+types.Name(t))
	}

	cls, poly, err := o.encodeClass(h, t, declared, v)
	if err != nil {
		return value.Value{}, err
	}
	desc, _ := types.Class(cls)

	switch {
	case desc.ConstructedOnly:
		return o.serializeConstructed(h, cls, desc, v)
	case h.Options().GenericObjects:
		return o.serializeGeneric(h, cls, v)
	}
	return o.serializePlain(h, cls, v, poly)
}

// encodeClass picks the class whose properties are written and whether the
// class name goes on the wire.
func (ObjectConverter) encodeClass(h converter.Helper, t meta.TypeID, declared *meta.ClassDescriptor, v any) (meta.TypeID, bool, error) {
	types := h.Types()
	dyn, known := types.TypeOfValue(v)
	if known && (types.Kind(dyn) != meta.KindObject || !types.IsSubclass(dyn, t)) {
		known = false
	}

	switch policy(h, declared) {
	case converter.PolymorphismDisabled:
		return t, false, nil
	case converter.PolymorphismForced:
		if !known {
			return meta.UnknownType, false, errors.Polymorphism(errors.PhaseSerialize, declared.Name,
				fmt.Sprintf("no registered subclass for dynamic type %T", v))
		}
		return dyn, true, nil
	}

	if known && dyn != t {
		dynClass, _ := types.Class(dyn)
		polymorphic := dynClass.Polymorphic
		if p, ok := v.(meta.PolymorphicObject); ok {
			polymorphic = p.IsPolymorphic()
		}
		if polymorphic {
			return dyn, true, nil
		}
	}
	return t, false, nil
}

func (ObjectConverter) readProperty(h converter.Helper, cls meta.TypeID, p meta.PropertyDescriptor, v any) (value.Value, error) {
	x, err := p.Get(v)
	if err != nil {
		return value.Value{}, errors.New(errors.PhaseSerialize, errors.KindPropertyAssignment).
			Type(h.Types().Name(cls)).
			Detail("cannot read property %q", p.Name).
			Cause(err).
			Build()
	}
	return h.Serialize(p.Type, x, p.Name)
}

func (o ObjectConverter) serializePlain(h converter.Helper, cls meta.TypeID, v any, poly bool) (value.Value, error) {
	props := wireProperties(h, cls)
	pairs := make([]value.Pair, 0, len(props)+1)
	if poly {
		pairs = append(pairs, value.KV(ClassKey, value.Text(h.Types().Name(cls))))
	}

	declared := make(map[string]bool, len(props))
	for _, p := range props {
		declared[p.Name] = true
		if !stored(h, p) {
			continue
		}
		pv, err := o.readProperty(h, cls, p, v)
		if err != nil {
			return value.Value{}, err
		}
		pairs = append(pairs, value.KV(p.Name, pv))
	}

	if dyn, ok := v.(meta.DynamicProperties); ok {
		for _, name := range dyn.DynamicPropertyNames() {
			if declared[name] || name == ClassKey {
				continue
			}
			x, _ := dyn.DynamicProperty(name)
			pv, err := h.Serialize(meta.Any, x, name)
			if err != nil {
				return value.Value{}, err
			}
			pairs = append(pairs, value.KV(name, pv))
		}
	}
	return value.Map(pairs...), nil
}

// lastStored returns the index of the last property written positionally.
func lastStored(h converter.Helper, props []meta.PropertyDescriptor) int {
	last := -1
	for i, p := range props {
		if stored(h, p) {
			last = i
		}
	}
	return last
}

func (o ObjectConverter) serializeGeneric(h converter.Helper, cls meta.TypeID, v any) (value.Value, error) {
	props := wireProperties(h, cls)
	last := lastStored(h, props)
	elems := make([]value.Value, 0, last+2)
	elems = append(elems, value.Text(h.Types().Name(cls)))
	for _, p := range props[:last+1] {
		pv, err := o.readProperty(h, cls, p, v)
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, pv)
	}
	return value.Tagged(value.GenericObject, value.Array(elems...)), nil
}

func (o ObjectConverter) serializeConstructed(h converter.Helper, cls meta.TypeID, desc *meta.ClassDescriptor, v any) (value.Value, error) {
	byName := propertyIndex(h.Types().Properties(cls))
	head := make([]value.Value, 0, len(desc.ConstructorParams)+1)
	head = append(head, value.Text(desc.Name))
	isParam := make(map[string]bool, len(desc.ConstructorParams))
	for _, name := range desc.ConstructorParams {
		isParam[name] = true
		pv, err := o.readProperty(h, cls, byName[name], v)
		if err != nil {
			return value.Value{}, err
		}
		head = append(head, pv)
	}

	var pairs []value.Pair
	for _, p := range wireProperties(h, cls) {
		if isParam[p.Name] || !stored(h, p) {
			continue
		}
		pv, err := o.readProperty(h, cls, p, v)
		if err != nil {
			return value.Value{}, err
		}
		pairs = append(pairs, value.KV(p.Name, pv))
	}

	rest := value.Null()
	if len(pairs) > 0 {
		rest = value.Map(pairs...)
	}
	return value.Tagged(value.ConstructedObject, value.Array(value.Array(head...), rest)), nil
}

func propertyIndex(props []meta.PropertyDescriptor) map[string]meta.PropertyDescriptor {
	out := make(map[string]meta.PropertyDescriptor, len(props))
	for _, p := range props {
		out[p.Name] = p
	}
	return out
}

func (o ObjectConverter) Deserialize(h converter.Helper, t meta.TypeID, v value.Value, parent any) (any, error) {
	tag, content := v.Untag()
	if content.IsNull() {
		return h.Types().Zero(t), nil
	}
	switch tag {
	case value.GenericObject:
		return o.deserializeGeneric(h, t, content, parent)
	case value.ConstructedObject:
		return o.deserializeConstructed(h, t, content, parent)
	}
	if content.Shape() != value.ShapeMap {
		return nil, errors.ShapeMismatch(errors.PhaseDeserialize, h.Types().Name(t), content.Shape(), "map")
	}
	return o.deserializePlain(h, t, content, parent)
}

// resolveClass maps a class name found on the wire to a class within the
// declared hierarchy. With polymorphism disabled the declared class is
// always used.
func (ObjectConverter) resolveClass(h converter.Helper, t meta.TypeID, name string) (meta.TypeID, error) {
	types := h.Types()
	declared, _ := types.Class(t)
	if policy(h, declared) == converter.PolymorphismDisabled || name == types.Name(t) {
		return t, nil
	}
	id, ok := types.ResolveSubtype(t, name)
	if !ok {
		return meta.UnknownType, errors.UnresolvableClass(errors.PhaseDeserialize, name, types.Name(t))
	}
	converter.Logger().Debug("resolved dynamic class",
		zap.String("declared", types.Name(t)),
		zap.String("class", name))
	return id, nil
}

func (o ObjectConverter) deserializePlain(h converter.Helper, t meta.TypeID, m value.Value, parent any) (any, error) {
	types := h.Types()
	declared, _ := types.Class(t)
	cls := t

	classVal, hasClass := m.Get(ClassKey)
	switch p := policy(h, declared); {
	case p == converter.PolymorphismDisabled:
	case hasClass:
		if classVal.Shape() != value.ShapeText {
			return nil, errors.ShapeMismatch(errors.PhaseDeserialize, types.Name(t), classVal.Shape(), "class name text")
		}
		id, err := o.resolveClass(h, t, classVal.Text())
		if err != nil {
			return nil, err
		}
		cls = id
	case p == converter.PolymorphismForced:
		return nil, errors.New(errors.PhaseDeserialize, errors.KindMissingProperty).
			Type(types.Name(t)).
			Detail("%q is required when polymorphism is forced", ClassKey).
			Build()
	}

	obj, err := types.Instantiate(cls, parent)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	if err := o.applyMap(h, cls, obj, m, seen); err != nil {
		return nil, err
	}
	if err := checkAllProperties(h, cls, seen); err != nil {
		return nil, err
	}
	return obj, nil
}

// applyMap decodes map entries into obj. Unknown keys fail under
// NoExtraProperties, go to dynamic properties when obj keeps them, and are
// dropped otherwise.
func (ObjectConverter) applyMap(h converter.Helper, cls meta.TypeID, obj any, m value.Value, seen map[string]bool) error {
	types := h.Types()
	noExtra := h.Options().Validation.Has(converter.NoExtraProperties)
	props := propertyIndex(types.Properties(cls))

	for _, pair := range m.Pairs() {
		if pair.Key.Shape() != value.ShapeText {
			if noExtra {
				return errors.UnknownProperty(types.Name(cls), pair.Key.String())
			}
			continue
		}
		key := pair.Key.Text()
		if key == ClassKey {
			continue
		}

		p, ok := props[key]
		if !ok {
			if noExtra {
				return errors.UnknownProperty(types.Name(cls), key)
			}
			if dyn, ok := obj.(meta.DynamicProperties); ok {
				x, err := h.Deserialize(meta.UnknownType, pair.Value, obj, key)
				if err != nil {
					return err
				}
				dyn.SetDynamicProperty(key, x)
			}
			continue
		}

		x, err := h.Deserialize(p.Type, pair.Value, obj, key)
		if err != nil {
			return err
		}
		if err := p.Set(obj, x); err != nil {
			return assignFailed(h, cls, "property "+strconv.Quote(key), err)
		}
		seen[key] = true
	}
	return nil
}

// checkAllProperties enforces AllProperties: every stored, non-optional
// property must have been present.
func checkAllProperties(h converter.Helper, cls meta.TypeID, seen map[string]bool) error {
	opts := h.Options()
	if !opts.Validation.Has(converter.AllProperties) {
		return nil
	}
	var missing []string
	for _, p := range h.Types().Properties(cls) {
		if p.Optional || !stored(h, p) || (p.Identity && !opts.KeepIdentityProperty) {
			continue
		}
		if !seen[p.Name] {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return errors.MissingProperty(h.Types().Name(cls), missing...)
	}
	return nil
}

func classHead(h converter.Helper, t meta.TypeID, elems []value.Value, what string) error {
	if len(elems) == 0 || elems[0].Shape() != value.ShapeText {
		got := value.ShapeArray
		if len(elems) > 0 {
			got = elems[0].Shape()
		}
		return errors.ShapeMismatch(errors.PhaseDeserialize, h.Types().Name(t), got, what)
	}
	return nil
}

func (o ObjectConverter) deserializeGeneric(h converter.Helper, t meta.TypeID, arr value.Value, parent any) (any, error) {
	elems := arr.Elements()
	if err := classHead(h, t, elems, "array starting with a class name"); err != nil {
		return nil, err
	}
	cls, err := o.resolveClass(h, t, elems[0].Text())
	if err != nil {
		return nil, err
	}

	props := wireProperties(h, cls)
	n := len(elems) - 1
	minimum := lastStored(h, props) + 1
	if n < minimum || n > len(props) {
		want := strconv.Itoa(len(props))
		if minimum != len(props) {
			want = fmt.Sprintf("%d to %d", minimum, len(props))
		}
		return nil, errors.CountMismatch(h.Types().Name(cls), n, want)
	}

	obj, err := h.Types().Instantiate(cls, parent)
	if err != nil {
		return nil, err
	}
	for i, p := range props[:n] {
		x, err := h.Deserialize(p.Type, elems[i+1], obj, p.Name)
		if err != nil {
			return nil, err
		}
		if err := p.Set(obj, x); err != nil {
			return nil, assignFailed(h, cls, "property "+strconv.Quote(p.Name), err)
		}
	}
	return obj, nil
}

func (o ObjectConverter) deserializeConstructed(h converter.Helper, t meta.TypeID, arr value.Value, parent any) (any, error) {
	types := h.Types()
	elems := arr.Elements()
	if len(elems) != 2 {
		return nil, errors.ShapeMismatch(errors.PhaseDeserialize, types.Name(t), arrayLen(len(elems)), "array of two elements")
	}
	if elems[0].Shape() != value.ShapeArray {
		return nil, errors.ShapeMismatch(errors.PhaseDeserialize, types.Name(t), elems[0].Shape(), "constructor argument array")
	}
	head := elems[0].Elements()
	if err := classHead(h, t, head, "constructor array starting with a class name"); err != nil {
		return nil, err
	}
	cls, err := o.resolveClass(h, t, head[0].Text())
	if err != nil {
		return nil, err
	}
	desc, _ := types.Class(cls)
	args := head[1:]
	seen := make(map[string]bool)

	var obj any
	if desc.Construct != nil {
		obj, err = o.construct(h, cls, desc, args, parent, seen)
	} else {
		obj, err = o.positional(h, cls, args, parent, seen)
	}
	if err != nil {
		return nil, err
	}

	switch rest := elems[1]; {
	case rest.IsNull():
	case rest.Shape() == value.ShapeMap && !rest.IsTagged():
		if err := o.applyMap(h, cls, obj, rest, seen); err != nil {
			return nil, err
		}
	default:
		return nil, errors.ShapeMismatch(errors.PhaseDeserialize, types.Name(cls), rest.Shape(), "map or null")
	}

	if err := checkAllProperties(h, cls, seen); err != nil {
		return nil, err
	}
	return obj, nil
}

func (ObjectConverter) construct(h converter.Helper, cls meta.TypeID, desc *meta.ClassDescriptor, args []value.Value, parent any, seen map[string]bool) (any, error) {
	types := h.Types()
	params := desc.ConstructorParams
	if len(args) < len(params) {
		return nil, errors.MissingArgument(desc.Name, params[len(args)])
	}
	if len(args) > len(params) {
		return nil, errors.CountMismatch(desc.Name, len(args), strconv.Itoa(len(params)))
	}

	byName := propertyIndex(types.Properties(cls))
	vals := make([]any, len(params))
	for i, name := range params {
		x, err := h.Deserialize(byName[name].Type, args[i], parent, name)
		if err != nil {
			return nil, err
		}
		vals[i] = x
		seen[name] = true
	}
	return types.Construct(cls, vals, parent)
}

// positional default-constructs the class and assigns the arguments to its
// properties in wire order.
func (ObjectConverter) positional(h converter.Helper, cls meta.TypeID, args []value.Value, parent any, seen map[string]bool) (any, error) {
	props := wireProperties(h, cls)
	if len(args) > len(props) {
		return nil, errors.CountMismatch(h.Types().Name(cls), len(args), "at most "+strconv.Itoa(len(props)))
	}
	obj, err := h.Types().Instantiate(cls, parent)
	if err != nil {
		return nil, err
	}
	for i, a := range args {
		p := props[i]
		x, err := h.Deserialize(p.Type, a, obj, p.Name)
		if err != nil {
			return nil, err
		}
		if err := p.Set(obj, x); err != nil {
			return nil, assignFailed(h, cls, "property "+strconv.Quote(p.Name), err)
		}
		seen[p.Name] = true
	}
	return obj, nil
}

type arrayLen int

func (n arrayLen) String() string {
	return "array of " + strconv.Itoa(int(n)) + " elements"
}
