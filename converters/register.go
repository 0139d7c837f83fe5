package converters

import "github.com/wippyai/cbor-serializer/converter"

// Register installs the built-in converters at their default priorities.
func Register(r *converter.Registry) {
	r.Add(EnumConverter{}, converter.PriorityEnum)
	r.Add(OptionalConverter{}, converter.PriorityOptional)
	r.Add(PointerConverter{}, converter.PriorityPointer)
	r.Add(VariantConverter{}, converter.PriorityVariant)
	r.Add(TupleConverter{}, converter.PriorityTuple)
	r.Add(ListConverter{}, converter.PriorityList)
	r.Add(MapConverter{}, converter.PriorityMap)
	r.Add(NilConverter{}, converter.PriorityPrimitive)
	r.Add(BoolConverter{}, converter.PriorityPrimitive)
	r.Add(IntConverter{}, converter.PriorityPrimitive)
	r.Add(FloatConverter{}, converter.PriorityPrimitive)
	r.Add(StringConverter{}, converter.PriorityPrimitive)
	r.Add(BytesConverter{}, converter.PriorityPrimitive)
	r.Add(TimeConverter{}, converter.PriorityPrimitive+10)
	r.Add(URLConverter{}, converter.PriorityPrimitive+10)
	r.Add(UUIDConverter{}, converter.PriorityPrimitive+10)
	r.Add(ObjectConverter{}, converter.PriorityObject)
	r.Add(AnyConverter{}, converter.PriorityFallback)
}

// NewRegistry returns a registry holding the built-in converters.
func NewRegistry() *converter.Registry {
	r := converter.NewRegistry()
	Register(r)
	return r
}
