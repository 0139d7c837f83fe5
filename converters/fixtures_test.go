package converters_test

import (
	"testing"

	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/serializer"
)

type TestObject struct {
	Key   int     `cbor:"key"`
	Value float64 `cbor:"value"`
}

type DerivedObject struct {
	TestObject
	Extra bool `cbor:"extra"`
}

type NonPolyObject struct {
	TestObject
	Extra2 int `cbor:"extra2"`
}

type DynamicPolyObject struct {
	TestObject
	Extra3 string `cbor:"extra3"`
	Poly   bool   `cbor:"-"`
}

func (o *DynamicPolyObject) IsPolymorphic() bool { return o.Poly }

type HiddenObject struct {
	Key    int     `cbor:"key"`
	Value  float64 `cbor:"value"`
	Hidden int     `cbor:"zhidden,unstored"`
}

type NamedObject struct {
	Name  string `cbor:"objectName,identity"`
	Count int    `cbor:"count"`
}

type Point struct {
	X     int    `cbor:"x"`
	Y     int    `cbor:"y"`
	Label string `cbor:"label,optional"`
}

type Bag struct {
	meta.Dynamic
	ID int `cbor:"id"`
}

type Holder struct {
	meta.Children
}

type Outer struct {
	Items []*TestObject `cbor:"items"`
	Title string        `cbor:"title,optional"`
}

type Color int

type Perm uint8

type Scalar interface{}

type fixture struct {
	t     *testing.T
	types *meta.Registry

	testObject meta.TypeID
	derived    meta.TypeID
	nonPoly    meta.TypeID
	dynPoly    meta.TypeID
	hidden     meta.TypeID
	named      meta.TypeID
	point      meta.TypeID
	bag        meta.TypeID
	outer      meta.TypeID
	objList    meta.TypeID
	color      meta.TypeID
	perm       meta.TypeID
	scalar     meta.TypeID
}

func (f *fixture) must(id meta.TypeID, err error) meta.TypeID {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("register: %v", err)
	}
	return id
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := meta.NewRegistry()
	f := &fixture{t: t, types: r}

	f.testObject = f.must(meta.RegisterStruct[TestObject](r, "TestObject"))
	f.derived = f.must(meta.RegisterStruct[DerivedObject](r, "DerivedObject", meta.Polymorphic()))
	f.nonPoly = f.must(meta.RegisterStruct[NonPolyObject](r, "NonPolyObject"))
	f.dynPoly = f.must(meta.RegisterStruct[DynamicPolyObject](r, "DynamicPolyObject"))
	f.hidden = f.must(meta.RegisterStruct[HiddenObject](r, "HiddenObject"))
	f.named = f.must(meta.RegisterStruct[NamedObject](r, "NamedObject"))
	f.point = f.must(meta.RegisterStruct[Point](r, "Point",
		meta.Constructed(func(args []any, _ any) (any, error) {
			return &Point{X: args[0].(int), Y: args[1].(int)}, nil
		}, true, "x", "y")))
	f.bag = f.must(meta.RegisterStruct[Bag](r, "Bag"))
	f.objList = f.must(meta.RegisterList[*TestObject](r, f.testObject))
	f.outer = f.must(meta.RegisterStruct[Outer](r, "Outer"))
	f.color = f.must(meta.RegisterEnum[Color](r, "Color",
		meta.EnumValue{Name: "Red", Value: 0},
		meta.EnumValue{Name: "Green", Value: 1},
		meta.EnumValue{Name: "Blue", Value: 2}))
	f.perm = f.must(meta.RegisterFlags[Perm](r, "Perm",
		meta.EnumValue{Name: "Read", Value: 1},
		meta.EnumValue{Name: "Write", Value: 2},
		meta.EnumValue{Name: "Exec", Value: 4}))
	f.scalar = f.must(meta.RegisterVariant[Scalar](r, meta.Int, meta.String))
	return f
}

func (f *fixture) serializer(opts serializer.Options) *serializer.Serializer {
	return serializer.New(f.types, opts)
}

func withPolymorphism(p serializer.Polymorphism) serializer.Options {
	opts := serializer.DefaultOptions()
	opts.Polymorphism = p
	return opts
}
