package value

// Shape is the structural kind of a value, independent of any tag.
type Shape uint8

const (
	ShapeUndefined Shape = iota
	ShapeNull
	ShapeBool
	ShapeInteger
	ShapeDouble
	ShapeText
	ShapeBytes
	ShapeArray
	ShapeMap
)

var shapeNames = [...]string{
	ShapeUndefined: "undefined",
	ShapeNull:      "null",
	ShapeBool:      "bool",
	ShapeInteger:   "integer",
	ShapeDouble:    "double",
	ShapeText:      "text",
	ShapeBytes:     "bytes",
	ShapeArray:     "array",
	ShapeMap:       "map",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// IsScalar reports whether the shape carries no nested values.
func (s Shape) IsScalar() bool {
	return s >= ShapeNull && s <= ShapeBytes
}

// Tag marks a semantic subtype of a shape.
type Tag int64

const (
	NoTag Tag = -1

	DateTimeString    Tag = 0
	EpochDateTime     Tag = 1
	GenericObject     Tag = 27
	URL               Tag = 32
	UUID              Tag = 37
	Homogeneous       Tag = 41
	Set               Tag = 258
	ExplicitMap       Tag = 259
	ConstructedObject Tag = 0x10E7_0000
	Enum              Tag = 0x10E7_0001
	Flags             Tag = 0x10E7_0002
)

var tagNames = map[Tag]string{
	NoTag:             "none",
	DateTimeString:    "datetime",
	EpochDateTime:     "epoch",
	GenericObject:     "generic-object",
	URL:               "url",
	UUID:              "uuid",
	Homogeneous:       "homogeneous",
	Set:               "set",
	ExplicitMap:       "explicit-map",
	ConstructedObject: "constructed-object",
	Enum:              "enum",
	Flags:             "flags",
}

// Name returns a readable name for engine-known tags and "" otherwise.
func (t Tag) Name() string {
	return tagNames[t]
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "tag(" + itoa(int64(t)) + ")"
}
