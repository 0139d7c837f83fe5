package meta

// Kind is the category of a registered type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNil
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindTime
	KindURL
	KindUUID
	KindAny
	KindList
	KindSet
	KindMap
	KindPair
	KindTuple
	KindOptional
	KindVariant
	KindPointer
	KindWeak
	KindEnum
	KindObject
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindNil:      "nil",
	KindBool:     "bool",
	KindInt:      "int",
	KindUint:     "uint",
	KindFloat:    "float",
	KindString:   "string",
	KindBytes:    "bytes",
	KindTime:     "time",
	KindURL:      "url",
	KindUUID:     "uuid",
	KindAny:      "any",
	KindList:     "list",
	KindSet:      "set",
	KindMap:      "map",
	KindPair:     "pair",
	KindTuple:    "tuple",
	KindOptional: "optional",
	KindVariant:  "variant",
	KindPointer:  "pointer",
	KindWeak:     "weak",
	KindEnum:     "enum",
	KindObject:   "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether values of the kind have no nested values.
func (k Kind) IsScalar() bool {
	return k >= KindNil && k <= KindUUID
}

// HasElem reports whether the kind wraps a single element type.
func (k Kind) HasElem() bool {
	switch k {
	case KindList, KindSet, KindMap, KindOptional, KindPointer, KindWeak:
		return true
	}
	return false
}
