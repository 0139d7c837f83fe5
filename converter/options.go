package converter

import (
	"fmt"
	"strings"
)

// Polymorphism selects how object converters record dynamic classes.
type Polymorphism uint8

const (
	PolymorphismDisabled Polymorphism = iota
	PolymorphismEnabled
	PolymorphismForced
)

var polymorphismNames = [...]string{
	PolymorphismDisabled: "disabled",
	PolymorphismEnabled:  "enabled",
	PolymorphismForced:   "forced",
}

func (p Polymorphism) String() string {
	if int(p) < len(polymorphismNames) {
		return polymorphismNames[p]
	}
	return "unknown"
}

func (p Polymorphism) MarshalText() ([]byte, error) {
	if int(p) >= len(polymorphismNames) {
		return nil, fmt.Errorf("invalid polymorphism %d", p)
	}
	return []byte(p.String()), nil
}

func (p *Polymorphism) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range polymorphismNames {
		if name == s {
			*p = Polymorphism(i)
			return nil
		}
	}
	return fmt.Errorf("unknown polymorphism %q", text)
}

// ValidationFlags select extra checks applied while deserializing.
type ValidationFlags uint8

const (
	NoExtraProperties ValidationFlags = 1 << iota
	AllProperties
	StrictBasicTypes

	ValidationNone         ValidationFlags = 0
	FullPropertyValidation                 = NoExtraProperties | AllProperties
	FullValidation                         = FullPropertyValidation | StrictBasicTypes
)

var validationNames = []struct {
	flag ValidationFlags
	name string
}{
	{NoExtraProperties, "extra"},
	{AllProperties, "all"},
	{StrictBasicTypes, "strict"},
}

// Has reports whether all bits of f are set.
func (v ValidationFlags) Has(f ValidationFlags) bool {
	return v&f == f
}

func (v ValidationFlags) String() string {
	if v == ValidationNone {
		return "none"
	}
	var parts []string
	for _, n := range validationNames {
		if v.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

func (v ValidationFlags) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses names joined by "|" or ",". "full" selects every
// property check and "strict" the basic type check.
func (v *ValidationFlags) UnmarshalText(text []byte) error {
	var out ValidationFlags
	fields := strings.FieldsFunc(string(text), func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "none":
		case "extra", "noextraproperties":
			out |= NoExtraProperties
		case "all", "allproperties":
			out |= AllProperties
		case "strict", "strictbasictypes":
			out |= StrictBasicTypes
		case "full", "fullpropertyvalidation":
			out |= FullPropertyValidation
		case "everything", "fullvalidation":
			out |= FullValidation
		default:
			return fmt.Errorf("unknown validation flag %q", f)
		}
	}
	*v = out
	return nil
}

// Options is the configuration read at the start of every top-level call.
type Options struct {
	Polymorphism         Polymorphism    `mapstructure:"polymorphism" yaml:"polymorphism" toml:"polymorphism" json:"polymorphism"`
	Validation           ValidationFlags `mapstructure:"validation" yaml:"validation" toml:"validation" json:"validation"`
	KeepIdentityProperty bool            `mapstructure:"keep_identity" yaml:"keep_identity" toml:"keep_identity" json:"keep_identity"`
	IgnoreStoredFlag     bool            `mapstructure:"ignore_stored" yaml:"ignore_stored" toml:"ignore_stored" json:"ignore_stored"`
	AllowDefaultNull     bool            `mapstructure:"allow_default_null" yaml:"allow_default_null" toml:"allow_default_null" json:"allow_default_null"`
	EnumAsString         bool            `mapstructure:"enum_as_string" yaml:"enum_as_string" toml:"enum_as_string" json:"enum_as_string"`
	GenericObjects       bool            `mapstructure:"generic_objects" yaml:"generic_objects" toml:"generic_objects" json:"generic_objects"`
}

// DefaultOptions enables polymorphism and no validation flags.
func DefaultOptions() Options {
	return Options{Polymorphism: PolymorphismEnabled}
}

// Strict reports whether scalars must decode from their native shape.
func (o Options) Strict() bool {
	return o.Validation.Has(StrictBasicTypes)
}
