package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSerialize   Phase = "serialize"   // Go value to value tree
	PhaseDeserialize Phase = "deserialize" // value tree to Go value
	PhaseRegister    Phase = "register"    // type and converter registration
	PhaseConfig      Phase = "config"      // option loading
	PhaseCodec       Phase = "codec"       // CBOR framing
)

// Kind categorizes the error
type Kind string

const (
	KindNoConverter        Kind = "no_converter"
	KindInvalidTag         Kind = "invalid_tag"
	KindShapeMismatch      Kind = "shape_mismatch"
	KindTypeMismatch       Kind = "type_mismatch"
	KindUnconvertible      Kind = "unconvertible"
	KindUnresolvableClass  Kind = "unresolvable_class"
	KindCountMismatch      Kind = "count_mismatch"
	KindMissingArgument    Kind = "missing_argument"
	KindUnknownProperty    Kind = "unknown_property"
	KindMissingProperty    Kind = "missing_property"
	KindPolymorphism       Kind = "polymorphism"
	KindInstantiation      Kind = "instantiation"
	KindOverflow           Kind = "overflow"
	KindInvalidData        Kind = "invalid_data"
	KindRegistration       Kind = "registration"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidEnum        Kind = "invalid_enum"
	KindUnsupported        Kind = "unsupported"
	KindInvalidConfig      Kind = "invalid_config"
	KindTrailingData       Kind = "trailing_data"
	KindPropertyAssignment Kind = "property_assignment"
)

// Sentinels matching every error of one phase.
var (
	ErrSerialization   = &Error{Phase: PhaseSerialize}
	ErrDeserialization = &Error{Phase: PhaseDeserialize}
	ErrRegistration    = &Error{Phase: PhaseRegister}
	ErrConfig          = &Error{Phase: PhaseConfig}
	ErrCodec           = &Error{Phase: PhaseCodec}
)

// TraceFrame is one level of nesting below the top-level call.
type TraceFrame struct {
	Property string
	TypeName string
	TypeID   uint32
}

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	TypeName string
	Detail   string
	Trace    []TraceFrame
	traced   bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if path := e.Path(); path != "" {
		b.WriteString(" at ")
		b.WriteString(path)
	}

	if e.TypeName != "" {
		b.WriteString(" (")
		b.WriteString(e.TypeName)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Path joins the property hints of the trace with dots.
func (e *Error) Path() string {
	if len(e.Trace) == 0 {
		return ""
	}
	parts := make([]string, len(e.Trace))
	for i, f := range e.Trace {
		parts[i] = f.Property
	}
	return strings.Join(parts, ".")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a kind
// matches every error of its phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if e.Phase != t.Phase {
			return false
		}
		return t.Kind == "" || e.Kind == t.Kind
	}
	return false
}

// Traced reports whether a trace has already been attached.
func (e *Error) Traced() bool {
	return e.traced
}

// AttachTrace records the trace unless one was attached before. Only the
// innermost failure point owns the trace.
func (e *Error) AttachTrace(frames []TraceFrame) bool {
	if e.traced {
		return false
	}
	e.Trace = frames
	e.traced = true
	return true
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// IsSerialization reports whether err is a serialization failure.
func IsSerialization(err error) bool {
	return stderrors.Is(err, ErrSerialization)
}

// IsDeserialization reports whether err is a deserialization failure.
func IsDeserialization(err error) bool {
	return stderrors.Is(err, ErrDeserialization)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the engine type name
func (b *Builder) Type(name string) *Builder {
	b.err.TypeName = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NoConverter creates an error for a type no converter accepts
func NoConverter(phase Phase, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNoConverter,
		TypeName: typeName,
		Detail:   "could not find a converter",
	}
}

// InvalidTag creates an error for a tag no capable converter allows
func InvalidTag(typeName string, tag fmt.Stringer) *Error {
	return &Error{
		Phase:    PhaseDeserialize,
		Kind:     KindInvalidTag,
		TypeName: typeName,
		Detail:   fmt.Sprintf("invalid CBOR tag %s for type", tag),
		Value:    tag,
	}
}

// ShapeMismatch creates a wrong-shape error
func ShapeMismatch(phase Phase, typeName string, got fmt.Stringer, want string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindShapeMismatch,
		TypeName: typeName,
		Detail:   fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// TypeMismatch creates an error for a Go value of the wrong dynamic type
func TypeMismatch(phase Phase, typeName string, value any) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		TypeName: typeName,
		Detail:   fmt.Sprintf("unexpected Go type %T", value),
		Value:    value,
	}
}

// Unconvertible creates an error for a value the strictness rules reject
func Unconvertible(phase Phase, typeName string, detail string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnconvertible,
		TypeName: typeName,
		Detail:   detail,
	}
}

// UnresolvableClass creates an error for a class name outside the declared hierarchy
func UnresolvableClass(phase Phase, className, baseName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnresolvableClass,
		TypeName: baseName,
		Detail:   fmt.Sprintf("class %q is not %s or a registered subclass of it", className, baseName),
		Value:    className,
	}
}

// CountMismatch creates an element count error
func CountMismatch(typeName string, got int, want string) *Error {
	return &Error{
		Phase:    PhaseDeserialize,
		Kind:     KindCountMismatch,
		TypeName: typeName,
		Detail:   fmt.Sprintf("got %d elements, want %s", got, want),
		Value:    got,
	}
}

// MissingArgument creates an error for a missing constructor argument
func MissingArgument(typeName, name string) *Error {
	return &Error{
		Phase:    PhaseDeserialize,
		Kind:     KindMissingArgument,
		TypeName: typeName,
		Detail:   fmt.Sprintf("missing constructor argument %q", name),
	}
}

// UnknownProperty creates an extra property error
func UnknownProperty(typeName, name string) *Error {
	return &Error{
		Phase:    PhaseDeserialize,
		Kind:     KindUnknownProperty,
		TypeName: typeName,
		Detail:   fmt.Sprintf("unknown property %q", name),
	}
}

// MissingProperty creates a missing property error
func MissingProperty(typeName string, names ...string) *Error {
	return &Error{
		Phase:    PhaseDeserialize,
		Kind:     KindMissingProperty,
		TypeName: typeName,
		Detail:   fmt.Sprintf("missing properties %s", strings.Join(names, ", ")),
	}
}

// Polymorphism creates a polymorphism policy violation
func Polymorphism(phase Phase, typeName, detail string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindPolymorphism,
		TypeName: typeName,
		Detail:   detail,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, typeName string, value any) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		TypeName: typeName,
		Detail:   fmt.Sprintf("value %v overflows %s", value, typeName),
		Value:    value,
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, typeName string, value any) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidEnum,
		TypeName: typeName,
		Detail:   fmt.Sprintf("invalid enum value %v", value),
		Value:    value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// NotFound creates a lookup failure
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: what,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
