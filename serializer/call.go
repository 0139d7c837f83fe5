package serializer

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/cbor-serializer/converter"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/value"
)

// call is the state of one top-level conversion. It implements
// converter.Helper and is never shared between goroutines.
type call struct {
	types    *meta.Registry
	typeTags map[meta.TypeID]value.Tag
	tagTypes map[value.Tag]meta.TypeID
	convs    []converter.Converter
	trace    []errors.TraceFrame
	opts     Options
}

var _ converter.Helper = (*call)(nil)

func (c *call) Types() *meta.Registry {
	return c.types
}

func (c *call) Options() Options {
	return c.opts
}

// Serialize is the recursive entry point used by converters.
func (c *call) Serialize(t meta.TypeID, v any, hint string) (value.Value, error) {
	defer c.enter(hint, t)()
	return c.serialize(t, v)
}

// Deserialize is the recursive entry point used by converters.
func (c *call) Deserialize(t meta.TypeID, v value.Value, parent any, hint string) (any, error) {
	defer c.enter(hint, t)()
	return c.deserialize(t, v, parent)
}

// enter pushes a trace frame and returns the matching pop.
func (c *call) enter(hint string, t meta.TypeID) func() {
	c.trace = append(c.trace, errors.TraceFrame{
		Property: hint,
		TypeName: c.types.Name(t),
		TypeID:   uint32(t),
	})
	n := len(c.trace) - 1
	return func() {
		c.trace = c.trace[:n]
	}
}

// fail annotates err with the current trace. Errors that already carry a
// trace pass through unchanged.
func (c *call) fail(phase errors.Phase, t meta.TypeID, err error) error {
	e, ok := err.(*errors.Error)
	if !ok {
		e = errors.New(phase, errors.KindUnconvertible).
			Type(c.types.Name(t)).
			Cause(err).
			Build()
	}
	e.AttachTrace(slices.Clone(c.trace))
	return e
}

func (c *call) serialize(t meta.TypeID, v any) (value.Value, error) {
	if t == meta.UnknownType {
		id, ok := c.types.TypeOfValue(v)
		if !ok {
			return value.Value{}, c.fail(errors.PhaseSerialize, t,
				errors.NoConverter(errors.PhaseSerialize, fmt.Sprintf("%T", v)))
		}
		t = id
	}

	for _, conv := range c.convs {
		if !conv.CanConvert(c, t) {
			continue
		}
		if ce := Logger().Check(zap.DebugLevel, "serialize"); ce != nil {
			ce.Write(
				zap.String("type", c.types.Name(t)),
				zap.String("converter", conv.Name()),
				zap.Int("depth", len(c.trace)))
		}
		out, err := conv.Serialize(c, t, v)
		if err != nil {
			return value.Value{}, c.fail(errors.PhaseSerialize, t, err)
		}
		if tag, ok := c.typeTags[t]; ok {
			out = value.Tagged(tag, out)
		}
		return out, nil
	}
	return value.Value{}, c.fail(errors.PhaseSerialize, t,
		errors.NoConverter(errors.PhaseSerialize, c.types.Name(t)))
}

func (c *call) deserialize(t meta.TypeID, v value.Value, parent any) (any, error) {
	if t != meta.UnknownType {
		if c.opts.AllowDefaultNull && v.IsNull() {
			return c.types.Zero(t), nil
		}
		if tag, ok := c.typeTags[t]; ok && v.IsTagged() && v.Tag() == tag {
			v = v.Content()
		}
	} else if v.IsTagged() {
		if id, ok := c.tagTypes[v.Tag()]; ok {
			t = id
			v = v.Content()
		}
	}

	tag, content := v.Untag()

	var (
		guess     converter.Converter
		guessType meta.TypeID
		wrongTag  bool
	)
	for _, conv := range c.convs {
		capability, id := converter.CanDeserialize(conv, c, t, tag, content)
		switch capability {
		case converter.Positive:
			c.logSelected(conv, t, tag, content, capability)
			return c.run(conv, t, v, parent)
		case converter.Guessed:
			if guess == nil {
				guess, guessType = conv, id
			}
		case converter.WrongTag:
			wrongTag = true
		}
	}

	if guess != nil {
		c.logSelected(guess, guessType, tag, content, converter.Guessed)
		return c.run(guess, guessType, v, parent)
	}
	if wrongTag {
		return nil, c.fail(errors.PhaseDeserialize, t, errors.InvalidTag(c.types.Name(t), tag))
	}
	return nil, c.fail(errors.PhaseDeserialize, t, errors.NoConverter(errors.PhaseDeserialize, c.types.Name(t)))
}

func (c *call) run(conv converter.Converter, t meta.TypeID, v value.Value, parent any) (any, error) {
	out, err := conv.Deserialize(c, t, v, parent)
	if err != nil {
		return nil, c.fail(errors.PhaseDeserialize, t, err)
	}
	return out, nil
}

func (c *call) logSelected(conv converter.Converter, t meta.TypeID, tag value.Tag, v value.Value, capability converter.Capability) {
	if ce := Logger().Check(zap.DebugLevel, "deserialize"); ce != nil {
		ce.Write(
			zap.String("type", c.types.Name(t)),
			zap.Stringer("tag", tag),
			zap.Stringer("shape", v.Shape()),
			zap.String("converter", conv.Name()),
			zap.Stringer("capability", capability),
			zap.Int("depth", len(c.trace)))
	}
}
