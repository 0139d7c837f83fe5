package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/value"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		IndefLength: cbor.IndefLengthAllowed,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

const (
	majorUint   = 0
	majorNegInt = 1
	majorBytes  = 2
	majorText   = 3
	majorArray  = 4
	majorMap    = 5
	majorTag    = 6
	majorSimple = 7

	breakByte = 0xff
)

// Marshal encodes v as one CBOR data item.
func Marshal(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v value.Value) error {
	if v.IsTagged() {
		inner, err := Marshal(v.Content())
		if err != nil {
			return err
		}
		return marshalInto(buf, cbor.RawTag{Number: uint64(v.Tag()), Content: inner})
	}

	switch v.Shape() {
	case value.ShapeUndefined:
		buf.WriteByte(0xf7)
		return nil
	case value.ShapeNull:
		return marshalInto(buf, nil)
	case value.ShapeBool:
		return marshalInto(buf, v.Bool())
	case value.ShapeInteger:
		return marshalInto(buf, v.Int())
	case value.ShapeDouble:
		return marshalInto(buf, v.Double())
	case value.ShapeText:
		return marshalInto(buf, v.Text())
	case value.ShapeBytes:
		b := v.ByteString()
		if b == nil {
			b = []byte{}
		}
		return marshalInto(buf, b)
	case value.ShapeArray:
		elems := v.Elements()
		raw := make([]cbor.RawMessage, len(elems))
		for i, e := range elems {
			b, err := Marshal(e)
			if err != nil {
				return err
			}
			raw[i] = b
		}
		return marshalInto(buf, raw)
	case value.ShapeMap:
		pairs := v.Pairs()
		writeHead(buf, majorMap, uint64(len(pairs)))
		for _, p := range pairs {
			if err := encode(buf, p.Key); err != nil {
				return err
			}
			if err := encode(buf, p.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.InvalidData(errors.PhaseCodec, "unknown value shape "+v.Shape().String())
}

func marshalInto(buf *bytes.Buffer, v any) error {
	b, err := encMode.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "encode CBOR item")
	}
	buf.Write(b)
	return nil
}

// writeHead writes a data item head in its shortest form.
func writeHead(buf *bytes.Buffer, major byte, n uint64) {
	m := major << 5
	switch {
	case n < 24:
		buf.WriteByte(m | byte(n))
	case n <= math.MaxUint8:
		buf.WriteByte(m | 24)
		buf.WriteByte(byte(n))
	case n <= math.MaxUint16:
		buf.WriteByte(m | 25)
		buf.Write(binary.BigEndian.AppendUint16(nil, uint16(n)))
	case n <= math.MaxUint32:
		buf.WriteByte(m | 26)
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(n)))
	default:
		buf.WriteByte(m | 27)
		buf.Write(binary.BigEndian.AppendUint64(nil, n))
	}
}

// readHead parses a data item head. indefinite is set for additional
// information 31.
func readHead(data []byte) (major byte, n uint64, size int, indefinite bool, err error) {
	if len(data) == 0 {
		return 0, 0, 0, false, errors.InvalidData(errors.PhaseCodec, "unexpected end of data")
	}
	major = data[0] >> 5
	ai := data[0] & 0x1f
	switch {
	case ai < 24:
		return major, uint64(ai), 1, false, nil
	case ai == 31:
		return major, 0, 1, true, nil
	case ai > 27:
		return 0, 0, 0, false, errors.InvalidData(errors.PhaseCodec, "reserved additional information")
	}
	width := 1 << (ai - 24)
	if len(data) < 1+width {
		return 0, 0, 0, false, errors.InvalidData(errors.PhaseCodec, "truncated item head")
	}
	b := data[1 : 1+width]
	switch width {
	case 1:
		n = uint64(b[0])
	case 2:
		n = uint64(binary.BigEndian.Uint16(b))
	case 4:
		n = uint64(binary.BigEndian.Uint32(b))
	default:
		n = binary.BigEndian.Uint64(b)
	}
	return major, n, 1 + width, false, nil
}

// Unmarshal decodes exactly one CBOR data item.
func Unmarshal(data []byte) (value.Value, error) {
	v, rest, err := UnmarshalFirst(data)
	if err != nil {
		return value.Value{}, err
	}
	if len(rest) > 0 {
		return value.Value{}, errors.New(errors.PhaseCodec, errors.KindTrailingData).
			Detail("%d bytes after the first data item", len(rest)).
			Build()
	}
	return v, nil
}

// UnmarshalFirst decodes the first data item of a CBOR sequence and
// returns the remaining bytes.
func UnmarshalFirst(data []byte) (value.Value, []byte, error) {
	var raw cbor.RawMessage
	rest, err := decMode.UnmarshalFirst(data, &raw)
	if err != nil {
		return value.Value{}, nil, errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "malformed CBOR")
	}
	v, err := decode(raw)
	if err != nil {
		return value.Value{}, nil, err
	}
	return v, rest, nil
}

// decode converts one well-formed data item.
func decode(raw []byte) (value.Value, error) {
	major, n, size, indefinite, err := readHead(raw)
	if err != nil {
		return value.Value{}, err
	}

	switch major {
	case majorUint:
		if n > math.MaxInt64 {
			return value.Value{}, errors.Overflow(errors.PhaseCodec, "int64", n)
		}
		return value.Int(int64(n)), nil
	case majorNegInt:
		if n > math.MaxInt64 {
			return value.Value{}, errors.Overflow(errors.PhaseCodec, "int64", "-1-"+strconv.FormatUint(n, 10))
		}
		return value.Int(-1 - int64(n)), nil
	case majorBytes:
		var b []byte
		if err := unmarshal(raw, &b); err != nil {
			return value.Value{}, err
		}
		return value.Bytes(b), nil
	case majorText:
		var s string
		if err := unmarshal(raw, &s); err != nil {
			return value.Value{}, err
		}
		return value.Text(s), nil
	case majorArray:
		var items []cbor.RawMessage
		if err := unmarshal(raw, &items); err != nil {
			return value.Value{}, err
		}
		elems := make([]value.Value, len(items))
		for i, item := range items {
			if elems[i], err = decode(item); err != nil {
				return value.Value{}, err
			}
		}
		return value.Array(elems...), nil
	case majorMap:
		return decodeMap(raw[size:], n, indefinite)
	case majorTag:
		var tag cbor.RawTag
		if err := unmarshal(raw, &tag); err != nil {
			return value.Value{}, err
		}
		if tag.Number > math.MaxInt64 {
			return value.Value{}, errors.Overflow(errors.PhaseCodec, "tag", tag.Number)
		}
		inner, err := decode(tag.Content)
		if err != nil {
			return value.Value{}, err
		}
		return value.Tagged(value.Tag(tag.Number), inner), nil
	case majorSimple:
		return decodeSimple(raw)
	}
	return value.Value{}, errors.InvalidData(errors.PhaseCodec, "unknown major type")
}

func decodeMap(body []byte, n uint64, indefinite bool) (value.Value, error) {
	var pairs []value.Pair
	if !indefinite {
		pairs = make([]value.Pair, 0, min(n, uint64(len(body))))
	}
	next := func() (value.Value, error) {
		var raw cbor.RawMessage
		rest, err := decMode.UnmarshalFirst(body, &raw)
		if err != nil {
			return value.Value{}, errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "malformed map entry")
		}
		body = rest
		return decode(raw)
	}

	for i := uint64(0); indefinite || i < n; i++ {
		if indefinite {
			if len(body) == 0 {
				return value.Value{}, errors.InvalidData(errors.PhaseCodec, "unterminated indefinite map")
			}
			if body[0] == breakByte {
				break
			}
		}
		k, err := next()
		if err != nil {
			return value.Value{}, err
		}
		v, err := next()
		if err != nil {
			return value.Value{}, err
		}
		pairs = append(pairs, value.Pair{Key: k, Value: v})
	}
	return value.Map(pairs...), nil
}

func decodeSimple(raw []byte) (value.Value, error) {
	switch raw[0] {
	case 0xf4:
		return value.Bool(false), nil
	case 0xf5:
		return value.Bool(true), nil
	case 0xf6:
		return value.Null(), nil
	case 0xf7:
		return value.Value{}, nil
	case 0xf9, 0xfa, 0xfb:
		var f float64
		if err := unmarshal(raw, &f); err != nil {
			return value.Value{}, err
		}
		return value.Double(f), nil
	}
	return value.Value{}, errors.InvalidData(errors.PhaseCodec, "unsupported simple value")
}

func unmarshal(raw []byte, v any) error {
	if err := decMode.Unmarshal(raw, v); err != nil {
		return errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "decode CBOR item")
	}
	return nil
}

// Encoder writes value trees to a stream as a CBOR sequence.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one data item.
func (e *Encoder) Encode(v value.Value) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(b); err != nil {
		return errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "write CBOR item")
	}
	return nil
}

// Decoder reads value trees from a CBOR sequence.
type Decoder struct {
	dec *cbor.Decoder
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: decMode.NewDecoder(r)}
}

// Decode reads the next data item. It returns io.EOF at the end of the
// stream.
func (d *Decoder) Decode() (value.Value, error) {
	var raw cbor.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return value.Value{}, io.EOF
		}
		return value.Value{}, errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "malformed CBOR")
	}
	return decode(raw)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// DiagnoseFirst returns the diagnostic notation for the first data item
// in data, along with the remaining unconsumed bytes.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return cbor.DiagnoseFirst(data)
}
