package serializer

import (
	"io"

	"github.com/wippyai/cbor-serializer/codec"
	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/meta"
)

// Marshal serializes v and encodes the result as CBOR.
func (s *Serializer) Marshal(t meta.TypeID, v any) ([]byte, error) {
	tree, err := s.Serialize(t, v)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(tree)
}

// SerializeTo serializes v and writes it to w as one CBOR data item.
func (s *Serializer) SerializeTo(w io.Writer, t meta.TypeID, v any) error {
	tree, err := s.Serialize(t, v)
	if err != nil {
		return err
	}
	return codec.NewEncoder(w).Encode(tree)
}

// Unmarshal decodes one CBOR data item and deserializes it as t.
func (s *Serializer) Unmarshal(data []byte, t meta.TypeID, parent any) (any, error) {
	tree, err := codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return s.Deserialize(tree, t, parent)
}

// DeserializeFrom reads r to the end, decodes it as one CBOR data item
// and deserializes it as t.
func (s *Serializer) DeserializeFrom(r io.Reader, t meta.TypeID, parent any) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCodec, errors.KindInvalidInput, err, "read input")
	}
	return s.Unmarshal(data, t, parent)
}
