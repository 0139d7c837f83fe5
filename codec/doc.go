// Package codec frames value trees as CBOR bytes (RFC 8949) and back.
//
// Scalars, arrays and tags are encoded with fxamacker/cbor in Core
// Deterministic mode. Maps are written entry by entry so the value model's
// insertion order survives the round trip; deterministic encoding would
// otherwise sort the keys.
//
// Decoding dispatches on the major type of each data item. Integers outside
// the int64 range and simple values other than false, true, null and
// undefined are rejected.
package codec
