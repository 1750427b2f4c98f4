// Package codec defines how query result snapshots are (de)serialized for
// the byte store backing QueryCache. Msgpack is the default; JSON trades
// type fidelity for readability, CBOR offers deterministic encoding,
// protobuf serves callers with generated messages, and Limit guards against
// oversized payloads from shared stores.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
