package codec

import "encoding/json"

// JSON serializes values with encoding/json. The zero value is ready to use.
//
// Note for row snapshots: JSON round-trips SQLite integers through float64
// and []byte through base64 strings. Use Msgpack or CBOR when the decoded
// snapshot must preserve driver types exactly.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
