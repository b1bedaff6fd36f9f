// Package codec provides pluggable value serialization for pcache engines.
// Encoded bytes are stored verbatim as the cache entry, no header or framing,
// so any process with the same codec can decode an entry another process
// wrote.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
