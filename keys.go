package pcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const (
	// DefaultPrefix namespaces engine entries when Options.Prefix is empty.
	DefaultPrefix = "pc"

	keySep = "::"
)

// argEnc encodes canonicalized argument tuples in RFC 8949 Core Deterministic
// mode: the same call produces the same bytes across processes and restarts,
// and self-describing major types keep 1, "1" and 1.0 from ever colliding.
// Map keys are sorted by the encoder; struct field order is preserved by
// canonValue below, which turns structs into arrays before encoding.
var argEnc cbor.EncMode

func init() {
	eo := cbor.CoreDetEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	em, err := eo.EncMode()
	if err != nil {
		panic(err)
	}
	argEnc = em
}

// Key derives the storage key for one call:
//
//	<prefix>::<identity>::<sha256 hex of the encoded argument tuple>
//
// identity names the function and must stay stable for as long as its cached
// results should stay valid. Argument order and struct field declaration
// order are significant. Arguments the encoder cannot represent (channels,
// funcs, live handles) fail with ErrSerialize before any storage is touched;
// such signatures are a configuration error, not a runtime one.
func Key(prefix, identity string, args ...any) (string, error) {
	canon := make([]any, len(args))
	for i, a := range args {
		canon[i] = canonValue(reflect.ValueOf(a))
	}
	payload, err := argEnc.Marshal(canon)
	if err != nil {
		return "", fmt.Errorf("%w: args of %q: %v", ErrSerialize, identity, err)
	}
	sum := sha256.Sum256(payload)
	return prefix + keySep + identity + keySep + hex.EncodeToString(sum[:]), nil
}

var (
	timeType          = reflect.TypeOf(time.Time{})
	cborMarshalerType = reflect.TypeOf((*cbor.Marshaler)(nil)).Elem()
)

// canonValue rewrites a value so the sorting encoder cannot reorder struct
// fields: a struct becomes an array of alternating field name and
// canonicalized field value, in declaration order. Maps pass through (their
// iteration order is random anyway; the encoder sorts the keys), containers
// are walked so nested structs get the same treatment, and everything else
// is left for the encoder to accept or reject.
func canonValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	t := rv.Type()
	// types with their own CBOR representation stay opaque
	if t == timeType || t.Implements(cborMarshalerType) {
		return rv.Interface()
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return canonValue(rv.Elem())
	case reflect.Struct:
		fields := make([]any, 0, 2*t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue // unexported
			}
			fields = append(fields, f.Name, canonValue(rv.Field(i)))
		}
		return fields
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		return canonSeq(rv)
	case reflect.Array:
		return canonSeq(rv)
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		// keys stay as-is: they were map keys, so they are comparable,
		// which a canonicalized ([]any) form would not be
		out := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().Interface()] = canonValue(iter.Value())
		}
		return out
	default:
		return rv.Interface()
	}
}

func canonSeq(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = canonValue(rv.Index(i))
	}
	return out
}
