// Package fsname maps cache keys to file names that are safe on any
// filesystem.
//
// The mapping is per-byte: bytes in [A-Za-z0-9_-] pass through, every other
// byte becomes %XX (uppercase hex). Because each byte encodes independently,
// Encode(prefix+rest) == Encode(prefix)+Encode(rest), so prefix filtering on
// encoded names is exactly prefix filtering on keys. '.' is always escaped,
// which keeps derived side files (<name>.lock, <name>.tmp-*) out of the
// encoded namespace.
package fsname

import (
	"fmt"
	"strings"
)

const hexdigits = "0123456789ABCDEF"

func plain(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '_' || b == '-'
}

// Encode returns the file name for key.
func Encode(key string) string {
	var sb strings.Builder
	sb.Grow(len(key))
	for i := 0; i < len(key); i++ {
		b := key[i]
		if plain(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexdigits[b>>4])
		sb.WriteByte(hexdigits[b&0x0F])
	}
	return sb.String()
}

// Decode inverts Encode.
func Decode(name string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b != '%' {
			sb.WriteByte(b)
			continue
		}
		if i+2 >= len(name) {
			return "", fmt.Errorf("fsname: truncated escape at %d in %q", i, name)
		}
		hi := unhex(name[i+1])
		lo := unhex(name[i+2])
		if hi < 0 || lo < 0 {
			return "", fmt.Errorf("fsname: bad escape %q in %q", name[i:i+3], name)
		}
		sb.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return sb.String(), nil
}

func unhex(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	default:
		return -1
	}
}
