package pcache

import (
	"errors"
	"strings"
	"testing"
)

// TestKeyDeterministic verifies the same call derives the same key, as it
// must across processes and restarts.
func TestKeyDeterministic(t *testing.T) {
	k1, err := Key("pc", "add", 1, "x", 3.5)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	k2, err := Key("pc", "add", 1, "x", 3.5)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("same call derived different keys: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "pc::add::") {
		t.Fatalf("key %q should carry prefix and identity", k1)
	}
}

// TestKeyDistinguishesCalls covers the cheap collision traps: argument
// order, argument types and function identity must all matter.
func TestKeyDistinguishesCalls(t *testing.T) {
	base, _ := Key("pc", "f", 1, 2)

	if k, _ := Key("pc", "f", 2, 1); k == base {
		t.Fatalf("argument order should change the key")
	}
	if k, _ := Key("pc", "f", "1", 2); k == base {
		t.Fatalf("int 1 and string \"1\" should not collide")
	}
	if k, _ := Key("pc", "f", 1.0, 2); k == base {
		t.Fatalf("int 1 and float 1.0 should not collide")
	}
	if k, _ := Key("pc", "g", 1, 2); k == base {
		t.Fatalf("function identity should change the key")
	}
	if k, _ := Key("other", "f", 1, 2); k == base {
		t.Fatalf("prefix should change the key")
	}
}

// TestKeyStructFieldsOrdered: declaration order is part of a struct's
// identity, so two shapes carrying the same values must not share a key.
func TestKeyStructFieldsOrdered(t *testing.T) {
	type a struct{ X, Y int }
	type b struct{ Y, X int }
	ka, err := Key("pc", "f", a{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	kb, err := Key("pc", "f", b{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if ka == kb {
		t.Fatalf("field order is part of the encoding and should differ")
	}
}

// TestKeyNestedStructOrder: canonicalization must reach structs buried in
// containers, not just top-level arguments.
func TestKeyNestedStructOrder(t *testing.T) {
	type a struct{ X, Y int }
	type b struct{ Y, X int }
	ka, err := Key("pc", "f", []any{a{X: 1, Y: 2}})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	kb, err := Key("pc", "f", []any{b{X: 1, Y: 2}})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if ka == kb {
		t.Fatalf("nested struct field order should differ")
	}

	kam, err := Key("pc", "f", map[string]a{"m": {X: 1, Y: 2}})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	kbm, err := Key("pc", "f", map[string]b{"m": {X: 1, Y: 2}})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if kam == kbm {
		t.Fatalf("struct-in-map field order should differ")
	}
}

// TestKeyMapArgDeterministic: map iteration order is random per process, so
// only the encoder's key sorting keeps map-valued arguments stable.
func TestKeyMapArgDeterministic(t *testing.T) {
	names := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	m1 := map[string]int{}
	for i, n := range names {
		m1[n] = i
	}
	m2 := map[string]int{}
	for i := len(names) - 1; i >= 0; i-- {
		m2[names[i]] = i
	}
	k1, err := Key("pc", "f", m1)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	k2, err := Key("pc", "f", m2)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("equal maps derived different keys: %q vs %q", k1, k2)
	}
}

func TestKeyNilAndPointerArgs(t *testing.T) {
	type a struct{ X int }
	v := a{X: 1}
	kp, err := Key("pc", "f", &v)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	kv, err := Key("pc", "f", v)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if kp != kv {
		t.Fatalf("pointer and value of the same argument should collide")
	}
	if _, err := Key("pc", "f", nil); err != nil {
		t.Fatalf("nil argument should be encodable: %v", err)
	}
}

// TestKeyRejectsNonEncodable verifies live handles fail before any storage
// call, as a typed ErrSerialize.
func TestKeyRejectsNonEncodable(t *testing.T) {
	ch := make(chan int)
	if _, err := Key("pc", "f", ch); !errors.Is(err, ErrSerialize) {
		t.Fatalf("want ErrSerialize for chan arg, got %v", err)
	}
	if _, err := Key("pc", "f", func() {}); !errors.Is(err, ErrSerialize) {
		t.Fatalf("want ErrSerialize for func arg, got %v", err)
	}
}

func TestKeyNoArgs(t *testing.T) {
	k1, err := Key("pc", "constant")
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	k2, _ := Key("pc", "constant")
	if k1 != k2 {
		t.Fatalf("zero-arg keys should be stable")
	}
}
