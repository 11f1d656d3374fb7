package types

import (
	"bytes"
	"testing"

	"heapstore/pkg/primitives"
)

func TestIntFieldSerializeRoundTrip(t *testing.T) {
	f := NewIntField(-42)

	var buf bytes.Buffer
	if err := f.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if buf.Len() != 4 {
		t.Fatalf("expected 4 bytes, got %d", buf.Len())
	}

	parsed, err := ParseField(&buf, Int)
	if err != nil {
		t.Fatalf("ParseField: %v", err)
	}
	if !parsed.Equals(f) {
		t.Fatalf("round-trip mismatch: got %v, want %v", parsed, f)
	}
}

func TestStringFieldSerializeRoundTrip(t *testing.T) {
	ft := String(10)
	f := NewStringField("hello", 10)

	var buf bytes.Buffer
	if err := f.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if buf.Len() != ft.Size() {
		t.Fatalf("expected %d bytes, got %d", ft.Size(), buf.Len())
	}

	parsed, err := ParseField(&buf, ft)
	if err != nil {
		t.Fatalf("ParseField: %v", err)
	}
	if !parsed.Equals(f) {
		t.Fatalf("round-trip mismatch: got %v, want %v", parsed, f)
	}
}

func TestStringFieldTruncatesOnConstruction(t *testing.T) {
	f := NewStringField("this is too long", 4)
	if f.Value != "this" {
		t.Fatalf("expected truncation to 4 bytes, got %q", f.Value)
	}
}

func TestIntFieldCompare(t *testing.T) {
	cases := []struct {
		op       primitives.Predicate
		a, b     int32
		expected bool
	}{
		{primitives.Equals, 5, 5, true},
		{primitives.Equals, 5, 6, false},
		{primitives.LessThan, 5, 6, true},
		{primitives.GreaterThan, 6, 5, true},
		{primitives.LessThanOrEqual, 5, 5, true},
		{primitives.GreaterThanOrEqual, 4, 5, false},
		{primitives.NotEqual, 4, 5, true},
	}

	for _, c := range cases {
		got, err := NewIntField(c.a).Compare(c.op, NewIntField(c.b))
		if err != nil {
			t.Fatalf("Compare: %v", err)
		}
		if got != c.expected {
			t.Errorf("%d %s %d: got %v, want %v", c.a, c.op, c.b, got, c.expected)
		}
	}
}

func TestFieldTypeSize(t *testing.T) {
	if Int.Size() != 4 {
		t.Errorf("INT size = %d, want 4", Int.Size())
	}
	if String(20).Size() != 24 {
		t.Errorf("STRING(20) size = %d, want 24", String(20).Size())
	}
}
