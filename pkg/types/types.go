// Package types implements the closed field-type set a tuple may carry:
// INT and STRING(len), plus their on-disk serialization.
package types

import "strconv"

// Kind is the tag of the closed field-type set.
type Kind int

const (
	IntKind Kind = iota
	StringKind
)

func (k Kind) String() string {
	switch k {
	case IntKind:
		return "INT"
	case StringKind:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// FieldType is a field's declared type: INT, or STRING parameterized by its
// fixed on-disk length.
type FieldType struct {
	Kind Kind
	Len  int // meaningful only when Kind == StringKind
}

// Int is the INT field type.
var Int = FieldType{Kind: IntKind}

// String returns the STRING(len) field type with the given fixed length.
func String(length int) FieldType {
	return FieldType{Kind: StringKind, Len: length}
}

// Size returns the fixed on-disk width of a field of this type: 4 bytes for
// INT, or a 4-byte length prefix plus Len bytes for STRING.
func (t FieldType) Size() int {
	switch t.Kind {
	case IntKind:
		return 4
	case StringKind:
		return 4 + t.Len
	default:
		return 0
	}
}

func (t FieldType) String() string {
	if t.Kind == StringKind {
		return "STRING(" + strconv.Itoa(t.Len) + ")"
	}
	return "INT"
}

// Equal reports whether two field types have the same kind and (for STRING)
// the same declared length.
func (t FieldType) Equal(other FieldType) bool {
	return t.Kind == other.Kind && t.Len == other.Len
}
