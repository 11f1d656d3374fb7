package types

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"heapstore/pkg/primitives"
)

// Field is a typed value stored in one column of a Tuple. Concrete
// implementations are IntField and StringField; the set is closed.
type Field interface {
	// Serialize writes the on-disk encoding for this field's type to w.
	Serialize(w io.Writer) error
	// Compare applies a predicate between this field and other, which must
	// share the same FieldType.
	Compare(op primitives.Predicate, other Field) (bool, error)
	// Type reports this field's declared type.
	Type() FieldType
	String() string
	Equals(other Field) bool
}

// IntField is a 4-byte big-endian signed integer field.
type IntField struct {
	Value int32
}

// NewIntField wraps a value as an IntField.
func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(f.Value))
	_, err := w.Write(buf)
	return err
}

func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*IntField)
	if !ok {
		return false, fmt.Errorf("cannot compare IntField with %T", other)
	}
	return compareOrdered(f.Value, o.Value, op)
}

func (f *IntField) Type() FieldType { return Int }

func (f *IntField) String() string { return strconv.FormatInt(int64(f.Value), 10) }

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	return ok && f.Value == o.Value
}

// StringField is a fixed-width STRING(len) field: a 4-byte length prefix
// followed by len bytes, the first Length meaningful and the rest padding.
type StringField struct {
	Value   string
	MaxSize int
}

// NewStringField wraps value as a STRING(maxSize) field, truncating value if
// it exceeds maxSize.
func NewStringField(value string, maxSize int) *StringField {
	if len(value) > maxSize {
		value = value[:maxSize]
	}
	return &StringField{Value: value, MaxSize: maxSize}
}

func (f *StringField) Serialize(w io.Writer) error {
	length := len(f.Value)
	if length > f.MaxSize {
		length = f.MaxSize
	}

	lengthBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthBuf, uint32(length))
	if _, err := w.Write(lengthBuf); err != nil {
		return err
	}

	padded := make([]byte, f.MaxSize)
	copy(padded, f.Value[:length])
	_, err := w.Write(padded)
	return err
}

func (f *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok {
		return false, fmt.Errorf("cannot compare StringField with %T", other)
	}
	cmp := 0
	switch {
	case f.Value < o.Value:
		cmp = -1
	case f.Value > o.Value:
		cmp = 1
	}
	return compareOrdered(cmp, 0, op)
}

func (f *StringField) Type() FieldType { return String(f.MaxSize) }

func (f *StringField) String() string { return f.Value }

func (f *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	return ok && f.Value == o.Value && f.MaxSize == o.MaxSize
}

func compareOrdered[T int | int32](a, b T, op primitives.Predicate) (bool, error) {
	switch op {
	case primitives.Equals:
		return a == b, nil
	case primitives.NotEqual:
		return a != b, nil
	case primitives.LessThan:
		return a < b, nil
	case primitives.LessThanOrEqual:
		return a <= b, nil
	case primitives.GreaterThan:
		return a > b, nil
	case primitives.GreaterThanOrEqual:
		return a >= b, nil
	default:
		return false, fmt.Errorf("unsupported predicate %v", op)
	}
}

// ParseField reads and decodes one field of the given type from r.
func ParseField(r io.Reader, ft FieldType) (Field, error) {
	switch ft.Kind {
	case IntKind:
		buf := make([]byte, 4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return NewIntField(int32(binary.BigEndian.Uint32(buf))), nil
	case StringKind:
		lengthBuf := make([]byte, 4)
		if _, err := io.ReadFull(r, lengthBuf); err != nil {
			return nil, err
		}
		length := int(binary.BigEndian.Uint32(lengthBuf))
		if length > ft.Len {
			length = ft.Len
		}

		payload := make([]byte, ft.Len)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
		return NewStringField(string(payload[:length]), ft.Len), nil
	default:
		return nil, fmt.Errorf("unsupported field type: %v", ft)
	}
}
