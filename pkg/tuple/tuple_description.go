// Package tuple defines TupleDescription (schema), Tuple (a row of typed
// fields) and RecordID (a tuple's on-page location).
package tuple

import (
	"fmt"
	"strings"

	"heapstore/pkg/types"
)

// TupleDescription is an ordered sequence of field types, each with an
// optional name.
type TupleDescription struct {
	FieldTypes []types.FieldType
	FieldNames []string
}

// NewTupleDesc builds a TupleDescription from parallel field-type and
// field-name slices; names may be empty strings for unnamed fields.
func NewTupleDesc(fieldTypes []types.FieldType, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) == 0 {
		return nil, fmt.Errorf("tuple description requires at least one field")
	}
	if len(fieldNames) == 0 {
		fieldNames = make([]string, len(fieldTypes))
	}
	if len(fieldTypes) != len(fieldNames) {
		return nil, fmt.Errorf("field type count %d does not match field name count %d", len(fieldTypes), len(fieldNames))
	}

	ftCopy := make([]types.FieldType, len(fieldTypes))
	copy(ftCopy, fieldTypes)
	nameCopy := make([]string, len(fieldNames))
	copy(nameCopy, fieldNames)

	return &TupleDescription{FieldTypes: ftCopy, FieldNames: nameCopy}, nil
}

// NumFields returns the number of fields in the schema.
func (td *TupleDescription) NumFields() int {
	return len(td.FieldTypes)
}

// TypeAtIndex returns the field type at index i.
func (td *TupleDescription) TypeAtIndex(i int) types.FieldType {
	return td.FieldTypes[i]
}

// GetFieldName returns the field name at index i, which may be empty.
func (td *TupleDescription) GetFieldName(i int) string {
	return td.FieldNames[i]
}

// GetSize returns the fixed on-disk width of a tuple matching this schema.
func (td *TupleDescription) GetSize() int {
	size := 0
	for _, ft := range td.FieldTypes {
		size += ft.Size()
	}
	return size
}

// Equal reports whether two schemas describe the same sequence of field
// types, ignoring field names.
func (td *TupleDescription) Equal(other *TupleDescription) bool {
	if other == nil || len(td.FieldTypes) != len(other.FieldTypes) {
		return false
	}
	for i, ft := range td.FieldTypes {
		if !ft.Equal(other.FieldTypes[i]) {
			return false
		}
	}
	return true
}

// FindFieldIndex returns the index of the first field named name, or -1.
func (td *TupleDescription) FindFieldIndex(name string) int {
	for i, n := range td.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

func (td *TupleDescription) String() string {
	parts := make([]string, len(td.FieldTypes))
	for i, ft := range td.FieldTypes {
		name := td.FieldNames[i]
		if name == "" {
			name = "null"
		}
		parts[i] = fmt.Sprintf("%s(%s)", ft.String(), name)
	}
	return strings.Join(parts, ",")
}

// Combine merges two schemas field-by-field, handling either being nil.
func Combine(td1, td2 *TupleDescription) *TupleDescription {
	switch {
	case td1 == nil:
		return td2
	case td2 == nil:
		return td1
	}
	return &TupleDescription{
		FieldTypes: append(append([]types.FieldType{}, td1.FieldTypes...), td2.FieldTypes...),
		FieldNames: append(append([]string{}, td1.FieldNames...), td2.FieldNames...),
	}
}
