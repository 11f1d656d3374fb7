package tuple

import (
	"fmt"
	"strings"

	"heapstore/pkg/types"
)

// Tuple is a row of fields matching a TupleDescription. RecordID is nil
// until the tuple has been placed on a page by insertTuple.
type Tuple struct {
	Desc     *TupleDescription
	fields   []types.Field
	RecordID *RecordID
}

// NewTuple allocates an empty tuple matching the given schema; fields start
// nil and must be set with SetField before the tuple is used.
func NewTuple(desc *TupleDescription) *Tuple {
	return &Tuple{Desc: desc, fields: make([]types.Field, desc.NumFields())}
}

// SetField assigns the field at index i, checking that its type matches the
// schema.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("field index %d out of range [0,%d)", i, len(t.fields))
	}
	if !field.Type().Equal(t.Desc.TypeAtIndex(i)) {
		return fmt.Errorf("field %d: expected type %s, got %s", i, t.Desc.TypeAtIndex(i), field.Type())
	}
	t.fields[i] = field
	return nil
}

// GetField returns the field at index i.
func (t *Tuple) GetField(i int) types.Field {
	return t.fields[i]
}

// NumFields returns the number of fields in the tuple.
func (t *Tuple) NumFields() int {
	return len(t.fields)
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		if f == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = f.String()
	}
	return strings.Join(parts, "\t")
}

// Clone returns a copy of the tuple with its own field slice (the Field
// values in it are shared with t) and its own copy of the RecordID (but not
// a new page identity).
func (t *Tuple) Clone() *Tuple {
	clone := &Tuple{Desc: t.Desc, fields: append([]types.Field{}, t.fields...)}
	if t.RecordID != nil {
		rid := *t.RecordID
		clone.RecordID = &rid
	}
	return clone
}

// Equals compares two tuples field-by-field; RecordID is ignored.
func (t *Tuple) Equals(other *Tuple) bool {
	if other == nil || len(t.fields) != len(other.fields) {
		return false
	}
	for i, f := range t.fields {
		of := other.fields[i]
		if f == nil || of == nil {
			if f != of {
				return false
			}
			continue
		}
		if !f.Equals(of) {
			return false
		}
	}
	return true
}
