package tuple

import (
	"testing"

	"heapstore/pkg/types"
)

func TestNewTupleDescValidation(t *testing.T) {
	if _, err := NewTupleDesc(nil, nil); err == nil {
		t.Fatal("expected error for empty field type list")
	}
	if _, err := NewTupleDesc([]types.FieldType{types.Int}, []string{"a", "b"}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}

	desc, err := NewTupleDesc([]types.FieldType{types.Int, types.String(8)}, nil)
	if err != nil {
		t.Fatalf("NewTupleDesc: %v", err)
	}
	if desc.NumFields() != 2 {
		t.Fatalf("NumFields() = %d, want 2", desc.NumFields())
	}
	if desc.GetSize() != 4+(4+8) {
		t.Fatalf("GetSize() = %d, want %d", desc.GetSize(), 4+(4+8))
	}
}

func TestTupleDescriptionEqual(t *testing.T) {
	a, _ := NewTupleDesc([]types.FieldType{types.Int, types.String(4)}, []string{"x", "y"})
	b, _ := NewTupleDesc([]types.FieldType{types.Int, types.String(4)}, []string{"other", "names"})
	c, _ := NewTupleDesc([]types.FieldType{types.Int, types.String(5)}, nil)

	if !a.Equal(b) {
		t.Error("schemas with same types but different names should be equal")
	}
	if a.Equal(c) {
		t.Error("schemas with different STRING lengths should not be equal")
	}
}

func TestTupleSetFieldTypeCheck(t *testing.T) {
	desc, _ := NewTupleDesc([]types.FieldType{types.Int}, []string{"v"})
	tup := NewTuple(desc)

	if err := tup.SetField(0, types.NewStringField("nope", 4)); err == nil {
		t.Fatal("expected type mismatch error")
	}
	if err := tup.SetField(0, types.NewIntField(7)); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if got := tup.GetField(0).(*types.IntField).Value; got != 7 {
		t.Fatalf("GetField(0) = %d, want 7", got)
	}
}

func TestTupleEqualsIgnoresRecordID(t *testing.T) {
	desc, _ := NewTupleDesc([]types.FieldType{types.Int}, nil)
	a := NewTuple(desc)
	_ = a.SetField(0, types.NewIntField(1))
	b := a.Clone()
	b.RecordID = NewRecordID(nil, 3)

	if !a.Equals(b) {
		t.Error("Equals should ignore RecordID")
	}
}
