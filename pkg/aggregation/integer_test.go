package aggregation

import (
	"testing"

	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
)

func twoIntDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	desc, err := tuple.NewTupleDesc([]types.FieldType{types.Int, types.Int}, []string{"g", "v"})
	if err != nil {
		t.Fatalf("NewTupleDesc: %v", err)
	}
	return desc
}

func mergeIntPair(t *testing.T, agg Aggregator, desc *tuple.TupleDescription, group, value int32) {
	t.Helper()
	tup := tuple.NewTuple(desc)
	if err := tup.SetField(0, types.NewIntField(group)); err != nil {
		t.Fatalf("SetField(0): %v", err)
	}
	if err := tup.SetField(1, types.NewIntField(value)); err != nil {
		t.Fatalf("SetField(1): %v", err)
	}
	if err := agg.Merge(tup); err != nil {
		t.Fatalf("Merge: %v", err)
	}
}

func drain(t *testing.T, agg Aggregator) []*tuple.Tuple {
	t.Helper()
	it := agg.Iterator()
	if err := it.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer it.Close()

	var out []*tuple.Tuple
	for {
		has, err := it.HasNext()
		if err != nil {
			t.Fatalf("HasNext: %v", err)
		}
		if !has {
			return out
		}
		tup, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, tup)
	}
}

func TestIntegerAggregatorGroupedAvg(t *testing.T) {
	desc := twoIntDesc(t)
	agg := NewIntAggregator(0, types.Int, 1, Avg)

	pairs := [][2]int32{{1, 10}, {1, 20}, {2, 30}, {2, 40}}
	for _, p := range pairs {
		mergeIntPair(t, agg, desc, p[0], p[1])
	}

	out := drain(t, agg)
	if len(out) != 2 {
		t.Fatalf("got %d groups, want 2", len(out))
	}

	want := map[int32]int32{1: 15, 2: 35}
	for _, tup := range out {
		if tup.NumFields() != 2 {
			t.Fatalf("output tuple has %d fields, want 2", tup.NumFields())
		}
		group := tup.GetField(0).(*types.IntField).Value
		avg := tup.GetField(1).(*types.IntField).Value
		if want[group] != avg {
			t.Errorf("group %d: avg = %d, want %d", group, avg, want[group])
		}
		delete(want, group)
	}
	if len(want) != 0 {
		t.Errorf("missing groups in output: %v", want)
	}
}

func TestIntegerAggregatorNoGroupingOps(t *testing.T) {
	desc, err := tuple.NewTupleDesc([]types.FieldType{types.Int}, []string{"v"})
	if err != nil {
		t.Fatalf("NewTupleDesc: %v", err)
	}

	cases := []struct {
		op     Op
		values []int32
		want   int32
	}{
		{Min, []int32{5, 2, 8, 1, 9}, 1},
		{Max, []int32{5, 2, 8, 1, 9}, 9},
		{Sum, []int32{5, 2, 8, 1, 9}, 25},
		{Avg, []int32{10, 20, 31}, 20}, // integer division
		{Count, []int32{5, 2, 8, 1, 9}, 5},
	}

	for _, c := range cases {
		t.Run(c.op.String(), func(t *testing.T) {
			agg := NewIntAggregator(NoGrouping, types.Int, 0, c.op)
			for _, v := range c.values {
				tup := tuple.NewTuple(desc)
				if err := tup.SetField(0, types.NewIntField(v)); err != nil {
					t.Fatalf("SetField: %v", err)
				}
				if err := agg.Merge(tup); err != nil {
					t.Fatalf("Merge: %v", err)
				}
			}

			out := drain(t, agg)
			if len(out) != 1 {
				t.Fatalf("got %d output tuples, want 1", len(out))
			}
			if out[0].NumFields() != 1 {
				t.Fatalf("ungrouped output has %d fields, want 1", out[0].NumFields())
			}
			got := out[0].GetField(0).(*types.IntField).Value
			if got != c.want {
				t.Errorf("%s = %d, want %d", c.op, got, c.want)
			}
		})
	}
}

func TestIntegerAggregatorGroupTypeMismatch(t *testing.T) {
	desc := twoIntDesc(t)
	agg := NewIntAggregator(0, types.String(8), 1, Sum)

	tup := tuple.NewTuple(desc)
	_ = tup.SetField(0, types.NewIntField(1))
	_ = tup.SetField(1, types.NewIntField(2))

	if err := agg.Merge(tup); err == nil {
		t.Fatal("expected an error when the group-by field type does not match")
	}
}

func TestIntegerAggregatorIteratorRewind(t *testing.T) {
	desc := twoIntDesc(t)
	agg := NewIntAggregator(0, types.Int, 1, Count)
	mergeIntPair(t, agg, desc, 1, 10)
	mergeIntPair(t, agg, desc, 2, 20)

	it := agg.Iterator()
	if err := it.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer it.Close()

	first, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := it.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	again, err := it.Next()
	if err != nil {
		t.Fatalf("Next after Rewind: %v", err)
	}
	if !first.Equals(again) {
		t.Errorf("rewound iterator returned %v, want %v", again, first)
	}
}
