// Package aggregation implements group-by aggregation over a column:
// MIN/MAX/SUM/AVG/COUNT for integer fields, COUNT-only for string fields.
package aggregation

import (
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
)

// NoGrouping marks an aggregator with no group-by field.
const NoGrouping = -1

// NoGroupingKey is the single group key used when an aggregator has no
// group-by field.
const NoGroupingKey = "NO_GROUPING_KEY"

// Op is an aggregation operator.
type Op int

const (
	Min Op = iota
	Max
	Sum
	Avg
	Count
)

func (op Op) String() string {
	switch op {
	case Min:
		return "min"
	case Max:
		return "max"
	case Sum:
		return "sum"
	case Avg:
		return "avg"
	case Count:
		return "count"
	default:
		return "unknown"
	}
}

// Aggregator merges tuples into per-group running state and produces one
// output tuple per group.
type Aggregator interface {
	Merge(t *tuple.Tuple) error
	Iterator() page.DbIterator
	GetTupleDesc() *tuple.TupleDescription
}

func buildTupleDesc(groupByField int, groupFieldType types.FieldType) *tuple.TupleDescription {
	if groupByField == NoGrouping {
		desc, _ := tuple.NewTupleDesc([]types.FieldType{types.Int}, []string{"aggregateVal"})
		return desc
	}
	desc, _ := tuple.NewTupleDesc([]types.FieldType{groupFieldType, types.Int}, []string{"groupVal", "aggregateVal"})
	return desc
}
