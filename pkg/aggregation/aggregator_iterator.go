package aggregation

import (
	"heapstore/pkg/dberr"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
)

// groupAggregator is the narrow view an aggregatorIterator needs of either
// IntegerAggregator or StringAggregator: a locked snapshot of group keys
// plus per-group value lookups.
type groupAggregator interface {
	rLock()
	rUnlock()
	getGroups() []string
	getGroupValue(key string) types.Field
	getAggregateValue(key string) int32
	isGrouped() bool
	GetTupleDesc() *tuple.TupleDescription
}

// aggregatorIterator produces one output tuple per group, snapshotting the
// group key list when opened so later merges don't change an in-progress
// scan.
type aggregatorIterator struct {
	agg    groupAggregator
	groups []string
	idx    int
	opened bool
}

func newAggregatorIterator(agg groupAggregator) *aggregatorIterator {
	return &aggregatorIterator{agg: agg}
}

func (it *aggregatorIterator) Open() error {
	it.agg.rLock()
	it.groups = it.agg.getGroups()
	it.agg.rUnlock()
	it.idx = 0
	it.opened = true
	return nil
}

func (it *aggregatorIterator) HasNext() (bool, error) {
	return it.opened && it.idx < len(it.groups), nil
}

func (it *aggregatorIterator) Next() (*tuple.Tuple, error) {
	has, _ := it.HasNext()
	if !has {
		return nil, dberr.NewIllegalArgument("Next", "no more groups")
	}

	key := it.groups[it.idx]
	it.idx++

	desc := it.agg.GetTupleDesc()
	t := tuple.NewTuple(desc)

	aggVal := types.NewIntField(it.agg.getAggregateValue(key))
	if it.agg.isGrouped() {
		if err := t.SetField(0, it.agg.getGroupValue(key)); err != nil {
			return nil, err
		}
		if err := t.SetField(1, aggVal); err != nil {
			return nil, err
		}
	} else {
		if err := t.SetField(0, aggVal); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (it *aggregatorIterator) Rewind() error {
	it.Close()
	return it.Open()
}

func (it *aggregatorIterator) Close() {
	it.opened = false
	it.groups = nil
}
